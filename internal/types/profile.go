package types

import (
	"github.com/andcook/andcook/backend/internal/models"
)

// ProfileResponse is the profile page payload: the user and their latest recipes.
type ProfileResponse struct {
	Profile *models.User    `json:"profile"`
	Recipes []models.Recipe `json:"recipes"`
}
