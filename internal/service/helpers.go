package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/models"
)

const maxSlugAttempts = 3

// notFound converts gorm.ErrRecordNotFound into an apperror.ErrNotFound with
// msg and wraps anything else with op.
func notFound(err error, op, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.New(apperror.ErrNotFound, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// lockRecipe loads a recipe by slug holding a row lock for the rest of tx.
// NO KEY UPDATE leaves foreign key checks from other writers unblocked.
// SQLite has no row locks; its single writer gives the same ordering.
func lockRecipe(tx *gorm.DB, slug string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := tx.Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
		Where("slug = ?", slug).
		Take(&recipe).Error
	if err != nil {
		return nil, notFound(err, "load recipe", "Recipe not found")
	}
	return &recipe, nil
}

// splitRefs separates uuid references from slug references.
func splitRefs(refs []string) (ids []string, slugs []string) {
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if id, err := uuid.Parse(ref); err == nil {
			ids = append(ids, id.String())
			continue
		}
		slugs = append(slugs, ref)
	}
	return ids, slugs
}

// orderRatings sorts by submission sequence. Seq is unique per recipe for
// ratings written by SubmitRating; id only breaks ties between rows that
// predate the column.
func orderRatings(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC").Order("id ASC")
}

func withoutCancel(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
