package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type Ingredient struct {
	Name     string `json:"name" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Unit     string `json:"unit"`
}

type Instruction struct {
	Step        int    `json:"step" binding:"required,gt=0"`
	Description string `json:"description" binding:"required"`
}

type Recipe struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Slug          string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Ingredients   Ingredients    `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  Instructions   `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	CookingTime   int            `gorm:"not null;default:1;check:chk_recipes_cooking_time,cooking_time > 0" json:"cookingTime"`
	Servings      int            `gorm:"not null;default:1;check:chk_recipes_servings,servings > 0" json:"servings"`
	Difficulty    Difficulty     `gorm:"size:10;not null;default:'Medium'" json:"difficulty"`
	MainImage     string         `gorm:"size:512;not null" json:"mainImage"`
	Images        StringList     `gorm:"type:jsonb;not null;default:'[]'" json:"images"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"authorId"`
	Author        *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Categories    []Category     `gorm:"many2many:recipe_categories" json:"categories"`
	Ratings       []RecipeRating `gorm:"foreignKey:RecipeID" json:"ratings"`
	AverageRating float64        `gorm:"not null;default:0" json:"averageRating"`
	RatingCount   int            `gorm:"not null;default:0" json:"ratingCount"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Difficulty == "" {
		r.Difficulty = DifficultyMedium
	}
	return nil
}

// RecipeRating is one user's rating of a recipe. The (recipe_id, user_id)
// pair is unique. Seq numbers a recipe's ratings in the order they were first
// submitted and is kept when a rating is edited.
type RecipeRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ratings_recipe_user;index:idx_recipe_ratings_recipe_seq,priority:1" json:"recipeId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ratings_recipe_user" json:"userId"`
	Seq       int64     `gorm:"not null;default:0;index:idx_recipe_ratings_recipe_seq,priority:2" json:"-"`
	UserName  string    `gorm:"size:100;not null" json:"userName"`
	UserImage string    `gorm:"size:512" json:"userImage"`
	Rating    int       `gorm:"not null;check:chk_recipe_ratings_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null;default:''" json:"comment"`
	RatedAt   time.Time `gorm:"not null" json:"date"`
}

func (RecipeRating) TableName() string {
	return "recipe_ratings"
}

func (r *RecipeRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:512" json:"image"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Recipe{},
		&RecipeRating{},
		&RecipeFavorite{},
	}
}
