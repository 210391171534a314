package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andcook/andcook/backend/config"
	"github.com/andcook/andcook/backend/internal/cache"
	"github.com/andcook/andcook/backend/internal/database"
	"github.com/andcook/andcook/backend/internal/logging"
	"github.com/andcook/andcook/backend/internal/models"
	"github.com/andcook/andcook/backend/internal/service"
	"github.com/andcook/andcook/backend/internal/types"
)

var seedCategories = []models.Category{
	{Name: "Breakfast", Description: "Start the day right"},
	{Name: "Dinner", Description: "Evening mains"},
	{Name: "Dessert", Description: "Something sweet"},
	{Name: "Vegetarian", Description: "No meat, all flavor"},
	{Name: "Quick & Easy", Description: "Ready in 30 minutes or less"},
}

var seedUsers = []types.Principal{
	{Email: "demo.chef@andcook.test", Name: "Demo Chef"},
	{Email: "demo.taster@andcook.test", Name: "Demo Taster"},
}

var seedRecipes = []types.CreateRecipeRequest{
	{
		Title:       "Homemade Pizza",
		Description: "Thin crust pizza with a simple tomato sauce.",
		Ingredients: []models.Ingredient{
			{Name: "Flour", Quantity: "500", Unit: "g"},
			{Name: "Water", Quantity: "325", Unit: "ml"},
			{Name: "Yeast", Quantity: "7", Unit: "g"},
			{Name: "Tomatoes", Quantity: "400", Unit: "g"},
		},
		Instructions: []models.Instruction{
			{Step: 1, Description: "Mix the dough and let it rise for an hour."},
			{Step: 2, Description: "Stretch, top and bake at 250C for 10 minutes."},
		},
		CookingTime: 90,
		Servings:    4,
		Difficulty:  models.DifficultyMedium,
		MainImage:   "/images/recipes/homemade-pizza.jpg",
		Categories:  []string{"dinner", "vegetarian"},
	},
	{
		Title:       "Fluffy Pancakes",
		Description: "Weekend pancakes with maple syrup.",
		Ingredients: []models.Ingredient{
			{Name: "Flour", Quantity: "200", Unit: "g"},
			{Name: "Milk", Quantity: "300", Unit: "ml"},
			{Name: "Eggs", Quantity: "2"},
		},
		Instructions: []models.Instruction{
			{Step: 1, Description: "Whisk everything into a smooth batter."},
			{Step: 2, Description: "Cook ladlefuls in a hot pan until golden."},
		},
		CookingTime: 20,
		Servings:    4,
		Difficulty:  models.DifficultyEasy,
		MainImage:   "/images/recipes/fluffy-pancakes.jpg",
		Categories:  []string{"breakfast", "quick-easy"},
	},
	{
		Title:       "Chocolate Mousse",
		Description: "Rich and airy dark chocolate mousse.",
		Ingredients: []models.Ingredient{
			{Name: "Dark chocolate", Quantity: "200", Unit: "g"},
			{Name: "Eggs", Quantity: "4"},
			{Name: "Sugar", Quantity: "50", Unit: "g"},
		},
		Instructions: []models.Instruction{
			{Step: 1, Description: "Melt the chocolate and fold in the yolks."},
			{Step: 2, Description: "Whip the whites with sugar and fold in. Chill for 4 hours."},
		},
		CookingTime: 30,
		Servings:    6,
		Difficulty:  models.DifficultyHard,
		MainImage:   "/images/recipes/chocolate-mousse.jpg",
		Categories:  []string{"dessert"},
	},
}

// Seeds demo categories, users, recipes and ratings. Running it again leaves
// existing rows alone.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	db := pool.DB()
	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate database")
	}

	if err := seedCategoryRows(ctx, db); err != nil {
		logging.Fatal().Err(err).Msg("failed to seed categories")
	}

	identity := service.NewIdentityService(db)
	guard := service.NewAccessGuard(cfg.Auth.PrivilegedEmail)
	recipes := service.NewRecipeService(db, identity, guard, service.NewSlugGenerator(db), cache.NoopCache{})
	ratings := service.NewRatingService(db, identity, guard, cache.NoopCache{})

	users := make([]*models.User, 0, len(seedUsers))
	for i := range seedUsers {
		u, err := identity.ResolveOrCreate(ctx, &seedUsers[i])
		if err != nil {
			logging.Fatal().Err(err).Str("email", seedUsers[i].Email).Msg("failed to seed user")
		}
		seedUsers[i].UserID = u.ID
		users = append(users, u)
	}

	author := &seedUsers[0]
	taster := &seedUsers[1]
	for i := range seedRecipes {
		req := seedRecipes[i]
		recipe, err := findByTitle(ctx, db, users[0].ID, req.Title)
		if err != nil {
			logging.Fatal().Err(err).Str("title", req.Title).Msg("failed to look up recipe")
		}
		if recipe == nil {
			recipe, err = recipes.Create(ctx, author, &req)
			if err != nil {
				logging.Fatal().Err(err).Str("title", req.Title).Msg("failed to seed recipe")
			}
		}

		// Ratings are upserts, so repeating them is harmless.
		score := 5 - i%3
		if _, err := ratings.SubmitRating(ctx, recipe.Slug, taster, &score, "Seeded rating"); err != nil {
			logging.Fatal().Err(err).Str("slug", recipe.Slug).Msg("failed to seed rating")
		}
		logging.Info().Str("slug", recipe.Slug).Msg("seeded recipe")
	}

	logging.Info().Int("categories", len(seedCategories)).Int("recipes", len(seedRecipes)).Msg("seed complete")
}

func seedCategoryRows(ctx context.Context, db *gorm.DB) error {
	for _, c := range seedCategories {
		c.Slug = service.Slugify(c.Name)
		err := db.WithContext(ctx).
			Where(models.Category{Slug: c.Slug}).
			Attrs(models.Category{Name: c.Name, Description: c.Description}).
			FirstOrCreate(&c).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func findByTitle(ctx context.Context, db *gorm.DB, authorID uuid.UUID, title string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.WithContext(ctx).Where("author_id = ? AND title = ?", authorID, title).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
