// Command main fills a development database with demo users, recipes and relations.
package main

import (
	"context"
	"flag"
	"log"

	"foodgram/internal/bootstrap"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	recipesPerUser := flag.Int("recipes", 5, "Recipes per user")
	favorites := flag.Int("favorites", 5, "Max favorites per user")
	cart := flag.Int("cart", 3, "Max cart items per user")
	subscriptions := flag.Int("subscriptions", 3, "Max subscriptions per user")
	shouldClean := flag.Bool("clean", true, "Remove users and recipes before seeding")
	ingredients := flag.String("ingredients", "", "Ingredient dataset to import first (defaults to INGREDIENTS_DATA_PATH)")
	fakeSeed := flag.Int64("seed", 0, "Random seed (0 for random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if *shouldClean {
		if err := seed.ClearAll(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	path := *ingredients
	if path == "" {
		path = cfg.IngredientsDataPath
	}
	if err := bootstrap.LoadReferenceData(ctx, db, bootstrap.Options{SeedTags: true, IngredientsPath: path}); err != nil {
		log.Fatalf("Reference data failed: %v", err)
	}

	res, err := seed.NewFactory(db, seed.Options{
		Users:                *numUsers,
		RecipesPerUser:       *recipesPerUser,
		FavoritesPerUser:     *favorites,
		CartPerUser:          *cart,
		SubscriptionsPerUser: *subscriptions,
		Seed:                 *fakeSeed,
	}).Seed(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d recipes", res.Users, res.Recipes)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
