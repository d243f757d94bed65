// Command load_ingredients imports an ingredient dataset (JSON or YAML).
// Existing (name, measurement_unit) pairs are skipped, so reruns are safe.
package main

import (
	"context"
	"flag"
	"log"

	"foodgram/internal/bootstrap"
	"foodgram/internal/config"
	"foodgram/internal/database"
)

func main() {
	path := flag.String("file", "", "Dataset path (defaults to INGREDIENTS_DATA_PATH)")
	withTags := flag.Bool("tags", false, "Also insert the default meal tags")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *path == "" {
		*path = cfg.IngredientsDataPath
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := bootstrap.LoadReferenceData(context.Background(), db, bootstrap.Options{
		SeedTags:        *withTags,
		IngredientsPath: *path,
	}); err != nil {
		log.Fatal(err)
	}
	log.Printf("Ingredients imported from %s", *path)
}
