package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

// Rewrites stored meal image URLs to the sized display rendition
// (width 900, quality 75). Meals pointing at external images are skipped.
func main() {
	dryRun := flag.Bool("dry-run", false, "Print planned updates without writing")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Fatalf("Failed to configure storage: %v", err)
	}

	var meals []models.Meal
	if err := db.Where("image_url <> ''").Find(&meals).Error; err != nil {
		log.Fatalf("Failed to list meals: %v", err)
	}

	updated, skipped := 0, 0
	for _, meal := range meals {
		_, path, ok := service.ParseStorageRef(meal.ImageURL)
		if !ok || strings.Contains(meal.ImageURL, "?") {
			skipped++
			continue
		}

		newURL := s3Config.TransformURL(path, 900, 75)
		if newURL == meal.ImageURL {
			skipped++
			continue
		}

		if *dryRun {
			log.Printf("Would update %s: %s -> %s", meal.Title, meal.ImageURL, newURL)
			updated++
			continue
		}

		if err := db.Model(&models.Meal{}).Where("id = ?", meal.ID).Update("image_url", newURL).Error; err != nil {
			log.Printf("Failed to update %s: %v", meal.ID, err)
			continue
		}
		updated++
	}

	log.Printf("Backfill finished: %d updated, %d skipped", updated, skipped)
}
