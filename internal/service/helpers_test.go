package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: name}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", email, err)
	}
	return user
}

func seedMeal(t *testing.T, db *gorm.DB, cook *models.User, title string, portions int) *models.Meal {
	t.Helper()
	meal := &models.Meal{
		CreatedBy:         cook.ID,
		CookEmail:         cook.Email,
		CookName:          cook.FullName,
		Title:             title,
		Description:       "Test description",
		Date:              "2026-09-01",
		Time:              "18:00",
		PortionsAvailable: portions,
		CuisineType:       "Italian",
		Status:            models.MealStatusOpen,
	}
	if err := db.Create(meal).Error; err != nil {
		t.Fatalf("Failed to seed meal %s: %v", title, err)
	}
	return meal
}
