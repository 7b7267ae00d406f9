package main

import (
	"log"

	"gorm.io/gorm"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
)

// Seeds a handful of demo accounts, meals, reviews, and messages so a fresh
// environment has something to browse. Safe to re-run; existing emails and
// meal titles are left alone.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	users := seedUsers(db)
	meals := seedMeals(db, users)
	seedReviews(db, users, meals)
	seedMessages(db, users)

	log.Println("Seeding complete")
}

func seedUsers(db *gorm.DB) map[string]*models.User {
	seeds := []models.User{
		{Email: "maria@example.com", FullName: "Maria Santos", Bio: "Weeknight Italian and Sunday roasts."},
		{Email: "kenji@example.com", FullName: "Kenji Tanaka", Bio: "Ramen obsessive, always extra portions."},
		{Email: "amara@example.com", FullName: "Amara Okafor", Bio: "West African classics, plant-forward."},
		{Email: "diego@example.com", FullName: "Diego Rivera", Bio: "Tacos, tamales, and big batches."},
	}

	users := make(map[string]*models.User, len(seeds))
	for i := range seeds {
		user := seeds[i]
		if err := db.Where("email = ?", user.Email).FirstOrCreate(&user, models.User{Email: user.Email}).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", user.Email, err)
		}
		if user.FullName == "" {
			user.FullName = seeds[i].FullName
			user.Bio = seeds[i].Bio
			db.Save(&user)
		}
		users[user.Email] = &user
	}
	return users
}

func f64(v float64) *float64 { return &v }

func seedMeals(db *gorm.DB, users map[string]*models.User) map[string]*models.Meal {
	maria := users["maria@example.com"]
	kenji := users["kenji@example.com"]
	amara := users["amara@example.com"]
	diego := users["diego@example.com"]

	seeds := []models.Meal{
		{
			CreatedBy: maria.ID, CookEmail: maria.Email, CookName: maria.FullName,
			Title:       "Sunday Lasagna",
			Description: "Slow-simmered ragu, fresh pasta sheets, plenty to share.",
			Date:        "2026-09-06", Time: "18:00",
			PortionsAvailable: 6, CuisineType: "Italian",
			DietaryInfo: models.JSONBStringArray{"contains-gluten", "contains-dairy"},
			Location:    "Mission District", Lat: f64(37.7599), Lng: f64(-122.4148),
			Status: models.MealStatusOpen,
		},
		{
			CreatedBy: kenji.ID, CookEmail: kenji.Email, CookName: kenji.FullName,
			Title:       "Shoyu Ramen Night",
			Description: "Twelve-hour chicken broth, homemade noodles, soft eggs.",
			Date:        "2026-09-04", Time: "19:30",
			PortionsAvailable: 4, CuisineType: "Japanese",
			DietaryInfo: models.JSONBStringArray{"contains-gluten", "contains-egg"},
			Location:    "Richmond", Lat: f64(37.7775), Lng: f64(-122.4824),
			Status: models.MealStatusOpen,
		},
		{
			CreatedBy: amara.ID, CookEmail: amara.Email, CookName: amara.FullName,
			Title:       "Jollof Rice & Plantains",
			Description: "Smoky party jollof with fried plantains. Vegan friendly.",
			Date:        "2026-09-05", Time: "13:00",
			PortionsAvailable: 8, CuisineType: "West African",
			DietaryInfo: models.JSONBStringArray{"vegan", "gluten-free"},
			Location:    "Oakland", Lat: f64(37.8044), Lng: f64(-122.2712),
			Status: models.MealStatusOpen,
		},
		{
			CreatedBy: diego.ID, CookEmail: diego.Email, CookName: diego.FullName,
			Title:       "Taco Tuesday Spread",
			Description: "Carnitas, salsa verde, handmade tortillas.",
			Date:        "2026-09-08", Time: "18:30",
			PortionsAvailable: 10, CuisineType: "Mexican",
			DietaryInfo: models.JSONBStringArray{"gluten-free"},
			Location:    "Bernal Heights", Lat: f64(37.7441), Lng: f64(-122.4156),
			Status: models.MealStatusOpen,
		},
	}

	meals := make(map[string]*models.Meal, len(seeds))
	for i := range seeds {
		meal := seeds[i]
		var existing models.Meal
		err := db.Where("title = ? AND cook_email = ?", meal.Title, meal.CookEmail).First(&existing).Error
		if err == nil {
			meals[meal.Title] = &existing
			continue
		}
		if err := db.Create(&meal).Error; err != nil {
			log.Fatalf("Failed to seed meal %s: %v", meal.Title, err)
		}
		meals[meal.Title] = &meal
	}
	return meals
}

func seedReviews(db *gorm.DB, users map[string]*models.User, meals map[string]*models.Meal) {
	seeds := []struct {
		meal     string
		reviewer string
		rating   int
		comment  string
	}{
		{"Sunday Lasagna", "kenji@example.com", 5, "Best lasagna I've had outside Bologna."},
		{"Sunday Lasagna", "amara@example.com", 4, "Generous portions, lovely host."},
		{"Shoyu Ramen Night", "maria@example.com", 5, "That broth is something else."},
		{"Jollof Rice & Plantains", "diego@example.com", 5, "Smoky and perfect."},
	}

	for _, s := range seeds {
		meal, ok := meals[s.meal]
		if !ok {
			continue
		}
		reviewer := users[s.reviewer]
		review := models.Review{
			MealID: meal.ID, MealTitle: meal.Title,
			CookEmail: meal.CookEmail, CookName: meal.CookName,
			ReviewerEmail: reviewer.Email, ReviewerName: reviewer.FullName,
			Rating: s.rating, ReviewText: s.comment,
		}
		var count int64
		db.Model(&models.Review{}).Where("meal_id = ? AND reviewer_email = ?", meal.ID, reviewer.Email).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&review).Error; err != nil {
			log.Printf("Failed to seed review for %s: %v", s.meal, err)
		}
	}
}

func seedMessages(db *gorm.DB, users map[string]*models.User) {
	var count int64
	db.Model(&models.Message{}).Count(&count)
	if count > 0 {
		return
	}

	maria := users["maria@example.com"]
	kenji := users["kenji@example.com"]

	seeds := []models.Message{
		{
			SenderEmail: kenji.Email, SenderName: kenji.FullName,
			ReceiverEmail: maria.Email, ReceiverName: maria.FullName,
			Content: "Hi Maria! Any chance of two more portions on Sunday?",
		},
		{
			SenderEmail: maria.Email, SenderName: maria.FullName,
			ReceiverEmail: kenji.Email, ReceiverName: kenji.FullName,
			Content: "Of course, I'll set them aside for you.", IsRead: true,
		},
	}
	for i := range seeds {
		if err := db.Create(&seeds[i]).Error; err != nil {
			log.Printf("Failed to seed message: %v", err)
		}
	}
}
