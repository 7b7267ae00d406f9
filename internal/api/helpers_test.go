package api_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/api"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/router"
	"github.com/foodshare/backend/internal/service"
)

const testJWTSecret = "test-secret"

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	authService := service.NewAuthService(db, nil, nil, testJWTSecret)
	mealService := service.NewMealService(db)
	requestService := service.NewRequestService(db)
	reviewService := service.NewReviewService(db)
	messageService := service.NewMessageService(db)

	handlers := router.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Meal:     api.NewMealHandler(mealService, reviewService, requestService, authService),
		Request:  api.NewRequestHandler(requestService, authService),
		Review:   api.NewReviewHandler(reviewService, mealService, authService),
		Message:  api.NewMessageHandler(messageService, authService, nil),
		Profile:  api.NewProfileHandler(authService, mealService),
		Image:    api.NewImageHandler(service.NewImageService(nil), service.NewImageResolver(nil), authService),
		Feedback: api.NewFeedbackHandler(service.NewFeedbackService(db), authService, db),
		Admin:    api.NewAdminHandler(db, mealService, authService),
	}

	return router.SetupRouter(handlers, db, nil), db
}

// createTestUserAndToken seeds an account and signs a session token for it.
func createTestUserAndToken(t *testing.T, db *gorm.DB, email, name string) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, FullName: name}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return user, token
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return bytes.NewBuffer(data)
}
