package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

type AdminHandler struct {
	db          *gorm.DB
	mealService *service.MealService
	authService *service.AuthService
}

func NewAdminHandler(db *gorm.DB, mealService *service.MealService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{db: db, mealService: mealService, authService: authService}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.AuthMiddleware(h.authService), middleware.AdminRequired(h.db))
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.DELETE("/meals/:id", h.DeleteMeal)
		admin.DELETE("/reviews/:id", h.DeleteReview)
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	var users, meals, requests, reviews, messages, feedback int64
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &users},
		{&models.Meal{}, &meals},
		{&models.MealRequest{}, &requests},
		{&models.Review{}, &reviews},
		{&models.Message{}, &messages},
		{&models.Feedback{}, &feedback},
	}
	for _, count := range counts {
		if err := h.db.Model(count.model).Count(count.dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
	}

	var portionsClaimed int64
	err := h.db.Model(&models.Meal{}).
		Select("COALESCE(SUM(portions_claimed), 0)").
		Row().Scan(&portionsClaimed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":            users,
		"meals":            meals,
		"requests":         requests,
		"reviews":          reviews,
		"messages":         messages,
		"feedback":         feedback,
		"portions_claimed": portionsClaimed,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteUser removes an account and its meals. The rows are removed for
// real, not soft-deleted: the unique email index covers soft-deleted rows,
// so a tombstone would block the address from ever signing in again.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.Meal{}, "created_by = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *AdminHandler) DeleteMeal(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.mealService.Delete(c.Request.Context(), user.ID, true, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

// DeleteReview removes a review outright, for moderation.
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
