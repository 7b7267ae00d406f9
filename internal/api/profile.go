package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type ProfileHandler struct {
	authService *service.AuthService
	mealService *service.MealService
}

func NewProfileHandler(authService *service.AuthService, mealService *service.MealService) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		mealService: mealService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile", middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.GET("/meals", h.ListMyMeals)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, req.FullName, req.Bio, req.ProfilePictureURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *ProfileHandler) ListMyMeals(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	meals, err := h.mealService.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}
