package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

type MealHandler struct {
	mealService    *service.MealService
	reviewService  *service.ReviewService
	requestService *service.RequestService
	authService    *service.AuthService
}

func NewMealHandler(mealService *service.MealService, reviewService *service.ReviewService, requestService *service.RequestService, authService *service.AuthService) *MealHandler {
	return &MealHandler{
		mealService:    mealService,
		reviewService:  reviewService,
		requestService: requestService,
		authService:    authService,
	}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	{
		meals.GET("", h.ListMeals)
		meals.GET("/:id", h.GetMeal)
		meals.GET("/:id/reviews", h.ListMealReviews)
		meals.POST("", middleware.AuthMiddleware(h.authService), h.CreateMeal)
		meals.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateMeal)
		meals.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteMeal)
		meals.GET("/:id/requests", middleware.AuthMiddleware(h.authService), h.ListMealRequests)
	}
}

// ListMeals is the browse view: open meals matching the query filters. When
// the caller sends coordinates without an explicit radius the default
// radius applies; radius_miles=0 disables the distance cap.
func (h *MealHandler) ListMeals(c *gin.Context) {
	filters := service.MealFilters{
		Query:       c.Query("q"),
		Cuisine:     c.Query("cuisine"),
		When:        c.Query("when"),
		RadiusMiles: service.DefaultRadiusMiles,
	}

	if latStr := c.Query("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat"})
			return
		}
		filters.Lat = &lat
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lng"})
			return
		}
		filters.Lng = &lng
	}
	if radiusStr := c.Query("radius_miles"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius_miles"})
			return
		}
		filters.RadiusMiles = radius
	}

	list, err := h.mealService.ListOpen(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MealHandler) GetMeal(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.mealService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) CreateMeal(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := &models.Meal{
		Title:             req.Title,
		Description:       req.Description,
		Date:              req.Date,
		Time:              req.Time,
		PortionsAvailable: req.PortionsAvailable,
		CuisineType:       req.CuisineType,
		DietaryInfo:       models.JSONBStringArray(req.DietaryInfo),
		Location:          req.Location,
		Lat:               req.Lat,
		Lng:               req.Lng,
		ImageURL:          req.ImageURL,
	}

	created, err := h.mealService.Create(c.Request.Context(), user, meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *MealHandler) UpdateMeal(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.mealService.Update(c.Request.Context(), user.ID, id, updates)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your meal"})
		case errors.Is(err, service.ErrPortionsBelowClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "Portions available cannot drop below portions already claimed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
		}
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) DeleteMeal(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	err := h.mealService.Delete(c.Request.Context(), user.ID, user.IsAdmin, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your meal"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meal"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

func (h *MealHandler) ListMealReviews(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListByMeal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListMealRequests shows a meal's requests to its owner.
func (h *MealHandler) ListMealRequests(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	meal, err := h.mealService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	if meal.CreatedBy != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your meal"})
		return
	}

	requests, err := h.requestService.ListByMeal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
