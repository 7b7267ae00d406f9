package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	mealService   *service.MealService
	authService   *service.AuthService
}

func NewReviewHandler(reviewService *service.ReviewService, mealService *service.MealService, authService *service.AuthService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		mealService:   mealService,
		authService:   authService,
	}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/reviews", middleware.AuthMiddleware(h.authService), h.CreateReview)

	router.GET("/reviews", h.ListReviews)

	cooks := router.Group("/cooks")
	{
		cooks.GET("", h.ListCooks)
		cooks.GET("/:email", h.GetCookProfile)
		cooks.GET("/:email/reviews", h.ListCookReviews)
		cooks.GET("/:email/rating", h.GetCookRating)
		cooks.GET("/:email/meals", h.ListCookMeals)
	}
}

// ListReviews serves the query-parameter form of the review listing:
// ?meal_id= for a meal's reviews, ?cook_email= for a cook's.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	if raw := c.Query("meal_id"); raw != "" {
		mealID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal_id"})
			return
		}
		reviews, err := h.reviewService.ListByMeal(c.Request.Context(), mealID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
		return
	}
	if cookEmail := c.Query("cook_email"); cookEmail != "" {
		reviews, err := h.reviewService.ListByCook(c.Request.Context(), cookEmail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "meal_id or cook_email is required"})
}

// ListCooks is the public cook directory: every user with at least one open
// meal, decorated with their review aggregate.
func (h *ReviewHandler) ListCooks(c *gin.Context) {
	cooks, err := h.mealService.CooksWithOpenMeals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cooks"})
		return
	}

	emails := make([]string, len(cooks))
	for i, cook := range cooks {
		emails[i] = cook.Email
	}
	ratings, err := h.reviewService.RatingsForCooks(c.Request.Context(), emails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ratings"})
		return
	}

	out := make([]gin.H, len(cooks))
	for i, cook := range cooks {
		rating := ratings[cook.Email]
		out[i] = gin.H{
			"email":               cook.Email,
			"full_name":           cook.FullName,
			"bio":                 cook.Bio,
			"profile_picture_url": cook.ProfilePictureURL,
			"average_rating":      rating.AverageRating,
			"review_count":        rating.ReviewCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"cooks": out})
}

// GetCookProfile combines a cook's public details, open meals, and reviews
// into one payload for the cook page.
func (h *ReviewHandler) GetCookProfile(c *gin.Context) {
	email := c.Param("email")

	user, err := h.authService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cook"})
		return
	}

	meals, err := h.mealService.ListByCook(c.Request.Context(), email, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	reviews, err := h.reviewService.ListByCook(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	rating, err := h.reviewService.RatingForCook(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cook": gin.H{
			"email":               user.Email,
			"full_name":           user.FullName,
			"bio":                 user.Bio,
			"profile_picture_url": user.ProfilePictureURL,
		},
		"meals":   meals,
		"reviews": reviews,
		"rating":  rating,
	})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealID, err := uuid.Parse(req.MealID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal_id"})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), user, mealID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		case errors.Is(err, service.ErrSelfReview):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot review your own meal"})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this meal"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListCookReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListByCook(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *ReviewHandler) GetCookRating(c *gin.Context) {
	rating, err := h.reviewService.RatingForCook(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rating"})
		return
	}
	c.JSON(http.StatusOK, rating)
}

// ListCookMeals is a cook's public menu: their open meals.
func (h *ReviewHandler) ListCookMeals(c *gin.Context) {
	meals, err := h.mealService.ListByCook(c.Request.Context(), c.Param("email"), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}
