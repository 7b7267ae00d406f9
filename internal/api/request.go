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

type RequestHandler struct {
	requestService *service.RequestService
	authService    *service.AuthService
}

func NewRequestHandler(requestService *service.RequestService, authService *service.AuthService) *RequestHandler {
	return &RequestHandler{requestService: requestService, authService: authService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests", middleware.AuthMiddleware(h.authService))
	{
		requests.POST("", h.CreateRequest)
		requests.GET("/mine", h.ListSent)
		requests.GET("/received", h.ListReceived)
		requests.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req CreatePortionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealID, err := uuid.Parse(req.MealID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal_id"})
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), user, mealID, req.PortionsRequested, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		case errors.Is(err, service.ErrOwnMeal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot request portions of your own meal"})
		case errors.Is(err, service.ErrMealFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Meal is full"})
		case errors.Is(err, service.ErrNotEnoughPortions):
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough portions left"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RequestHandler) ListSent(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	requests, err := h.requestService.ListByRequester(c.Request.Context(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *RequestHandler) ListReceived(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	requests, err := h.requestService.ListByCook(c.Request.Context(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.requestService.UpdateStatus(c.Request.Context(), user, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, service.ErrNotRequestApprover):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the meal owner can update a request"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition"})
		case errors.Is(err, service.ErrNotEnoughPortions):
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough portions left to approve"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}
