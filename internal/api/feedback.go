package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	authService     *service.AuthService
	db              *gorm.DB
}

func NewFeedbackHandler(feedbackService *service.FeedbackService, authService *service.AuthService, db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		authService:     authService,
		db:              db,
	}
}

func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	feedback := router.Group("/feedback")
	{
		// Submission is open to anonymous visitors, like the widget it serves.
		feedback.POST("", h.CreateFeedback)
		feedback.GET("", middleware.AuthMiddleware(h.authService), middleware.AdminRequired(h.db), h.ListFeedback)
	}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.feedbackService.Create(c.Request.Context(), req.UserEmail, req.Mood, req.Category, req.Feedback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit feedback"})
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.feedbackService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": items})
}
