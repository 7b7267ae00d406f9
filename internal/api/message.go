package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
	authService    *service.AuthService
	sendLimiter    *middleware.RateLimiter
}

func NewMessageHandler(messageService *service.MessageService, authService *service.AuthService, sendLimiter *middleware.RateLimiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		authService:    authService,
		sendLimiter:    sendLimiter,
	}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	messages := router.Group("/messages", middleware.AuthMiddleware(h.authService))
	{
		if h.sendLimiter != nil {
			messages.POST("", h.sendLimiter.RateLimitMiddleware(), h.SendMessage)
		} else {
			messages.POST("", h.SendMessage)
		}
		messages.GET("/conversations", h.ListConversations)
		messages.POST("/conversations/:email/read", h.MarkConversationRead)
		messages.GET("/with/:email", h.GetThread)
		messages.PUT("/read", h.MarkRead)
		messages.GET("/unread-count", h.UnreadCount)
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), user, req.ReceiverEmail, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	conversations, err := h.messageService.Conversations(c.Request.Context(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	if err := h.messageService.MarkConversationRead(c.Request.Context(), user.Email, c.Param("email")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark conversation read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked read"})
}

func (h *MessageHandler) GetThread(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	messages, err := h.messageService.Thread(c.Request.Context(), user.Email, c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	var req MarkMessagesReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.messageService.MarkRead(c.Request.Context(), user.Email, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	count, err := h.messageService.UnreadCount(c.Request.Context(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch unread count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
