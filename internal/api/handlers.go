package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

// currentUser loads the authenticated user set by the auth middleware.
// Handlers behind AuthMiddleware can assume the claims are present; a
// missing or stale account still yields a 401 here.
func currentUser(c *gin.Context, auth *service.AuthService) (*models.User, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	user, err := auth.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return nil, false
	}
	return user, true
}

// parseUUIDParam parses a :id style path parameter, answering 400 on garbage.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
