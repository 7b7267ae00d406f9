package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/otp", h.IssueCode)
		auth.POST("/otp/verify", h.VerifyCode)
		auth.GET("/session", middleware.AuthMiddleware(h.authService), h.Session)
		auth.POST("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
	}
}

// IssueCode mails a 6-digit login code. When no SMTP delivery is configured
// the code comes back in the response so local development can proceed.
func (h *AuthHandler) IssueCode(c *gin.Context) {
	var req IssueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	devCode, err := h.authService.IssueCode(c.Request.Context(), req.Email, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Code recently requested, try again later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send login code"})
		return
	}

	resp := gin.H{"message": "Login code sent"}
	if devCode != "" {
		resp["dev_code"] = devCode
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
		case errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, request a new code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Session returns the account behind the presented token.
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout acknowledges the client dropping its token. Sessions are stateless
// JWTs, so there is nothing server-side to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
