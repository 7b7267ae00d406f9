package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/service"
)

type ImageHandler struct {
	imageService  *service.ImageService
	imageResolver *service.ImageResolver
	authService   *service.AuthService
}

func NewImageHandler(imageService *service.ImageService, imageResolver *service.ImageResolver, authService *service.AuthService) *ImageHandler {
	return &ImageHandler{
		imageService:  imageService,
		imageResolver: imageResolver,
		authService:   authService,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	{
		images.POST("", middleware.AuthMiddleware(h.authService), h.UploadImage)
		images.POST("/resolve", h.ResolveImage)
	}
}

// UploadImage accepts a multipart image, validates it, downscales it, and
// stores the JPEG rendition, returning the public URL.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if _, ok := currentUser(c, h.authService); !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	if fileHeader.Size > service.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	if int64(len(data)) > service.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10MB limit"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.imageService.ProcessAndUpload(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedType),
			errors.Is(err, service.ErrSuspiciousName),
			errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ResolveImage turns a stored image reference into a fetchable URL, falling
// back to the placeholder once the retry budget is spent.
func (h *ImageHandler) ResolveImage(c *gin.Context) {
	var req ResolveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.imageResolver.Resolve(c.Request.Context(), c.ClientIP(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrRetryExhausted) {
			c.JSON(http.StatusOK, gin.H{"url": service.PlaceholderPath, "fallback": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve image"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
