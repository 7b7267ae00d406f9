package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/api"
	"github.com/foodshare/backend/internal/middleware"
)

// Handlers bundles the route registrars the router wires under /api/v1.
type Handlers struct {
	Auth     *api.AuthHandler
	Meal     *api.MealHandler
	Request  *api.RequestHandler
	Review   *api.ReviewHandler
	Message  *api.MessageHandler
	Profile  *api.ProfileHandler
	Image    *api.ImageHandler
	Feedback *api.FeedbackHandler
	Admin    *api.AdminHandler
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, db *gorm.DB, redisClient *redis.Client) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(middleware.CORS())

	router.GET("/health", healthCheck(db, redisClient))

	// API v1 routes
	v1 := router.Group("/api/v1")

	h.Auth.RegisterRoutes(v1)
	h.Meal.RegisterRoutes(v1)
	h.Request.RegisterRoutes(v1)
	h.Review.RegisterRoutes(v1)
	h.Message.RegisterRoutes(v1)
	h.Profile.RegisterRoutes(v1)
	h.Image.RegisterRoutes(v1)
	h.Feedback.RegisterRoutes(v1)
	h.Admin.RegisterRoutes(v1)

	return router
}

func healthCheck(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if redisClient == nil || redisClient.Ping(c.Request.Context()).Err() != nil {
			checks["redis"] = "unreachable"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, checks)
	}
}
