package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/api"
	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/router"
	"github.com/foodshare/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New wires the service layer and handlers into a ready-to-start server.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) *Server {
	emailService := service.NewEmailService(cfg)
	authService := service.NewAuthService(db, redisClient, emailService, cfg.JWTSecret)
	mealService := service.NewMealService(db)
	requestService := service.NewRequestService(db)
	reviewService := service.NewReviewService(db)
	messageService := service.NewMessageService(db)
	imageService := service.NewImageService(s3Config)
	imageResolver := service.NewImageResolver(s3Config)
	feedbackService := service.NewFeedbackService(db)

	sendLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     20,
		KeyPrefix: "msg-send",
	})

	handlers := router.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Meal:     api.NewMealHandler(mealService, reviewService, requestService, authService),
		Request:  api.NewRequestHandler(requestService, authService),
		Review:   api.NewReviewHandler(reviewService, mealService, authService),
		Message:  api.NewMessageHandler(messageService, authService, sendLimiter),
		Profile:  api.NewProfileHandler(authService, mealService),
		Image:    api.NewImageHandler(imageService, imageResolver, authService),
		Feedback: api.NewFeedbackHandler(feedbackService, authService, db),
		Admin:    api.NewAdminHandler(db, mealService, authService),
	}

	engine := router.SetupRouter(handlers, db, redisClient)

	return &Server{
		engine: engine,
		db:     db,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
}

// Start runs the HTTP server until it exits.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Engine exposes the underlying router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
