package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

// FeedbackService stores widget submissions for later admin review.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// Create records a submission. userEmail may be empty for anonymous notes.
func (s *FeedbackService) Create(ctx context.Context, userEmail, mood, category, content string) (*models.Feedback, error) {
	fb := &models.Feedback{
		UserEmail: userEmail,
		Mood:      mood,
		Category:  category,
		Content:   content,
	}
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

// List returns submissions newest first, optionally filtered by category.
func (s *FeedbackService) List(ctx context.Context, category string) ([]models.Feedback, error) {
	query := s.db.WithContext(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.Feedback
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
