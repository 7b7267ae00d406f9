package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

var (
	ErrSelfReview      = errors.New("cannot review your own meal")
	ErrDuplicateReview = errors.New("you have already reviewed this meal")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CookRating is the aggregate a cook's profile shows.
type CookRating struct {
	CookEmail     string  `json:"cook_email"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// Create records a review for a meal. One review per reviewer per meal; the
// composite index enforces it at the database level and the duplicate is
// surfaced as ErrDuplicateReview.
func (s *ReviewService) Create(ctx context.Context, reviewer *models.User, mealID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var meal models.Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", mealID).Error; err != nil {
		return nil, err
	}
	if meal.CreatedBy == reviewer.ID {
		return nil, ErrSelfReview
	}

	review := &models.Review{
		MealID:        meal.ID,
		MealTitle:     meal.Title,
		CookEmail:     meal.CookEmail,
		CookName:      meal.CookName,
		ReviewerEmail: reviewer.Email,
		ReviewerName:  reviewer.FullName,
		Rating:        rating,
		ReviewText:    comment,
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}
	return review, nil
}

// ListByMeal returns a meal's reviews, newest first.
func (s *ReviewService) ListByMeal(ctx context.Context, mealID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("meal_id = ?", mealID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByCook returns the reviews left on a cook's meals, newest first.
func (s *ReviewService) ListByCook(ctx context.Context, cookEmail string) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("cook_email = ?", cookEmail).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingForCook aggregates a cook's average rating and review count.
func (s *ReviewService) RatingForCook(ctx context.Context, cookEmail string) (*CookRating, error) {
	rating := &CookRating{CookEmail: cookEmail}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Where("cook_email = ?", cookEmail).
		Row().Scan(&rating.AverageRating, &rating.ReviewCount)
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// RatingsForCooks aggregates ratings for a set of cooks in one grouped
// query, keyed by cook email. Cooks without reviews are absent from the map.
func (s *ReviewService) RatingsForCooks(ctx context.Context, cookEmails []string) (map[string]CookRating, error) {
	ratings := make(map[string]CookRating, len(cookEmails))
	if len(cookEmails) == 0 {
		return ratings, nil
	}

	var rows []CookRating
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("cook_email, COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Where("cook_email IN ?", cookEmails).
		Group("cook_email").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.CookEmail] = row
	}
	return ratings, nil
}

// isUniqueViolation matches both the Postgres duplicate-key error and the
// sqlite constraint error the unit tests run against.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
