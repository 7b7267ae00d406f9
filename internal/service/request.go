package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodshare/backend/internal/models"
)

var (
	ErrMealFull           = errors.New("meal is full")
	ErrOwnMeal            = errors.New("cannot request portions of your own meal")
	ErrNotEnoughPortions  = errors.New("not enough portions left")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotRequestApprover = errors.New("only the meal owner can update a request")
)

// RequestService manages portion requests. Creation and approval both run
// inside a single transaction with the meal row locked, so the
// remaining-portion check and the claimed-count increment cannot interleave
// with a concurrent approval.
type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

// lockForUpdate adds a row lock on Postgres. SQLite (unit tests) has no
// FOR UPDATE; its transactions serialize writers anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create files a pending request. Portions are claimed at approval time, not
// here, but the request is still validated against the current remainder so
// obviously unfillable requests fail fast.
func (s *RequestService) Create(ctx context.Context, requester *models.User, mealID uuid.UUID, portions int, message string) (*models.MealRequest, error) {
	if portions < 1 {
		return nil, errors.New("portions_requested must be at least 1")
	}

	var request *models.MealRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := lockForUpdate(tx).First(&meal, "id = ?", mealID).Error; err != nil {
			return err
		}

		if meal.CreatedBy == requester.ID {
			return ErrOwnMeal
		}
		if meal.Status == models.MealStatusFull {
			return ErrMealFull
		}
		if portions > meal.PortionsRemaining() {
			return ErrNotEnoughPortions
		}

		request = &models.MealRequest{
			MealID:            meal.ID,
			MealTitle:         meal.Title,
			CookEmail:         meal.CookEmail,
			RequesterEmail:    requester.Email,
			RequesterName:     requester.FullName,
			PortionsRequested: portions,
			Message:           message,
			Status:            models.RequestStatusPending,
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// UpdateStatus transitions a request. Only the meal owner may do so, and
// approval re-checks the remainder under a row lock before claiming
// portions and deriving the meal's full/open status in the same transaction.
func (s *RequestService) UpdateStatus(ctx context.Context, actor *models.User, requestID uuid.UUID, newStatus string) (*models.MealRequest, error) {
	var request models.MealRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return err
		}

		var meal models.Meal
		if err := lockForUpdate(tx).First(&meal, "id = ?", request.MealID).Error; err != nil {
			return err
		}

		if meal.CreatedBy != actor.ID {
			return ErrNotRequestApprover
		}
		if !models.ValidTransition(request.Status, newStatus) {
			return ErrInvalidTransition
		}

		if newStatus == models.RequestStatusApproved {
			if request.PortionsRequested > meal.PortionsRemaining() {
				return ErrNotEnoughPortions
			}
			meal.PortionsClaimed += request.PortionsRequested
			meal.DeriveStatus()
			if err := tx.Model(&meal).Updates(map[string]interface{}{
				"portions_claimed": meal.PortionsClaimed,
				"status":           meal.Status,
			}).Error; err != nil {
				return err
			}
		}

		request.Status = newStatus
		return tx.Model(&request).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByRequester returns the requests a user has sent, newest first.
func (s *RequestService) ListByRequester(ctx context.Context, email string) ([]models.MealRequest, error) {
	var requests []models.MealRequest
	if err := s.db.WithContext(ctx).Where("requester_email = ?", email).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByCook returns the requests received for a cook's meals, newest first.
func (s *RequestService) ListByCook(ctx context.Context, email string) ([]models.MealRequest, error) {
	var requests []models.MealRequest
	if err := s.db.WithContext(ctx).Where("cook_email = ?", email).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByMeal returns a meal's requests, pending first then newest.
func (s *RequestService) ListByMeal(ctx context.Context, mealID uuid.UUID) ([]models.MealRequest, error) {
	var requests []models.MealRequest
	if err := s.db.WithContext(ctx).Where("meal_id = ?", mealID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
