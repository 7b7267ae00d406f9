package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealRequest status values. Only the meal owner moves a request between
// them: pending -> approved | denied, approved -> completed.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusDenied    = "denied"
	RequestStatusCompleted = "completed"
)

type MealRequest struct {
	ID                uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	MealID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"meal_id"`
	MealTitle         string         `gorm:"size:255" json:"meal_title"`
	CookEmail         string         `gorm:"not null;index" json:"cook_email"`
	RequesterEmail    string         `gorm:"not null;index" json:"requester_email"`
	RequesterName     string         `gorm:"size:255" json:"requester_name"`
	PortionsRequested int            `gorm:"not null;check:portions_requested > 0" json:"portions_requested"`
	Message           string         `gorm:"type:text" json:"message"`
	Status            string         `gorm:"size:10;not null;default:'pending'" json:"status"`
}

func (r *MealRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	return nil
}

// ValidTransition reports whether a status change is allowed.
func ValidTransition(from, to string) bool {
	switch from {
	case RequestStatusPending:
		return to == RequestStatusApproved || to == RequestStatusDenied
	case RequestStatusApproved:
		return to == RequestStatusCompleted
	default:
		return false
	}
}
