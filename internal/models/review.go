package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is immutable after creation. The composite unique index enforces
// one review per (reviewer, meal) server-side.
type Review struct {
	ID            uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	MealID        uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviewer_meal" json:"meal_id"`
	MealTitle     string         `gorm:"size:255" json:"meal_title"`
	CookEmail     string         `gorm:"not null;index" json:"cook_email"`
	CookName      string         `gorm:"size:255" json:"cook_name"`
	ReviewerEmail string         `gorm:"not null;uniqueIndex:idx_reviewer_meal" json:"reviewer_email"`
	ReviewerName  string         `gorm:"size:255" json:"reviewer_name"`
	Rating        int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	ReviewText    string         `gorm:"type:text" json:"review_text"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
