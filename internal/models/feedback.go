package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MoodLove    = "love"
	MoodLike    = "like"
	MoodOkay    = "okay"
	MoodDislike = "dislike"

	FeedbackCategorySuggestion = "suggestion"
	FeedbackCategoryBug        = "bug"
	FeedbackCategoryGeneral    = "general"
)

// Feedback is a mood-plus-note submission from the in-app widget. Anonymous
// submissions carry an empty user email.
type Feedback struct {
	ID        uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserEmail string         `gorm:"index" json:"user_email"`
	Mood      string         `gorm:"size:20;not null" json:"mood"`
	Category  string         `gorm:"size:20;not null" json:"category"`
	Content   string         `gorm:"column:feedback;type:text;not null" json:"feedback"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
