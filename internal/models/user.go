package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is created on first successful sign-in and keyed by email.
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName          string         `gorm:"size:255;not null" json:"full_name"`
	Bio               string         `gorm:"type:text" json:"bio"`
	ProfilePictureURL string         `gorm:"size:512" json:"profile_picture_url"`
	IsAdmin           bool           `gorm:"not null;default:false" json:"is_admin"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
