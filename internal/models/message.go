package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID            uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	SenderEmail   string         `gorm:"not null;index" json:"sender_email"`
	SenderName    string         `gorm:"size:255" json:"sender_name"`
	ReceiverEmail string         `gorm:"not null;index" json:"receiver_email"`
	ReceiverName  string         `gorm:"size:255" json:"receiver_name"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	IsRead        bool           `gorm:"not null;default:false" json:"is_read"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
