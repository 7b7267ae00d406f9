package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal status values. Status is derived from the portion counters and is
// never set directly by callers.
const (
	MealStatusOpen = "open"
	MealStatusFull = "full"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

type Meal struct {
	ID                uuid.UUID        `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
	CreatedBy         uuid.UUID        `gorm:"type:uuid;not null;index" json:"created_by"`
	CookEmail         string           `gorm:"not null;index" json:"cook_email"`
	CookName          string           `gorm:"size:255" json:"cook_name"`
	Title             string           `gorm:"size:255;not null" json:"title"`
	Description       string           `gorm:"type:text" json:"description"`
	ImageURL          string           `gorm:"size:512" json:"image_url"`
	Date              string           `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time              string           `gorm:"size:20" json:"time"`
	PortionsAvailable int              `gorm:"not null;check:portions_available > 0" json:"portions_available"`
	PortionsClaimed   int              `gorm:"not null;default:0" json:"portions_claimed"`
	CuisineType       string           `gorm:"size:50" json:"cuisine_type"`
	DietaryInfo       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_info"`
	Location          string           `gorm:"size:255" json:"location"`
	Lat               *float64         `json:"lat"`
	Lng               *float64         `json:"lng"`
	Status            string           `gorm:"size:10;not null;default:'open'" json:"status"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MealStatusOpen
	}
	return nil
}

// PortionsRemaining reports how many portions are still claimable.
func (m *Meal) PortionsRemaining() int {
	remaining := m.PortionsAvailable - m.PortionsClaimed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DeriveStatus recomputes the open/full status from the portion counters.
func (m *Meal) DeriveStatus() {
	if m.PortionsClaimed >= m.PortionsAvailable {
		m.Status = MealStatusFull
	} else {
		m.Status = MealStatusOpen
	}
}
