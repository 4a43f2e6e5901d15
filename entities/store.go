package entities

import (
	"github.com/google/uuid"
)

type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"index" json:"name"`
	StoreNumber string    `gorm:"uniqueIndex" json:"store_number"`
	City        string    `json:"city,omitempty"`
	IsActive    bool      `json:"is_active"`

	Timestamp
}
