package entities

import (
	"github.com/google/uuid"
)

type RewardTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID `gorm:"index" json:"user_id"`
	ReceiptID   uuid.UUID `gorm:"index" json:"receipt_id"`
	Kind        string    `json:"kind"` // "Points", "Cashback"
	Amount      float64   `json:"amount"`
	Balance     float64   `json:"balance"`
	Description string    `json:"description"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
