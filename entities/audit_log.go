package entities

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Actor     string     `json:"actor"`
	Action    string     `json:"action"`
	ReceiptID *uuid.UUID `gorm:"index" json:"receipt_id,omitempty"`
	Details   string     `gorm:"type:text" json:"details,omitempty"`

	Timestamp
}
