package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReceiptStatusProvisional = "Provisional"
	ReceiptStatusFinal       = "Final"
	ReceiptStatusRejected    = "Rejected"
)

type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID        uuid.UUID `gorm:"index" json:"user_id"`
	StoreID       uuid.UUID `gorm:"index" json:"store_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Amount        float64   `json:"amount"`
	Liters        float64   `json:"liters"`
	PurchaseDate  time.Time `json:"purchase_date"`
	Status        string    `gorm:"index" json:"status"` // "Provisional", "Final", "Rejected"
	SourceFileURL string    `json:"source_file_url,omitempty"`

	// Snapshots of the pipeline outputs at intake time
	RawText              string  `gorm:"type:text" json:"raw_text,omitempty"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	ParsedFields         string  `gorm:"type:text" json:"parsed_fields,omitempty"`
	CodePayload          string  `gorm:"type:text" json:"code_payload,omitempty"`

	// Reconciliation data, set once on the transition to Final
	MatchedInvoiceID *string    `json:"matched_invoice_id,omitempty"`
	MatchedAt        *time.Time `json:"matched_at,omitempty"`
	MatchConfidence  float64    `json:"match_confidence"`

	PointsAwarded   int        `json:"points_awarded"`
	CashbackAwarded float64    `json:"cashback_awarded"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ProcessedBy     string     `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`

	User  *User  `gorm:"foreignKey:UserID"`
	Store *Store `gorm:"foreignKey:StoreID"`
	Timestamp
}
