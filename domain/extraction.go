package domain

import (
	"errors"
	"time"
)

// Payment methods recognized by the field parser.
const (
	PaymentCard         = "card"
	PaymentCash         = "cash"
	PaymentPix          = "pix"
	PaymentBoleto       = "boleto"
	PaymentBankTransfer = "bank_transfer"
	PaymentUnknown      = "unknown"
)

var (
	ErrFileValidation = errors.New("file validation failed")
	ErrExtraction     = errors.New("text extraction failed")
)

type (
	// ExtractedText is the raw output of one recognition attempt.
	ExtractedText struct {
		Text       string        `json:"text"`
		Confidence float64       `json:"confidence"` // 0..1
		Duration   time.Duration `json:"duration"`
	}

	// ParsedReceiptFields is always populated with best-effort defaults;
	// the parser never fails outright.
	ParsedReceiptFields struct {
		InvoiceNumber  string    `json:"invoice_number"`
		StoreName      string    `json:"store_name"`
		Amount         float64   `json:"amount"`
		Currency       string    `json:"currency"`
		Date           time.Time `json:"date"`
		PaymentMethod  string    `json:"payment_method"`
		CustomerName   string    `json:"customer_name"`
		Liters         float64   `json:"liters"`
		PhoneNumber    string    `json:"phone_number"`
		Email          string    `json:"email"`
		CashbackAmount float64   `json:"cashback_amount"`
		Confidence     float64   `json:"confidence"` // 0..1
	}

	// CodePayload is the decoded embedded-code payload. Success=false with
	// empty fields is a legitimate outcome, not an error.
	CodePayload struct {
		ReceiptID        string  `json:"receipt_id,omitempty"`
		StoreNumber      string  `json:"store_number,omitempty"`
		Amount           float64 `json:"amount,omitempty"`
		Date             string  `json:"date,omitempty"`
		VerificationCode string  `json:"verification_code,omitempty"`
		CustomerName     string  `json:"customer_name,omitempty"`
		TransactionID    string  `json:"transaction_id,omitempty"`
		RawData          string  `json:"raw_data,omitempty"`
		Confidence       float64 `json:"confidence"`
		Success          bool    `json:"success"`
	}
)
