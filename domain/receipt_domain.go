package domain

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessUploadReceipt   = "receipt uploaded and processed successfully"
	MessageSuccessGetReceipt      = "receipt retrieved successfully"
	MessageSuccessGetReceipts     = "receipts retrieved successfully"
	MessageSuccessGetUnmatched    = "unmatched receipts retrieved successfully"
	MessageSuccessApproveReceipt  = "receipt approved successfully"
	MessageSuccessRejectReceipt   = "receipt rejected successfully"
	MessageFailedUploadReceipt    = "failed to process receipt upload"
	MessageFailedGetReceipt       = "failed to retrieve receipt"
	MessageFailedGetReceipts      = "failed to retrieve receipts"
	MessageFailedGetUnmatched     = "failed to retrieve unmatched receipts"
	MessageFailedDecisionReceipt  = "failed to apply reconciliation decision"
	MessageFailedInvalidDecision  = "invalid reconciliation decision"

	ErrReceiptNotFound        = errors.New("receipt not found")
	ErrUserNotFound           = errors.New("user could not be resolved")
	ErrStoreNotFound          = errors.New("store could not be resolved")
	ErrPersistence            = errors.New("failed to persist receipt")
	ErrValidation             = errors.New("receipt validation failed")
	ErrInvalidStateTransition = errors.New("receipt is already in a terminal state")
	ErrInvalidDecisionAction  = errors.New("decision action must be approve or reject")
	ErrRejectionReasonMissing = errors.New("rejection requires a reason")
)

// IdentityResolutionError carries the raw extracted identity signals so a
// failed resolution can be reviewed manually.
type IdentityResolutionError struct {
	Subject      string // "user" or "store"
	CustomerName string
	Email        string
	Phone        string
	StoreName    string
	StoreNumber  string
}

func (e *IdentityResolutionError) Error() string {
	return fmt.Sprintf("%s could not be resolved from extracted signals", e.Subject)
}

func (e *IdentityResolutionError) Unwrap() error {
	if e.Subject == "store" {
		return ErrStoreNotFound
	}
	return ErrUserNotFound
}

// ReceiptValidationError is returned when the plausibility gate fails; the raw
// extraction is attached for manual handling.
type ReceiptValidationError struct {
	Warnings []string
	RawText  string
}

func (e *ReceiptValidationError) Error() string {
	return fmt.Sprintf("receipt validation failed: %d warning(s)", len(e.Warnings))
}

func (e *ReceiptValidationError) Unwrap() error { return ErrValidation }

type (
	UploadReceiptRequest struct {
		Document     *multipart.FileHeader `json:"-" validate:"required"`
		UserID       string                `json:"user_id" validate:"required"`
		StoreID      string                `json:"store_id" validate:"required"`
		PurchaseDate string                `json:"purchase_date,omitempty"`
	}

	UploadReceiptResponse struct {
		ReceiptID    string              `json:"receipt_id"`
		Status       string              `json:"status"`
		ParsedFields ParsedReceiptFields `json:"parsed_fields"`
		CodePayload  CodePayload         `json:"code_payload"`
		Warnings     []string            `json:"warnings,omitempty"`
	}

	DecisionRequest struct {
		Action             string   `json:"action" validate:"required,oneof=approve reject"`
		Reason             string   `json:"reason,omitempty"`
		ExternalInvoiceIDs []string `json:"external_invoice_ids,omitempty"`
		MatchConfidence    float64  `json:"match_confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	}

	DecisionResponse struct {
		ReceiptID       string  `json:"receipt_id"`
		Status          string  `json:"status"`
		PointsAwarded   int     `json:"points_awarded"`
		CashbackAwarded float64 `json:"cashback_awarded"`
	}

	ReceiptResponse struct {
		ID               string     `json:"id"`
		UserID           string     `json:"user_id"`
		StoreID          string     `json:"store_id"`
		InvoiceNumber    string     `json:"invoice_number"`
		Amount           float64    `json:"amount"`
		Liters           float64    `json:"liters"`
		PurchaseDate     time.Time  `json:"purchase_date"`
		Status           string     `json:"status"`
		SourceFileURL    string     `json:"source_file_url,omitempty"`
		MatchedInvoiceID *string    `json:"matched_invoice_id,omitempty"`
		MatchedAt        *time.Time `json:"matched_at,omitempty"`
		MatchConfidence  float64    `json:"match_confidence"`
		PointsAwarded    int        `json:"points_awarded"`
		CashbackAwarded  float64    `json:"cashback_awarded"`
		RejectionReason  string     `json:"rejection_reason,omitempty"`
		ProcessedBy      string     `json:"processed_by,omitempty"`
		ProcessedAt      *time.Time `json:"processed_at,omitempty"`
		CreatedAt        time.Time  `json:"created_at"`
	}

	ReceiptFilter struct {
		UserID   string
		StoreID  string
		Status   string
		DateFrom time.Time
		DateTo   time.Time
		Page     int
		Limit    int
	}
)
