package receipt

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ApprovalUpdate carries everything the provisional->final transition must
// write atomically alongside the status flip.
type ApprovalUpdate struct {
	MatchedInvoiceID *string
	MatchedAt        time.Time
	MatchConfidence  float64
	PointsAwarded    int
	CashbackAwarded  float64
	ProcessedBy      string
	ProcessedAt      time.Time
}

type (
	ReceiptRepository interface {
		CreateReceipt(ctx context.Context, receipt *entities.Receipt) error
		GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error)
		ListReceipts(ctx context.Context, filter domain.ReceiptFilter) ([]*entities.Receipt, int64, error)
		ListUnmatched(ctx context.Context, page, limit int) ([]*entities.Receipt, int64, error)
		FinalizeReceipt(ctx context.Context, id string, update ApprovalUpdate) error
		RejectReceipt(ctx context.Context, id string, reason, actor string, processedAt time.Time) error
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) ListReceipts(ctx context.Context, filter domain.ReceiptFilter) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64

	query := r.db.WithContext(ctx).Model(&entities.Receipt{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.StoreID != "" {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.DateFrom.IsZero() {
		query = query.Where("purchase_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		query = query.Where("purchase_date <= ?", filter.DateTo)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

// ListUnmatched is the external reconciliation engine's work queue:
// provisional records that no external invoice has been matched to yet.
func (r *receiptRepository) ListUnmatched(ctx context.Context, page, limit int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Where("status = ? AND matched_invoice_id IS NULL", entities.ReceiptStatusProvisional)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

// FinalizeReceipt flips a provisional record to Final and writes the
// reconciliation and reward fields in one compare-and-set update keyed on the
// current status, so concurrent approvals cannot double-award.
func (r *receiptRepository) FinalizeReceipt(ctx context.Context, id string, update ApprovalUpdate) error {
	result := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Where("id = ? AND status = ?", id, entities.ReceiptStatusProvisional).
		Updates(map[string]interface{}{
			"status":             entities.ReceiptStatusFinal,
			"matched_invoice_id": update.MatchedInvoiceID,
			"matched_at":         update.MatchedAt,
			"match_confidence":   update.MatchConfidence,
			"points_awarded":     update.PointsAwarded,
			"cashback_awarded":   update.CashbackAwarded,
			"processed_by":       update.ProcessedBy,
			"processed_at":       update.ProcessedAt,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

func (r *receiptRepository) RejectReceipt(ctx context.Context, id string, reason, actor string, processedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Where("id = ? AND status = ?", id, entities.ReceiptStatusProvisional).
		Updates(map[string]interface{}{
			"status":           entities.ReceiptStatusRejected,
			"rejection_reason": reason,
			"processed_by":     actor,
			"processed_at":     processedAt,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

// transitionConflict tells a missing record apart from one already terminal.
func (r *receiptRepository) transitionConflict(ctx context.Context, id string) error {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}
	return domain.ErrInvalidStateTransition
}
