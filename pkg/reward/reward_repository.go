package reward

import (
	"Fideliza-Backend/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	RewardRepository interface {
		CreateTransactions(ctx context.Context, transactions []*entities.RewardTransaction) error
		GetBalance(ctx context.Context, userID string, kind string) (float64, error)
		HasTransactionForReceipt(ctx context.Context, receiptID string, kind string) (bool, error)
		GetUserTransactions(ctx context.Context, userID string, page, limit int) ([]*entities.RewardTransaction, int64, error)
	}

	rewardRepository struct {
		db *gorm.DB
	}
)

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

// CreateTransactions writes a batch of ledger entries atomically: either every
// entry for the receipt lands or none does, so a failed issuance can be retried.
func (r *rewardRepository) CreateTransactions(ctx context.Context, transactions []*entities.RewardTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, transaction := range transactions {
			if err := tx.Create(transaction).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *rewardRepository) GetBalance(ctx context.Context, userID string, kind string) (float64, error) {
	// The most recent transaction carries the running balance.
	var latestTx entities.RewardTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at DESC").
		First(&latestTx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return latestTx.Balance, nil
}

func (r *rewardRepository) HasTransactionForReceipt(ctx context.Context, receiptID string, kind string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.RewardTransaction{}).
		Where("receipt_id = ? AND kind = ?", receiptID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *rewardRepository) GetUserTransactions(ctx context.Context, userID string, page, limit int) ([]*entities.RewardTransaction, int64, error) {
	var transactions []*entities.RewardTransaction
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.RewardTransaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, count, nil
}
