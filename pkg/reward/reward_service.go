package reward

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	RewardService interface {
		IssueRewards(ctx context.Context, receipt *entities.Receipt, points int, cashback float64) error
		GetBalance(ctx context.Context, userID string) (*domain.RewardBalance, error)
		GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.RewardTransaction, int64, error)
	}

	rewardService struct {
		rewardRepository RewardRepository
	}
)

func NewRewardService(rewardRepository RewardRepository) RewardService {
	return &rewardService{
		rewardRepository: rewardRepository,
	}
}

// IssueRewards records the points and cashback ledger entries for an approved
// receipt. The receipt-level compare-and-set already guards against double
// approval; the per-receipt check here keeps the ledger itself append-once.
// Both entries are written in one repository transaction, so a failure leaves
// nothing behind and the issuance can be retried.
func (s *rewardService) IssueRewards(ctx context.Context, receipt *entities.Receipt, points int, cashback float64) error {
	issued, err := s.rewardRepository.HasTransactionForReceipt(ctx, receipt.ID.String(), domain.RewardKindPoints)
	if err != nil {
		return err
	}
	if issued {
		return domain.ErrRewardAlreadyIssued
	}

	userID := receipt.UserID.String()

	pointsBalance, err := s.rewardRepository.GetBalance(ctx, userID, domain.RewardKindPoints)
	if err != nil {
		return err
	}
	cashbackBalance, err := s.rewardRepository.GetBalance(ctx, userID, domain.RewardKindCashback)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.rewardRepository.CreateTransactions(ctx, []*entities.RewardTransaction{
		{
			ID:          uuid.New(),
			UserID:      receipt.UserID,
			ReceiptID:   receipt.ID,
			Kind:        domain.RewardKindPoints,
			Amount:      float64(points),
			Balance:     pointsBalance + float64(points),
			Description: fmt.Sprintf("Awarded %d points for receipt %s", points, receipt.InvoiceNumber),
			Timestamp:   entities.Timestamp{CreatedAt: now, UpdatedAt: now},
		},
		{
			ID:          uuid.New(),
			UserID:      receipt.UserID,
			ReceiptID:   receipt.ID,
			Kind:        domain.RewardKindCashback,
			Amount:      cashback,
			Balance:     cashbackBalance + cashback,
			Description: fmt.Sprintf("Awarded %.2f cashback for receipt %s", cashback, receipt.InvoiceNumber),
			Timestamp:   entities.Timestamp{CreatedAt: now, UpdatedAt: now},
		},
	})
}

func (s *rewardService) GetBalance(ctx context.Context, userID string) (*domain.RewardBalance, error) {
	points, err := s.rewardRepository.GetBalance(ctx, userID, domain.RewardKindPoints)
	if err != nil {
		return nil, err
	}
	cashback, err := s.rewardRepository.GetBalance(ctx, userID, domain.RewardKindCashback)
	if err != nil {
		return nil, err
	}
	return &domain.RewardBalance{
		Points:   points,
		Cashback: cashback,
	}, nil
}

func (s *rewardService) GetHistory(ctx context.Context, userID string, page, limit int) ([]*domain.RewardTransaction, int64, error) {
	transactions, count, err := s.rewardRepository.GetUserTransactions(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.RewardTransaction, 0, len(transactions))
	for _, tx := range transactions {
		result = append(result, &domain.RewardTransaction{
			ID:          tx.ID.String(),
			ReceiptID:   tx.ReceiptID.String(),
			Kind:        tx.Kind,
			Amount:      tx.Amount,
			Balance:     tx.Balance,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		})
	}

	return result, count, nil
}
