package reward

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRewardRepository struct {
	transactions []*entities.RewardTransaction
	failNext     error
}

func (f *fakeRewardRepository) CreateTransactions(_ context.Context, transactions []*entities.RewardTransaction) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.transactions = append(f.transactions, transactions...)
	return nil
}

func (f *fakeRewardRepository) GetBalance(_ context.Context, userID string, kind string) (float64, error) {
	for i := len(f.transactions) - 1; i >= 0; i-- {
		tx := f.transactions[i]
		if tx.UserID.String() == userID && tx.Kind == kind {
			return tx.Balance, nil
		}
	}
	return 0, nil
}

func (f *fakeRewardRepository) HasTransactionForReceipt(_ context.Context, receiptID string, kind string) (bool, error) {
	for _, tx := range f.transactions {
		if tx.ReceiptID.String() == receiptID && tx.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRewardRepository) GetUserTransactions(_ context.Context, userID string, _, _ int) ([]*entities.RewardTransaction, int64, error) {
	var out []*entities.RewardTransaction
	for _, tx := range f.transactions {
		if tx.UserID.String() == userID {
			out = append(out, tx)
		}
	}
	return out, int64(len(out)), nil
}

func TestIssueRewards_WritesBothLedgers(t *testing.T) {
	repo := &fakeRewardRepository{}
	svc := NewRewardService(repo)

	receipt := &entities.Receipt{ID: uuid.New(), UserID: uuid.New(), InvoiceNumber: "123456"}
	require.NoError(t, svc.IssueRewards(context.Background(), receipt, 24, 12.0))

	require.Len(t, repo.transactions, 2)
	assert.Equal(t, domain.RewardKindPoints, repo.transactions[0].Kind)
	assert.InDelta(t, 24.0, repo.transactions[0].Amount, 1e-9)
	assert.InDelta(t, 24.0, repo.transactions[0].Balance, 1e-9)
	assert.Equal(t, domain.RewardKindCashback, repo.transactions[1].Kind)
	assert.InDelta(t, 12.0, repo.transactions[1].Amount, 1e-9)
}

func TestIssueRewards_SecondCallIsRejected(t *testing.T) {
	repo := &fakeRewardRepository{}
	svc := NewRewardService(repo)

	receipt := &entities.Receipt{ID: uuid.New(), UserID: uuid.New(), InvoiceNumber: "123456"}
	require.NoError(t, svc.IssueRewards(context.Background(), receipt, 24, 12.0))

	err := svc.IssueRewards(context.Background(), receipt, 24, 12.0)
	assert.ErrorIs(t, err, domain.ErrRewardAlreadyIssued)
	assert.Len(t, repo.transactions, 2)
}

func TestIssueRewards_FailedWriteLeavesNothingAndIsRetryable(t *testing.T) {
	repo := &fakeRewardRepository{failNext: errors.New("connection reset")}
	svc := NewRewardService(repo)

	receipt := &entities.Receipt{ID: uuid.New(), UserID: uuid.New(), InvoiceNumber: "123456"}
	require.Error(t, svc.IssueRewards(context.Background(), receipt, 24, 12.0))

	// The atomic write failed whole, so no partial ledger exists and the
	// retry must issue both entries.
	assert.Empty(t, repo.transactions)
	require.NoError(t, svc.IssueRewards(context.Background(), receipt, 24, 12.0))
	require.Len(t, repo.transactions, 2)
	assert.Equal(t, domain.RewardKindPoints, repo.transactions[0].Kind)
	assert.Equal(t, domain.RewardKindCashback, repo.transactions[1].Kind)
}

func TestIssueRewards_BalancesAccumulate(t *testing.T) {
	repo := &fakeRewardRepository{}
	svc := NewRewardService(repo)

	userID := uuid.New()
	first := &entities.Receipt{ID: uuid.New(), UserID: userID, InvoiceNumber: "111"}
	second := &entities.Receipt{ID: uuid.New(), UserID: userID, InvoiceNumber: "222"}

	require.NoError(t, svc.IssueRewards(context.Background(), first, 10, 5.0))
	require.NoError(t, svc.IssueRewards(context.Background(), second, 14, 7.0))

	balance, err := svc.GetBalance(context.Background(), userID.String())
	require.NoError(t, err)
	assert.InDelta(t, 24.0, balance.Points, 1e-9)
	assert.InDelta(t, 12.0, balance.Cashback, 1e-9)
}
