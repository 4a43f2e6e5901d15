package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRewardBalance = "reward balance retrieved successfully"
	MessageSuccessGetRewardHistory = "reward history retrieved successfully"
	MessageFailedGetRewardBalance  = "failed to retrieve reward balance"
	MessageFailedGetRewardHistory  = "failed to retrieve reward history"

	ErrRewardAlreadyIssued = errors.New("rewards already issued for this receipt")
)

const (
	// One loyalty point per this many currency units of receipt amount.
	PointsDivisor = 10.0

	RewardKindPoints   = "Points"
	RewardKindCashback = "Cashback"
)

type (
	RewardBalance struct {
		Points   float64 `json:"points"`
		Cashback float64 `json:"cashback"`
	}

	RewardTransaction struct {
		ID          string    `json:"id"`
		ReceiptID   string    `json:"receipt_id"`
		Kind        string    `json:"kind"`
		Amount      float64   `json:"amount"`
		Balance     float64   `json:"balance"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"created_at"`
	}
)
