package domain

import "context"

// FraudTxType mirrors the transaction type encoding the scoring model was trained on
type FraudTxType int

const (
	FraudTxCashIn FraudTxType = iota
	FraudTxCashOut
	FraudTxDebit
	FraudTxPayment
	FraudTxTransfer
)

// FraudFeatures is the feature record sent to the external scorer.
// IsFlaggedFraud is 0 unless the receiving user is marked for fraud checking.
type FraudFeatures struct {
	Step           int         `json:"step"`
	Type           FraudTxType `json:"type"`
	Amount         float64     `json:"amount"`
	OldBalanceOrig float64     `json:"oldbalanceOrg"`
	NewBalanceOrig float64     `json:"newbalanceOrig"`
	OldBalanceDest float64     `json:"oldbalanceDest"`
	NewBalanceDest float64     `json:"newbalanceDest"`
	IsFlaggedFraud int         `json:"isFlaggedFraud"`
}

// NewTransferFeatures builds the feature record for a transfer of amount out of sender
func NewTransferFeatures(sender *Account, amount int64, receiverFlagged bool) FraudFeatures {
	newBalance := sender.Balance - amount
	if newBalance < 0 {
		newBalance = 0
	}
	f := FraudFeatures{
		Step:           1,
		Type:           FraudTxTransfer,
		Amount:         float64(amount),
		OldBalanceOrig: float64(sender.Balance),
		NewBalanceOrig: float64(newBalance),
		OldBalanceDest: 0,
		NewBalanceDest: float64(amount),
	}
	if receiverFlagged {
		f.IsFlaggedFraud = 1
	}
	return f
}

// FraudScore is the scorer's answer
type FraudScore struct {
	IsFraud     bool
	Probability float64
}

// FraudScorer is the external fraud classifier
type FraudScorer interface {
	Score(ctx context.Context, features FraudFeatures) (*FraudScore, error)
}
