package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeePayer designates which party the transfer fee reduces
type FeePayer string

const (
	FeePayerSender   FeePayer = "sender"
	FeePayerReceiver FeePayer = "receiver"
)

// ParseFeePayer validates a raw fee payer, defaulting to sender when empty
func ParseFeePayer(raw string) (FeePayer, error) {
	switch FeePayer(raw) {
	case "":
		return FeePayerSender, nil
	case FeePayerSender, FeePayerReceiver:
		return FeePayer(raw), nil
	default:
		return "", fmt.Errorf("%w: fee payer must be sender or receiver, got %q", ErrInvalidPolicy, raw)
	}
}

// TransferStatus represents the lifecycle state of a persisted transfer
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
	TransferStatusPending   TransferStatus = "pending"
)

// TransferMode tells whether the receiver is tracked by this ledger
type TransferMode string

const (
	// TransferModeInternal moves money between two ledger accounts (dual entry)
	TransferModeInternal TransferMode = "internal"
	// TransferModeExternal debits the sender only; the receiver lives in another bank
	TransferModeExternal TransferMode = "external"
)

// Transfer records one money movement. Immutable once completed.
type Transfer struct {
	ID                    uuid.UUID
	SenderAccountID       uuid.UUID
	ReceiverAccountNumber string
	ReceiverBank          string
	ReceiverName          string
	Amount                int64
	Fee                   int64
	FeePayer              FeePayer
	Description           string
	Status                TransferStatus
	Date                  time.Time
}

// TotalDebit is what leaves the sender account
func (t *Transfer) TotalDebit() int64 {
	if t.FeePayer == FeePayerSender {
		return t.Amount + t.Fee
	}
	return t.Amount
}

// CreditedAmount is what reaches the receiver account
func (t *Transfer) CreditedAmount() int64 {
	if t.FeePayer == FeePayerReceiver {
		return t.Amount - t.Fee
	}
	return t.Amount
}

// Validate ensures the transfer adheres to domain rules
func (t *Transfer) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Fee < 0 {
		return errors.New("transfer fee cannot be negative")
	}
	if _, err := AddAmounts(t.Amount, t.Fee); err != nil {
		return err
	}
	if t.FeePayer != FeePayerSender && t.FeePayer != FeePayerReceiver {
		return ErrInvalidPolicy
	}
	if t.CreditedAmount() <= 0 {
		return fmt.Errorf("%w: amount %d does not cover fee %d", ErrInvalidAmount, t.Amount, t.Fee)
	}
	if t.ReceiverAccountNumber == "" {
		return errors.New("receiver account number cannot be empty")
	}
	return nil
}

// Recipient is a distinct receiver of past completed transfers
type Recipient struct {
	AccountNumber string
	Name          string
	Bank          string
	LastTransfer  time.Time
}

// TransferCompleted is published after a transfer commits
type TransferCompleted struct {
	TransferID            uuid.UUID    `json:"transfer_id"`
	SenderAccountID       uuid.UUID    `json:"sender_account_id"`
	ReceiverAccountNumber string       `json:"receiver_account_number"`
	ReceiverBank          string       `json:"receiver_bank"`
	Amount                int64        `json:"amount"`
	Fee                   int64        `json:"fee"`
	FeePayer              FeePayer     `json:"fee_payer"`
	Mode                  TransferMode `json:"mode"`
	OccurredAt            time.Time    `json:"occurred_at"`
}
