package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of ledger entry
type TransactionKind string

const (
	TransactionKindCredit      TransactionKind = "credit"
	TransactionKindDebit       TransactionKind = "debit"
	TransactionKindTransferIn  TransactionKind = "transfer_in"
	TransactionKindTransferOut TransactionKind = "transfer_out"
	TransactionKindExpense     TransactionKind = "expense"
	TransactionKindIncome      TransactionKind = "income"
)

// Outgoing reports whether the kind reduces the account balance
func (k TransactionKind) Outgoing() bool {
	switch k {
	case TransactionKindDebit, TransactionKindTransferOut, TransactionKindExpense:
		return true
	}
	return false
}

func (k TransactionKind) valid() bool {
	switch k {
	case TransactionKindCredit, TransactionKindDebit, TransactionKindTransferIn,
		TransactionKindTransferOut, TransactionKindExpense, TransactionKindIncome:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry. Amount is unsigned; Kind carries the direction.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   *uuid.UUID
	TransferID  *uuid.UUID
	Kind        TransactionKind
	Amount      int64
	Description string
	Date        time.Time
}

// Validate ensures the ledger entry adheres to domain rules
func (t *Transaction) Validate() error {
	if !t.Kind.valid() {
		return errors.New("transaction kind is not recognised")
	}
	if t.Amount <= 0 {
		return errors.New("transaction amount must be positive")
	}
	if t.Description == "" {
		return errors.New("transaction description cannot be empty")
	}
	return nil
}
