package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransfer_DebitAndCredit(t *testing.T) {
	tests := []struct {
		name         string
		transfer     Transfer
		wantDebit    int64
		wantCredited int64
	}{
		{
			name:         "Sender pays fee",
			transfer:     Transfer{Amount: 200000, Fee: 1000, FeePayer: FeePayerSender},
			wantDebit:    201000,
			wantCredited: 200000,
		},
		{
			name:         "Receiver pays fee",
			transfer:     Transfer{Amount: 200000, Fee: 1000, FeePayer: FeePayerReceiver},
			wantDebit:    200000,
			wantCredited: 199000,
		},
		{
			name:         "Zero fee",
			transfer:     Transfer{Amount: 200000, FeePayer: FeePayerSender},
			wantDebit:    200000,
			wantCredited: 200000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDebit, tt.transfer.TotalDebit())
			assert.Equal(t, tt.wantCredited, tt.transfer.CreditedAmount())
			// the fee is the only money that leaves the ledger
			assert.Equal(t, tt.transfer.Fee, tt.transfer.TotalDebit()-tt.transfer.CreditedAmount())
		})
	}
}

func TestTransfer_Validate(t *testing.T) {
	valid := Transfer{
		ReceiverAccountNumber: "9876543210",
		Amount:                1000,
		FeePayer:              FeePayerSender,
	}
	assert.NoError(t, valid.Validate())

	zero := valid
	zero.Amount = 0
	assert.True(t, errors.Is(zero.Validate(), ErrInvalidAmount))

	badPayer := valid
	badPayer.FeePayer = "bank"
	assert.True(t, errors.Is(badPayer.Validate(), ErrInvalidPolicy))

	feeTooLarge := valid
	feeTooLarge.FeePayer = FeePayerReceiver
	feeTooLarge.Fee = 1000
	assert.True(t, errors.Is(feeTooLarge.Validate(), ErrInvalidAmount))

	debitOverflows := valid
	debitOverflows.Amount = MaxAmount
	debitOverflows.Fee = 1
	assert.True(t, errors.Is(debitOverflows.Validate(), ErrInvalidAmount))

	noReceiver := valid
	noReceiver.ReceiverAccountNumber = ""
	assert.EqualError(t, noReceiver.Validate(), "receiver account number cannot be empty")
}

func TestParseFeePayer(t *testing.T) {
	p, err := ParseFeePayer("")
	assert.NoError(t, err)
	assert.Equal(t, FeePayerSender, p)

	p, err = ParseFeePayer("receiver")
	assert.NoError(t, err)
	assert.Equal(t, FeePayerReceiver, p)

	_, err = ParseFeePayer("both")
	assert.True(t, errors.Is(err, ErrInvalidPolicy))
}

func TestInsufficientFundsError(t *testing.T) {
	var err error = &InsufficientFundsError{Required: 150000, Available: 100000}

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "insufficient funds: required 150000 VND, available 100000 VND", err.Error())

	var ife *InsufficientFundsError
	assert.True(t, errors.As(err, &ife))
	assert.Equal(t, int64(150000), ife.Required)
}

func TestNewTransferFeatures(t *testing.T) {
	sender := &Account{Balance: 100000}

	f := NewTransferFeatures(sender, 150000, false)
	assert.Equal(t, FraudTxTransfer, f.Type)
	assert.Equal(t, 100000.0, f.OldBalanceOrig)
	assert.Equal(t, 0.0, f.NewBalanceOrig)
	assert.Equal(t, 150000.0, f.NewBalanceDest)
	assert.Equal(t, 0, f.IsFlaggedFraud)

	f = NewTransferFeatures(sender, 40000, true)
	assert.Equal(t, 60000.0, f.NewBalanceOrig)
	assert.Equal(t, 1, f.IsFlaggedFraud)
}

func TestStorageFailure(t *testing.T) {
	assert.Nil(t, StorageFailure(nil))

	notFound := fmt.Errorf("account: %w", ErrNotFound)
	assert.Equal(t, notFound, StorageFailure(notFound))

	funds := &InsufficientFundsError{Required: 2, Available: 1}
	assert.Equal(t, funds, StorageFailure(funds))

	raw := errors.New("connection reset by peer")
	wrapped := StorageFailure(raw)
	assert.ErrorIs(t, wrapped, ErrStorageFailure)
	assert.ErrorIs(t, wrapped, raw)
}
