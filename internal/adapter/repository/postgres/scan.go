package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

const uniqueViolation = "23505"

const accountColumns = `id, owner_id, account_number, account_type, balance, currency, active, created_at, updated_at`

const transferColumns = `id, sender_account_id, receiver_account_number, receiver_bank, receiver_name,
		amount, fee, fee_payer, description, status, created_at`

const goalColumns = `id, user_id, account_id, name, target_amount, allocated_amount, color, active, created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (*domain.Account, error) {
	var a domain.Account
	var accountType string
	if err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.AccountNumber,
		&accountType,
		&a.Balance,
		&a.Currency,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.AccountType = domain.AccountType(accountType)
	return &a, nil
}

func scanTransfer(row scanner) (*domain.Transfer, error) {
	var t domain.Transfer
	var feePayer, status string
	if err := row.Scan(
		&t.ID,
		&t.SenderAccountID,
		&t.ReceiverAccountNumber,
		&t.ReceiverBank,
		&t.ReceiverName,
		&t.Amount,
		&t.Fee,
		&feePayer,
		&t.Description,
		&status,
		&t.Date,
	); err != nil {
		return nil, err
	}
	t.FeePayer = domain.FeePayer(feePayer)
	t.Status = domain.TransferStatus(status)
	return &t, nil
}

func scanGoal(row scanner) (*domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.AccountID,
		&g.Name,
		&g.TargetAmount,
		&g.AllocatedAmount,
		&g.Color,
		&g.Active,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

// notFound maps sql.ErrNoRows onto domain.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
