package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, transfer_id, kind, amount, description, created_at`

// ListByUser returns the user's ledger entries, newest first
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

// ListByTransfer returns the ledger entries produced by one transfer
func (r *transactionRepository) ListByTransfer(ctx context.Context, transferID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transfer_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, transferID)
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		var accountID, transferID uuid.NullUUID
		var kind string
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&accountID,
			&transferID,
			&kind,
			&t.Amount,
			&t.Description,
			&t.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if accountID.Valid {
			id := accountID.UUID
			t.AccountID = &id
		}
		if transferID.Valid {
			id := transferID.UUID
			t.TransferID = &id
		}
		t.Kind = domain.TransactionKind(kind)
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
