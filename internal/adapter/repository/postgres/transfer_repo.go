package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// transferRepository implements domain.TransferRepository
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) domain.TransferRepository {
	return &transferRepository{db: db}
}

// GetByID retrieves a transfer by its ID
func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "transfer")
	}
	return transfer, nil
}

// ListBySenders returns transfers sent from any of senderIDs, newest first.
// A non-positive limit disables the limit.
func (r *transferRepository) ListBySenders(ctx context.Context, senderIDs []uuid.UUID, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE sender_account_id = ANY($1::uuid[])
		ORDER BY created_at DESC, id DESC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, query, uuidArray(senderIDs), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]*domain.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}

	return transfers, nil
}

// RecentRecipients returns distinct receivers of completed transfers, most recent first
func (r *transferRepository) RecentRecipients(ctx context.Context, senderIDs []uuid.UUID, limit int) ([]*domain.Recipient, error) {
	query := `
		SELECT receiver_account_number, receiver_name, receiver_bank, last_transfer
		FROM (
			SELECT DISTINCT ON (receiver_account_number)
				receiver_account_number, receiver_name, receiver_bank, created_at AS last_transfer
			FROM transfers
			WHERE sender_account_id = ANY($1::uuid[]) AND status = $2
			ORDER BY receiver_account_number, created_at DESC
		) recent
		ORDER BY last_transfer DESC
		LIMIT NULLIF($3::int, 0)
	`

	if limit < 0 {
		limit = 0
	}

	rows, err := r.db.QueryContext(ctx, query, uuidArray(senderIDs), string(domain.TransferStatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]*domain.Recipient, 0)
	for rows.Next() {
		var rc domain.Recipient
		if err := rows.Scan(&rc.AccountNumber, &rc.Name, &rc.Bank, &rc.LastTransfer); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, &rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}

	return recipients, nil
}
