package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// Store implements domain.LedgerStore on top of a PostgreSQL transaction
type Store struct {
	db *DB
}

// NewStore creates a new ledger store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// RunInTx begins a transaction, runs fn and commits only if fn returns nil
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(ctx, &pgTx{tx: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// pgTx implements domain.LedgerTx with SELECT ... FOR UPDATE row locks
type pgTx struct {
	tx *sql.Tx
}

// LockAccounts locks the rows in ascending id order so concurrent transfers cannot deadlock
func (t *pgTx) LockAccounts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`

	rows, err := t.tx.QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]*domain.Account, len(ids))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		locked[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked accounts: %w", err)
	}

	return locked, nil
}

func (t *pgTx) LockAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`

	a, err := scanAccount(t.tx.QueryRowContext(ctx, query, number))
	if err != nil {
		return nil, notFound(err, "account")
	}
	return a, nil
}

func (t *pgTx) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	query := `UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1`

	res, err := t.tx.ExecContext(ctx, query, id, balance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (t *pgTx) InsertTransfer(ctx context.Context, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := t.tx.ExecContext(ctx, query,
		transfer.ID,
		transfer.SenderAccountID,
		transfer.ReceiverAccountNumber,
		transfer.ReceiverBank,
		transfer.ReceiverName,
		transfer.Amount,
		transfer.Fee,
		string(transfer.FeePayer),
		transfer.Description,
		string(transfer.Status),
		transfer.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, entry *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		nullableUUID(entry.AccountID),
		nullableUUID(entry.TransferID),
		string(entry.Kind),
		entry.Amount,
		entry.Description,
		entry.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (t *pgTx) ListActiveGoals(ctx context.Context, accountID uuid.UUID) ([]*domain.SavingsGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE account_id = $1 AND active
		ORDER BY created_at ASC
	`

	rows, err := t.tx.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings goals: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

func (t *pgTx) LockGoal(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE id = $1 FOR UPDATE`

	goal, err := scanGoal(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "savings goal")
	}
	return goal, nil
}

func (t *pgTx) SaveGoal(ctx context.Context, goal *domain.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			target_amount = EXCLUDED.target_amount,
			allocated_amount = EXCLUDED.allocated_amount,
			color = EXCLUDED.color,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := t.tx.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.AccountID,
		goal.Name,
		goal.TargetAmount,
		goal.AllocatedAmount,
		goal.Color,
		goal.Active,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save savings goal: %w", err)
	}
	return nil
}

func collectGoals(rows *sql.Rows) ([]*domain.SavingsGoal, error) {
	goals := make([]*domain.SavingsGoal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating savings goals: %w", err)
	}
	return goals, nil
}

var (
	_ domain.LedgerStore = (*Store)(nil)
	_ domain.LedgerTx    = (*pgTx)(nil)
)
