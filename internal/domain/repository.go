package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines read and lifecycle operations on accounts.
// Balances are only changed through a LedgerTx.
type AccountRepository interface {
	// GetByID retrieves an account by its ID, active or not
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByNumber retrieves an account by its account number, active or not
	GetByNumber(ctx context.Context, number string) (*Account, error)

	// ListByOwner returns the owner's active accounts, oldest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)

	// ListAllByOwner returns every account of the owner including deactivated ones
	ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)

	// Create inserts a new account.
	// Returns ErrDuplicateAccountNumber when the number is already taken.
	Create(ctx context.Context, account *Account) error

	// SetActive flips the soft-delete flag
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TransferRepository defines read operations on persisted transfers
type TransferRepository interface {
	// GetByID retrieves a transfer by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// ListBySenders returns transfers sent from any of the given accounts, newest first
	ListBySenders(ctx context.Context, senderIDs []uuid.UUID, limit, offset int) ([]*Transfer, error)

	// RecentRecipients returns distinct receivers of completed transfers, most recent first
	RecentRecipients(ctx context.Context, senderIDs []uuid.UUID, limit int) ([]*Recipient, error)
}

// TransactionRepository defines read operations on ledger entries
type TransactionRepository interface {
	// ListByUser returns the user's ledger entries, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)

	// ListByTransfer returns the ledger entries produced by one transfer
	ListByTransfer(ctx context.Context, transferID uuid.UUID) ([]*Transaction, error)
}

// SavingsGoalRepository defines read operations on savings goals.
// Writes go through a LedgerTx so they serialise with the account row.
type SavingsGoalRepository interface {
	// GetByID retrieves a goal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*SavingsGoal, error)

	// ListByUser returns the user's active goals, newest first.
	// If accountID is nil, goals of every account are returned.
	ListByUser(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*SavingsGoal, error)
}

// UserDirectory resolves the user facts the ledger needs from the auth system
type UserDirectory interface {
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// LedgerTx is a unit of work holding exclusive row locks until commit or rollback
type LedgerTx interface {
	// LockAccounts locks the given accounts for update in ascending ID order.
	// Missing accounts are absent from the result map.
	LockAccounts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*Account, error)

	// LockAccountByNumber locks one account by number
	LockAccountByNumber(ctx context.Context, number string) (*Account, error)

	// UpdateBalance writes a new balance for a locked account
	UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error

	// InsertTransfer appends a transfer row
	InsertTransfer(ctx context.Context, transfer *Transfer) error

	// InsertTransaction appends a ledger entry
	InsertTransaction(ctx context.Context, tx *Transaction) error

	// ListActiveGoals returns the active savings goals of an account
	ListActiveGoals(ctx context.Context, accountID uuid.UUID) ([]*SavingsGoal, error)

	// LockGoal locks one savings goal for update, active or not
	LockGoal(ctx context.Context, id uuid.UUID) (*SavingsGoal, error)

	// SaveGoal inserts or updates a savings goal
	SaveGoal(ctx context.Context, goal *SavingsGoal) error
}

// LedgerStore runs fn inside one transaction. If fn returns an error, every write made
// through tx is discarded; otherwise all of them are committed together.
type LedgerStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// EventPublisher announces committed ledger events
type EventPublisher interface {
	PublishTransferCompleted(ctx context.Context, event TransferCompleted) error
}
