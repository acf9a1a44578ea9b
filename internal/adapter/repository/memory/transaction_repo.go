package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(store *Store) domain.TransactionRepository {
	return &transactionRepository{store: store}
}

// ListByUser returns the user's ledger entries, newest first
func (r *transactionRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool { return t.UserID == userID }, true), nil
}

// ListByTransfer returns the entries of one transfer in insertion order
func (r *transactionRepository) ListByTransfer(_ context.Context, transferID uuid.UUID) ([]*domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool {
		return t.TransferID != nil && *t.TransferID == transferID
	}, false), nil
}

func (r *transactionRepository) filter(match func(*domain.Transaction) bool, newest bool) []*domain.Transaction {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Transaction, 0)
	for _, t := range r.store.transactions {
		if match(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	if newest {
		out = newestFirst(out, func(t *domain.Transaction) int64 { return t.Date.UnixNano() })
	}
	return out
}
