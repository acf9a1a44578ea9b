package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// transferRepository implements domain.TransferRepository
type transferRepository struct {
	store *Store
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(store *Store) domain.TransferRepository {
	return &transferRepository{store: store}
}

// GetByID retrieves a transfer by its ID
func (r *transferRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Transfer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.transfers {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("transfer %s: %w", id, domain.ErrNotFound)
}

// ListBySenders returns transfers sent from any of senderIDs, newest first.
// A non-positive limit returns everything after offset.
func (r *transferRepository) ListBySenders(_ context.Context, senderIDs []uuid.UUID, limit, offset int) ([]*domain.Transfer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := page(r.fromSenders(senderIDs), limit, offset)
	for i, t := range out {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

// RecentRecipients returns distinct receivers of completed transfers, most recent first
func (r *transferRepository) RecentRecipients(_ context.Context, senderIDs []uuid.UUID, limit int) ([]*domain.Recipient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Recipient, 0)
	seen := make(map[string]bool)
	for _, t := range r.fromSenders(senderIDs) {
		if t.Status != domain.TransferStatusCompleted || seen[t.ReceiverAccountNumber] {
			continue
		}
		seen[t.ReceiverAccountNumber] = true
		out = append(out, &domain.Recipient{
			AccountNumber: t.ReceiverAccountNumber,
			Name:          t.ReceiverName,
			Bank:          t.ReceiverBank,
			LastTransfer:  t.Date,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *transferRepository) fromSenders(senderIDs []uuid.UUID) []*domain.Transfer {
	senders := make(map[uuid.UUID]bool, len(senderIDs))
	for _, id := range senderIDs {
		senders[id] = true
	}

	var matched []*domain.Transfer
	for _, t := range r.store.transfers {
		if senders[t.SenderAccountID] {
			matched = append(matched, t)
		}
	}
	return newestFirst(matched, func(t *domain.Transfer) int64 { return t.Date.UnixNano() })
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return make([]T, 0)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
