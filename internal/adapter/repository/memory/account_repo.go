package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	store *Store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store *Store) domain.AccountRepository {
	return &accountRepository{store: store}
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// GetByNumber retrieves an account by its account number
func (r *accountRepository) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", number, domain.ErrNotFound)
	}
	cp := *r.store.accounts[id]
	return &cp, nil
}

// ListByOwner returns the owner's active accounts, oldest first
func (r *accountRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return r.list(ownerID, true), nil
}

// ListAllByOwner returns every account of the owner
func (r *accountRepository) ListAllByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return r.list(ownerID, false), nil
}

func (r *accountRepository) list(ownerID uuid.UUID, activeOnly bool) []*domain.Account {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Account, 0)
	for _, id := range r.store.accountOrder {
		a := r.store.accounts[id]
		if a.OwnerID != ownerID || (activeOnly && !a.Active) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Create inserts a new account, rejecting taken numbers
func (r *accountRepository) Create(_ context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.byNumber[account.AccountNumber]; taken {
		return fmt.Errorf("account %s: %w", account.AccountNumber, domain.ErrDuplicateAccountNumber)
	}
	if _, exists := r.store.accounts[account.ID]; exists {
		return fmt.Errorf("account id %s already exists", account.ID)
	}

	cp := *account
	r.store.accounts[account.ID] = &cp
	r.store.byNumber[account.AccountNumber] = account.ID
	r.store.accountOrder = append(r.store.accountOrder, account.ID)
	return nil
}

// SetActive flips the soft-delete flag
func (r *accountRepository) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	a.Active = active
	a.UpdatedAt = time.Now().UTC()
	return nil
}
