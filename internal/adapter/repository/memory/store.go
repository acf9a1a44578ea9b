package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// Store is an in-memory ledger used by tests and the demo profile.
// One mutex serialises every unit of work; RunInTx holds it until fn returns,
// so repository methods must not be called from inside fn.
type Store struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*domain.Account
	byNumber     map[string]uuid.UUID
	accountOrder []uuid.UUID
	transfers    []*domain.Transfer
	transactions []*domain.Transaction
	goals        map[uuid.UUID]*domain.SavingsGoal
	goalOrder    []uuid.UUID
	users        map[uuid.UUID]*domain.User
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*domain.Account),
		byNumber: make(map[string]uuid.UUID),
		goals:    make(map[uuid.UUID]*domain.SavingsGoal),
		users:    make(map[uuid.UUID]*domain.User),
	}
}

// PutUser registers or replaces a user in the directory
func (s *Store) PutUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[user.ID] = &u
	return nil
}

// GetUser implements domain.UserDirectory
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// RunInTx implements domain.LedgerStore. Writes are staged on a memTx and
// applied only when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:    s,
		balances: make(map[uuid.UUID]int64),
		goals:    make(map[uuid.UUID]*domain.SavingsGoal),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// memTx stages writes against a locked Store
type memTx struct {
	store        *Store
	balances     map[uuid.UUID]int64
	transfers    []*domain.Transfer
	transactions []*domain.Transaction
	goals        map[uuid.UUID]*domain.SavingsGoal
	goalOrder    []uuid.UUID
}

func (t *memTx) view(id uuid.UUID) (*domain.Account, bool) {
	a, ok := t.store.accounts[id]
	if !ok {
		return nil, false
	}
	cp := *a
	if b, staged := t.balances[id]; staged {
		cp.Balance = b
	}
	return &cp, true
}

func (t *memTx) LockAccounts(_ context.Context, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	out := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range ids {
		if a, ok := t.view(id); ok {
			out[id] = a
		}
	}
	return out, nil
}

func (t *memTx) LockAccountByNumber(_ context.Context, number string) (*domain.Account, error) {
	id, ok := t.store.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", number, domain.ErrNotFound)
	}
	a, _ := t.view(id)
	return a, nil
}

func (t *memTx) UpdateBalance(_ context.Context, id uuid.UUID, balance int64) error {
	if _, ok := t.store.accounts[id]; !ok {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	if balance < 0 {
		return fmt.Errorf("account %s: balance cannot be negative", id)
	}
	t.balances[id] = balance
	return nil
}

func (t *memTx) InsertTransfer(_ context.Context, transfer *domain.Transfer) error {
	cp := *transfer
	t.transfers = append(t.transfers, &cp)
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, entry *domain.Transaction) error {
	cp := *entry
	t.transactions = append(t.transactions, &cp)
	return nil
}

func (t *memTx) ListActiveGoals(_ context.Context, accountID uuid.UUID) ([]*domain.SavingsGoal, error) {
	var out []*domain.SavingsGoal
	for _, id := range append(append([]uuid.UUID{}, t.store.goalOrder...), t.goalOrder...) {
		g, staged := t.goals[id]
		if !staged {
			g = t.store.goals[id]
		}
		if g.Active && g.AccountID == accountID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *memTx) LockGoal(_ context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	g, staged := t.goals[id]
	if !staged {
		g = t.store.goals[id]
	}
	if g == nil {
		return nil, fmt.Errorf("savings goal %s: %w", id, domain.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (t *memTx) SaveGoal(_ context.Context, goal *domain.SavingsGoal) error {
	cp := *goal
	if _, exists := t.store.goals[goal.ID]; !exists {
		if _, staged := t.goals[goal.ID]; !staged {
			t.goalOrder = append(t.goalOrder, goal.ID)
		}
	}
	t.goals[goal.ID] = &cp
	return nil
}

func (t *memTx) commit() {
	s := t.store
	for id, b := range t.balances {
		s.accounts[id].Balance = b
	}
	s.transfers = append(s.transfers, t.transfers...)
	s.transactions = append(s.transactions, t.transactions...)
	for id, g := range t.goals {
		s.goals[id] = g
	}
	s.goalOrder = append(s.goalOrder, t.goalOrder...)
}

// newestFirst sorts by date descending, later insertions first on ties
func newestFirst[T any](items []T, date func(T) int64) []T {
	out := make([]T, len(items))
	for i := range items {
		out[len(items)-1-i] = items[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return date(out[i]) > date(out[j]) })
	return out
}

var (
	_ domain.LedgerStore   = (*Store)(nil)
	_ domain.UserDirectory = (*Store)(nil)
	_ domain.LedgerTx      = (*memTx)(nil)
)
