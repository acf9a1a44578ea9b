package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// savingsGoalRepository implements domain.SavingsGoalRepository
type savingsGoalRepository struct {
	store *Store
}

// NewSavingsGoalRepository creates a new savings goal repository
func NewSavingsGoalRepository(store *Store) domain.SavingsGoalRepository {
	return &savingsGoalRepository{store: store}
}

// GetByID retrieves a goal by its ID, active or not
func (r *savingsGoalRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.goals[id]
	if !ok {
		return nil, fmt.Errorf("savings goal %s: %w", id, domain.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

// ListByUser returns the user's active goals, newest first
func (r *savingsGoalRepository) ListByUser(_ context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*domain.SavingsGoal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*domain.SavingsGoal
	for _, id := range r.store.goalOrder {
		g := r.store.goals[id]
		if !g.Active || g.UserID != userID {
			continue
		}
		if accountID != nil && g.AccountID != *accountID {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return newestFirst(out, func(g *domain.SavingsGoal) int64 { return g.CreatedAt.UnixNano() }), nil
}
