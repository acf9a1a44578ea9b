package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// savingsGoalRepository implements domain.SavingsGoalRepository
type savingsGoalRepository struct {
	db *DB
}

// NewSavingsGoalRepository creates a new savings goal repository
func NewSavingsGoalRepository(db *DB) domain.SavingsGoalRepository {
	return &savingsGoalRepository{db: db}
}

// GetByID retrieves a goal by its ID
func (r *savingsGoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE id = $1`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "savings goal")
	}
	return goal, nil
}

// ListByUser returns the user's active goals, newest first
func (r *savingsGoalRepository) ListByUser(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*domain.SavingsGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals
		WHERE user_id = $1 AND active AND ($2::uuid IS NULL OR account_id = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, nullableUUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to query savings goals: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}
