package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultGoalColor is used when a goal is created without a color
const DefaultGoalColor = "bg-blue-500"

// SavingsGoal earmarks part of an account balance. It never moves money.
type SavingsGoal struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	AccountID       uuid.UUID
	Name            string
	TargetAmount    int64
	AllocatedAmount int64
	Color           string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate ensures the goal adheres to domain rules
func (g *SavingsGoal) Validate() error {
	if g.Name == "" {
		return errors.New("savings goal name cannot be empty")
	}
	if len(g.Name) > 100 {
		return errors.New("savings goal name must be at most 100 characters")
	}
	if g.TargetAmount <= 0 {
		return errors.New("savings goal target amount must be positive")
	}
	if g.AllocatedAmount < 0 {
		return errors.New("savings goal allocated amount cannot be negative")
	}
	return nil
}

// SavingsSummary aggregates the active goals of one account
type SavingsSummary struct {
	AccountID       uuid.UUID
	TotalBalance    int64
	TotalAllocated  int64
	Available       int64
	GoalsCount      int
	IsOverAllocated bool
	Goals           []*SavingsGoal
}
