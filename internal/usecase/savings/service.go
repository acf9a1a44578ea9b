package savings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// CreateGoalInput represents the input for creating a savings goal
type CreateGoalInput struct {
	UserID          uuid.UUID
	AccountID       uuid.UUID
	Name            string
	TargetAmount    int64
	AllocatedAmount int64
	Color           string
}

// UpdateGoalInput represents a partial update; nil fields are left unchanged
type UpdateGoalInput struct {
	GoalID          uuid.UUID
	UserID          uuid.UUID
	Name            *string
	TargetAmount    *int64
	AllocatedAmount *int64
	Color           *string
}

// SavingsService manages savings goals. Goals earmark balance; they never move money.
type SavingsService struct {
	AccountRepo domain.AccountRepository
	GoalRepo    domain.SavingsGoalRepository
	Store       domain.LedgerStore
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// NewSavingsService creates a new SavingsService instance
func NewSavingsService(
	accountRepo domain.AccountRepository,
	goalRepo domain.SavingsGoalRepository,
	store domain.LedgerStore,
	logger logrus.FieldLogger,
) *SavingsService {
	return &SavingsService{
		AccountRepo: accountRepo,
		GoalRepo:    goalRepo,
		Store:       store,
		Logger:      logger,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateGoal creates a goal on an account owned by the user.
// The allocation may not exceed the balance left after the account's other active goals.
func (s *SavingsService) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.SavingsGoal, error) {
	now := s.Now()
	goal := &domain.SavingsGoal{
		ID:              uuid.New(),
		UserID:          input.UserID,
		AccountID:       input.AccountID,
		Name:            input.Name,
		TargetAmount:    input.TargetAmount,
		AllocatedAmount: input.AllocatedAmount,
		Color:           input.Color,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if goal.Color == "" {
		goal.Color = domain.DefaultGoalColor
	}
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidGoal, err)
	}

	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		if _, err := s.lockOwnedAccount(ctx, tx, input.AccountID, input.UserID, goal); err != nil {
			return err
		}
		return tx.SaveGoal(ctx, goal)
	})
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	s.Logger.WithFields(logrus.Fields{
		"goal_id":    goal.ID,
		"account_id": goal.AccountID,
	}).Info("savings goal created")

	return goal, nil
}

// ListGoals returns the user's active goals, optionally limited to one account
func (s *SavingsService) ListGoals(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]*domain.SavingsGoal, error) {
	goals, err := s.GoalRepo.ListByUser(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []*domain.SavingsGoal{}
	}
	return goals, nil
}

// GetGoal returns one active goal of the user
func (s *SavingsService) GetGoal(ctx context.Context, goalID, userID uuid.UUID) (*domain.SavingsGoal, error) {
	goal, err := s.GoalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID || !goal.Active {
		return nil, fmt.Errorf("savings goal %s: %w", goalID, domain.ErrNotFound)
	}
	return goal, nil
}

// UpdateGoal applies a partial update, re-checking the allocation against the locked account.
// The goal is re-read under lock so a concurrent delete cannot be undone.
func (s *SavingsService) UpdateGoal(ctx context.Context, input UpdateGoalInput) (*domain.SavingsGoal, error) {
	var updated *domain.SavingsGoal

	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		goal, err := lockOwnedGoal(ctx, tx, input.GoalID, input.UserID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			goal.Name = *input.Name
		}
		if input.TargetAmount != nil {
			goal.TargetAmount = *input.TargetAmount
		}
		if input.AllocatedAmount != nil {
			goal.AllocatedAmount = *input.AllocatedAmount
		}
		if input.Color != nil && *input.Color != "" {
			goal.Color = *input.Color
		}
		goal.UpdatedAt = s.Now()
		if err := goal.Validate(); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidGoal, err)
		}

		if input.AllocatedAmount != nil {
			if _, err := s.lockOwnedAccount(ctx, tx, goal.AccountID, input.UserID, goal); err != nil {
				return err
			}
		}
		if err := tx.SaveGoal(ctx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		return nil, domain.StorageFailure(err)
	}

	return updated, nil
}

// DeleteGoal deactivates a goal, releasing its allocation
func (s *SavingsService) DeleteGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		goal, err := lockOwnedGoal(ctx, tx, goalID, userID)
		if err != nil {
			return err
		}
		goal.Active = false
		goal.UpdatedAt = s.Now()
		return tx.SaveGoal(ctx, goal)
	})
	if err != nil {
		return domain.StorageFailure(err)
	}

	s.Logger.WithField("goal_id", goalID).Info("savings goal deleted")
	return nil
}

// lockOwnedGoal locks a goal and hides it unless it is active and owned by userID
func lockOwnedGoal(ctx context.Context, tx domain.LedgerTx, goalID, userID uuid.UUID) (*domain.SavingsGoal, error) {
	goal, err := tx.LockGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID || !goal.Active {
		return nil, fmt.Errorf("savings goal %s: %w", goalID, domain.ErrNotFound)
	}
	return goal, nil
}

// Summary aggregates the active goals of one account owned by the user
func (s *SavingsService) Summary(ctx context.Context, accountID, userID uuid.UUID) (*domain.SavingsSummary, error) {
	account, err := s.ownedAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.GoalRepo.ListByUser(ctx, userID, &accountID)
	if err != nil {
		return nil, err
	}

	summary := &domain.SavingsSummary{
		AccountID:    accountID,
		TotalBalance: account.Balance,
		GoalsCount:   len(goals),
		Goals:        goals,
	}
	if summary.Goals == nil {
		summary.Goals = []*domain.SavingsGoal{}
	}
	for _, g := range goals {
		summary.TotalAllocated += g.AllocatedAmount
	}
	summary.Available = summary.TotalBalance - summary.TotalAllocated
	summary.IsOverAllocated = summary.Available < 0

	return summary, nil
}

func (s *SavingsService) ownedAccount(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.OwnedBy(userID) || !account.Active {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	return account, nil
}

// lockOwnedAccount locks the account and checks that goal's allocation fits beside the other active goals
func (s *SavingsService) lockOwnedAccount(ctx context.Context, tx domain.LedgerTx, accountID, userID uuid.UUID, goal *domain.SavingsGoal) (*domain.Account, error) {
	locked, err := tx.LockAccounts(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account, ok := locked[accountID]
	if !ok || !account.OwnedBy(userID) || !account.Active {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	others, err := tx.ListActiveGoals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var allocated int64
	for _, g := range others {
		if g.ID != goal.ID {
			allocated += g.AllocatedAmount
		}
	}

	available := account.Balance - allocated
	if goal.AllocatedAmount > available {
		return nil, fmt.Errorf("%w: cannot allocate %d VND, available %d VND", domain.ErrOverAllocated, goal.AllocatedAmount, available)
	}
	return account, nil
}
