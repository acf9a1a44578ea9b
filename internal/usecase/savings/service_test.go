package savings

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigipay/vigipay-backend/internal/adapter/repository/memory"
	"github.com/vigipay/vigipay-backend/internal/domain"
)

func setup(t *testing.T, balance int64) (*SavingsService, *domain.Account) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "1000000001",
		AccountType:   domain.AccountTypeSavings,
		Balance:       balance,
		Currency:      domain.CurrencyVND,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, accounts.Create(context.Background(), account))

	svc := NewSavingsService(accounts, memory.NewSavingsGoalRepository(store), store, logger)
	tick := now
	svc.Now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, account
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)

	goal, err := svc.CreateGoal(ctx, CreateGoalInput{
		UserID:          account.OwnerID,
		AccountID:       account.ID,
		Name:            "Tet holiday",
		TargetAmount:    5_000_000,
		AllocatedAmount: 400_000,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGoalColor, goal.Color)
	assert.True(t, goal.Active)

	got, err := svc.GetGoal(ctx, goal.ID, account.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, "Tet holiday", got.Name)
}

func TestCreateGoal_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	_, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "laptop", TargetAmount: 2_000_000, AllocatedAmount: 700_000})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   CreateGoalInput
		wantErr error
	}{
		{
			name:    "exceeds balance left by other goals",
			input:   CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "bike", TargetAmount: 1_000_000, AllocatedAmount: 300_001},
			wantErr: domain.ErrOverAllocated,
		},
		{
			name:    "someone else's account",
			input:   CreateGoalInput{UserID: uuid.New(), AccountID: account.ID, Name: "bike", TargetAmount: 1_000_000},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "empty name",
			input:   CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, TargetAmount: 1_000_000},
			wantErr: domain.ErrInvalidGoal,
		},
		{
			name:    "non-positive target",
			input:   CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "bike"},
			wantErr: domain.ErrInvalidGoal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGoal(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// exactly the remaining balance fits
	_, err = svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "bike", TargetAmount: 1_000_000, AllocatedAmount: 300_000})
	assert.NoError(t, err)
}

func TestUpdateGoal_ExcludesItselfFromAllocation(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	goal, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "car", TargetAmount: 9_000_000, AllocatedAmount: 600_000})
	require.NoError(t, err)

	full := int64(1_000_000)
	updated, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goal.ID, UserID: account.OwnerID, AllocatedAmount: &full})
	require.NoError(t, err)
	assert.Equal(t, full, updated.AllocatedAmount)

	tooMuch := int64(1_000_001)
	_, err = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goal.ID, UserID: account.OwnerID, AllocatedAmount: &tooMuch})
	assert.ErrorIs(t, err, domain.ErrOverAllocated)

	name := "new car"
	renamed, err := svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goal.ID, UserID: account.OwnerID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "new car", renamed.Name)
	assert.Equal(t, full, renamed.AllocatedAmount)

	_, err = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goal.ID, UserID: uuid.New(), Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteGoal_ReleasesAllocation(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	goal, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "phone", TargetAmount: 1_000_000, AllocatedAmount: 1_000_000})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGoal(ctx, goal.ID, account.OwnerID))

	_, err = svc.GetGoal(ctx, goal.ID, account.OwnerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	goals, err := svc.ListGoals(ctx, account.OwnerID, nil)
	require.NoError(t, err)
	assert.Empty(t, goals)

	_, err = svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "phone again", TargetAmount: 1_000_000, AllocatedAmount: 1_000_000})
	assert.NoError(t, err)
}

func TestUpdateGoal_CannotResurrectDeletedGoal(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	goal, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "trip", TargetAmount: 2_000_000, AllocatedAmount: 100_000})
	require.NoError(t, err)

	// the caller read the goal before it was deleted
	stale, err := svc.GetGoal(ctx, goal.ID, account.OwnerID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteGoal(ctx, goal.ID, account.OwnerID))

	name := stale.Name + " 2027"
	_, err = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: stale.ID, UserID: account.OwnerID, Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteGoal(ctx, goal.ID, account.OwnerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := svc.GoalRepo.GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, "trip", stored.Name)
}

func TestUpdateGoal_RacingDeleteStaysDeleted(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)

	for i := 0; i < 20; i++ {
		goal, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "g", TargetAmount: 1_000_000})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			deleteErr = svc.DeleteGoal(ctx, goal.ID, account.OwnerID)
		}()
		go func() {
			defer wg.Done()
			name := "renamed"
			_, _ = svc.UpdateGoal(ctx, UpdateGoalInput{GoalID: goal.ID, UserID: account.OwnerID, Name: &name})
		}()
		wg.Wait()

		require.NoError(t, deleteErr)
		stored, err := svc.GoalRepo.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	for _, amount := range []int64{100_000, 250_000} {
		_, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "g", TargetAmount: 1_000_000, AllocatedAmount: amount})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, account.ID, account.OwnerID)

	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), summary.TotalBalance)
	assert.Equal(t, int64(350_000), summary.TotalAllocated)
	assert.Equal(t, int64(650_000), summary.Available)
	assert.Equal(t, 2, summary.GoalsCount)
	assert.False(t, summary.IsOverAllocated)
	require.Len(t, summary.Goals, 2)
	assert.Equal(t, int64(250_000), summary.Goals[0].AllocatedAmount)

	_, err = svc.Summary(ctx, account.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary_OverAllocatedAfterBalanceDrops(t *testing.T) {
	ctx := context.Background()
	svc, account := setup(t, 1_000_000)
	_, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: account.OwnerID, AccountID: account.ID, Name: "g", TargetAmount: 1_000_000, AllocatedAmount: 900_000})
	require.NoError(t, err)

	// a transfer elsewhere drains the account below the allocation
	require.NoError(t, svc.Store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		return tx.UpdateBalance(ctx, account.ID, 500_000)
	}))

	summary, err := svc.Summary(ctx, account.ID, account.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(-400_000), summary.Available)
	assert.True(t, summary.IsOverAllocated)
}
