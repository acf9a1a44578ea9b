package seeder

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vigipay/vigipay-backend/internal/adapter/repository/memory"
	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/usecase/account"
	"github.com/vigipay/vigipay-backend/internal/usecase/accountnumber"
)

// MockCrediter is a mock implementation of Crediter
type MockCrediter struct {
	mock.Mock
}

func (m *MockCrediter) CreditAccount(ctx context.Context, input account.CreditInput) (*domain.Account, *domain.Transaction, error) {
	args := m.Called(ctx, input)
	return nil, nil, args.Error(0)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDemoSeeder_SeedsUsersAccountsAndCredits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	svc := account.NewAccountService(accounts, store, store, accountnumber.NewAllocator(0, 0), 20_000_000, quietLogger())

	seeder := NewDemoSeeder(store, accounts, svc, 20_000_000, "", quietLogger())
	require.NoError(t, seeder.Seed(ctx))

	for _, demo := range DemoUsers() {
		u, err := store.GetUser(ctx, demo.User.ID)
		require.NoError(t, err)
		assert.Equal(t, demo.User.Username, u.Username)

		acc, err := accounts.GetByNumber(ctx, demo.AccountNumber)
		require.NoError(t, err)
		assert.Equal(t, demo.User.ID, acc.OwnerID)
	}

	scam, err := accounts.GetByNumber(ctx, DemoScamAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000_000+15*5_000_000), scam.Balance)

	txs, err := memory.NewTransactionRepository(store).ListByUser(ctx, DEMO_USER_SCAM)
	require.NoError(t, err)
	assert.Len(t, txs, 15)

	flagged, err := store.GetUser(ctx, DEMO_USER_SCAM)
	require.NoError(t, err)
	assert.True(t, flagged.FraudChecking)
}

func TestDemoSeeder_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	crediter := new(MockCrediter)
	crediter.On("CreditAccount", ctx, mock.Anything).Return(nil)

	seeder := NewDemoSeeder(store, accounts, crediter, 0, "", quietLogger())
	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	crediter.AssertNumberOfCalls(t, "CreditAccount", 15)
	all, err := accounts.ListAllByOwner(ctx, DEMO_USER_AN)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDemoSeeder_PropagatesCreditFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	crediter := new(MockCrediter)
	crediter.On("CreditAccount", ctx, mock.Anything).Return(errors.New("boom"))

	seeder := NewDemoSeeder(store, memory.NewAccountRepository(store), crediter, 0, "", quietLogger())
	err := seeder.Seed(ctx)

	assert.Error(t, err)
	_, lookupErr := store.GetUser(ctx, uuid.MustParse("00000000-0000-0000-0000-000000000103"))
	assert.NoError(t, lookupErr)
}
