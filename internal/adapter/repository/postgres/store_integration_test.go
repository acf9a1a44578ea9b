//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

var testDB *DB

// TestMain connects to the database named by VIGIPAY_TEST_DATABASE_DSN and applies the schema
func TestMain(m *testing.M) {
	dsn := os.Getenv("VIGIPAY_TEST_DATABASE_DSN")
	if dsn == "" {
		fmt.Println("VIGIPAY_TEST_DATABASE_DSN not set, skipping postgres integration tests")
		os.Exit(0)
	}

	var err error
	testDB, err = NewDB(dsn, PoolOptions{MaxOpenConns: 10})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := testDB.Migrate(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to migrate: %v", err))
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func createTestAccount(t *testing.T, balance int64) *domain.Account {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	a := &domain.Account{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: fmt.Sprintf("%010d", time.Now().UnixNano()%10_000_000_000),
		AccountType:   domain.AccountTypeMain,
		Balance:       balance,
		Currency:      domain.CurrencyVND,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, NewAccountRepository(testDB).Create(context.Background(), a))
	return a
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testDB)
	a := createTestAccount(t, 20_000_000)

	got, err := repo.GetByNumber(ctx, a.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, int64(20_000_000), got.Balance)

	dup := *a
	dup.ID = uuid.New()
	err = repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountNumber)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB)
	a := createTestAccount(t, 1000)

	err := store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		if err := tx.UpdateBalance(ctx, a.ID, 0); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := NewAccountRepository(testDB).GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance)
}

func TestStore_ConcurrentDebitsSerialise(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB)
	a := createTestAccount(t, 100_000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
				locked, err := tx.LockAccounts(ctx, a.ID)
				if err != nil {
					return err
				}
				if locked[a.ID].Balance < 60_000 {
					return domain.ErrInsufficientFunds
				}
				return tx.UpdateBalance(ctx, a.ID, locked[a.ID].Balance-60_000)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	got, err := NewAccountRepository(testDB).GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), got.Balance)
}

func TestTransferRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB)
	a := createTestAccount(t, 1000)
	transferID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	err := store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		if err := tx.InsertTransfer(ctx, &domain.Transfer{
			ID:                    transferID,
			SenderAccountID:       a.ID,
			ReceiverAccountNumber: "9999999999",
			ReceiverBank:          "OTHER",
			ReceiverName:          "Tran Thi B",
			Amount:                500,
			Fee:                   10,
			FeePayer:              domain.FeePayerSender,
			Status:                domain.TransferStatusCompleted,
			Date:                  now,
		}); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, &domain.Transaction{
			ID:          uuid.New(),
			UserID:      a.OwnerID,
			AccountID:   &a.ID,
			TransferID:  &transferID,
			Kind:        domain.TransactionKindExpense,
			Amount:      510,
			Description: "Transfer to Tran Thi B",
			Date:        now,
		})
	})
	require.NoError(t, err)

	got, err := NewTransferRepository(testDB).GetByID(ctx, transferID)
	require.NoError(t, err)
	assert.Equal(t, int64(510), got.TotalDebit())

	recipients, err := NewTransferRepository(testDB).RecentRecipients(ctx, []uuid.UUID{a.ID}, 5)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "Tran Thi B", recipients[0].Name)

	entries, err := NewTransactionRepository(testDB).ListByTransfer(ctx, transferID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].AccountID)
	assert.Equal(t, a.ID, *entries[0].AccountID)
}

func TestStore_LockGoal(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB)
	a := createTestAccount(t, 1_000_000)
	now := time.Now().UTC().Truncate(time.Microsecond)
	goal := &domain.SavingsGoal{
		ID: uuid.New(), UserID: a.OwnerID, AccountID: a.ID, Name: "trip",
		TargetAmount: 500_000, Color: domain.DefaultGoalColor, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		return tx.SaveGoal(ctx, goal)
	}))

	err := store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		locked, err := tx.LockGoal(ctx, goal.ID)
		if err != nil {
			return err
		}
		locked.Active = false
		return tx.SaveGoal(ctx, locked)
	})
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		locked, err := tx.LockGoal(ctx, goal.ID)
		require.NoError(t, err)
		assert.False(t, locked.Active)

		_, err = tx.LockGoal(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestSchema_AccountDeleteNullsTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB)
	a := createTestAccount(t, 1000)
	entryID := uuid.New()

	require.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		return tx.InsertTransaction(ctx, &domain.Transaction{
			ID:          entryID,
			UserID:      a.OwnerID,
			AccountID:   &a.ID,
			Kind:        domain.TransactionKindIncome,
			Amount:      1000,
			Description: "Incoming credit",
			Date:        time.Now().UTC(),
		})
	}))

	_, err := testDB.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, a.ID)
	require.NoError(t, err)

	var accountID uuid.NullUUID
	require.NoError(t, testDB.QueryRowContext(ctx, `SELECT account_id FROM transactions WHERE id = $1`, entryID).Scan(&accountID))
	assert.False(t, accountID.Valid)
}
