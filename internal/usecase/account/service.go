package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/usecase/accountnumber"
)

// DefaultStartingBalance is credited to every new account in the demo profile
const DefaultStartingBalance int64 = 20_000_000

// CreditInput represents the input for an administrative credit
type CreditInput struct {
	AccountNumber string
	Amount        int64
	Description   string
}

// AccountService handles account lifecycle operations
type AccountService struct {
	AccountRepo     domain.AccountRepository
	Users           domain.UserDirectory
	Store           domain.LedgerStore
	Allocator       *accountnumber.Allocator
	StartingBalance int64
	Logger          logrus.FieldLogger
	Now             func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(
	accountRepo domain.AccountRepository,
	users domain.UserDirectory,
	store domain.LedgerStore,
	allocator *accountnumber.Allocator,
	startingBalance int64,
	logger logrus.FieldLogger,
) *AccountService {
	return &AccountService{
		AccountRepo:     accountRepo,
		Users:           users,
		Store:           store,
		Allocator:       allocator,
		StartingBalance: startingBalance,
		Logger:          logger,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount opens a new account for ownerID with a freshly allocated number.
// An empty accountType means main.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID, accountType string) (*domain.Account, error) {
	kind, err := domain.ParseAccountType(accountType)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	account := &domain.Account{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		AccountType: kind,
		Balance:     s.StartingBalance,
		Currency:    domain.CurrencyVND,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.Allocator.Allocate(ctx, func(ctx context.Context, number string) error {
		account.AccountNumber = number
		if err := account.Validate(); err != nil {
			return err
		}
		return s.AccountRepo.Create(ctx, account)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAllocationExhausted) {
			s.Logger.WithField("owner_id", ownerID).Error("account number space exhausted")
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"account_id":     account.ID,
		"owner_id":       ownerID,
		"account_number": account.AccountNumber,
		"account_type":   kind,
	}).Info("account created")

	return account, nil
}

// ListAccounts returns the owner's active accounts, oldest first
func (s *AccountService) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return s.AccountRepo.ListByOwner(ctx, ownerID)
}

// GetAccount returns one active account owned by ownerID
func (s *AccountService) GetAccount(ctx context.Context, accountID, ownerID uuid.UUID) (*domain.Account, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	if !account.OwnedBy(ownerID) {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrUnauthorized)
	}
	return account, nil
}

// LookupAccount resolves an active account number to its public holder view.
// It carries no balance and needs no authentication.
func (s *AccountService) LookupAccount(ctx context.Context, number string) (*domain.AccountHolder, error) {
	account, err := s.AccountRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, fmt.Errorf("account %s: %w", number, domain.ErrNotFound)
	}

	holder := &domain.AccountHolder{
		AccountNumber: account.AccountNumber,
		AccountType:   account.AccountType,
	}
	user, err := s.Users.GetUser(ctx, account.OwnerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.Logger.WithField("account_number", number).Warn("account owner missing from user directory")
	} else {
		holder.HolderName = user.DisplayName()
	}

	return holder, nil
}

// DeactivateAccount soft-deletes an account owned by ownerID
func (s *AccountService) DeactivateAccount(ctx context.Context, accountID, ownerID uuid.UUID) error {
	if _, err := s.GetAccount(ctx, accountID, ownerID); err != nil {
		return err
	}
	if err := s.AccountRepo.SetActive(ctx, accountID, false); err != nil {
		return err
	}

	s.Logger.WithField("account_id", accountID).Info("account deactivated")
	return nil
}

// CreditAccount raises a balance and appends an income entry in one unit of work.
// It is an administrative operation and performs no ownership check.
func (s *AccountService) CreditAccount(ctx context.Context, input CreditInput) (*domain.Account, *domain.Transaction, error) {
	if input.Amount <= 0 || input.Amount > domain.MaxAmount {
		return nil, nil, fmt.Errorf("%w: credit of %d VND", domain.ErrInvalidAmount, input.Amount)
	}
	description := input.Description
	if description == "" {
		description = "Incoming credit"
	}

	var credited *domain.Account
	var entry *domain.Transaction

	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		account, err := tx.LockAccountByNumber(ctx, input.AccountNumber)
		if err != nil {
			return err
		}
		if !account.Active {
			return fmt.Errorf("account %s: %w", input.AccountNumber, domain.ErrNotFound)
		}

		balance, err := domain.AddAmounts(account.Balance, input.Amount)
		if err != nil {
			return err
		}
		account.Balance = balance
		if err := tx.UpdateBalance(ctx, account.ID, account.Balance); err != nil {
			return err
		}

		accountID := account.ID
		entry = &domain.Transaction{
			ID:          uuid.New(),
			UserID:      account.OwnerID,
			AccountID:   &accountID,
			Kind:        domain.TransactionKindIncome,
			Amount:      input.Amount,
			Description: description,
			Date:        s.Now(),
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, entry); err != nil {
			return err
		}

		credited = account
		return nil
	})
	if err != nil {
		return nil, nil, domain.StorageFailure(err)
	}

	s.Logger.WithFields(logrus.Fields{
		"account_id": credited.ID,
		"amount":     input.Amount,
	}).Info("account credited")

	return credited, entry, nil
}
