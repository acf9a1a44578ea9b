package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/usecase/account"
)

// Fixed UUIDs for demo users so repeated seeding is idempotent
var (
	DEMO_USER_AN    = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	DEMO_USER_BINH  = uuid.MustParse("00000000-0000-0000-0000-000000000102")
	DEMO_USER_SCAM  = uuid.MustParse("00000000-0000-0000-0000-000000000103")
	DemoScamAccount = "1000000003"
)

const (
	demoCreditCount  = 15
	demoCreditAmount = 5_000_000
	demoCreditMemo   = "Nhan tien scam demo"
)

// DemoUser describes one seeded user and their main account
type DemoUser struct {
	User          domain.User
	AccountNumber string
}

// UserRegistrar is the writable user directory the seeder needs
type UserRegistrar interface {
	domain.UserDirectory
	PutUser(ctx context.Context, user *domain.User) error
}

// Crediter posts administrative credits
type Crediter interface {
	CreditAccount(ctx context.Context, input account.CreditInput) (*domain.Account, *domain.Transaction, error)
}

// DemoSeeder creates demo users and accounts, then posts incoming credits
// to the demo account number so the fraud flow has history to look at
type DemoSeeder struct {
	users           UserRegistrar
	accounts        domain.AccountRepository
	crediter        Crediter
	startingBalance int64
	creditAccount   string
	logger          logrus.FieldLogger
}

// NewDemoSeeder creates a new DemoSeeder instance.
// creditAccount defaults to DemoScamAccount when empty.
func NewDemoSeeder(
	users UserRegistrar,
	accounts domain.AccountRepository,
	crediter Crediter,
	startingBalance int64,
	creditAccount string,
	logger logrus.FieldLogger,
) *DemoSeeder {
	if creditAccount == "" {
		creditAccount = DemoScamAccount
	}
	return &DemoSeeder{
		users:           users,
		accounts:        accounts,
		crediter:        crediter,
		startingBalance: startingBalance,
		creditAccount:   creditAccount,
		logger:          logger,
	}
}

// DemoUsers lists the seeded users
func DemoUsers() []DemoUser {
	return []DemoUser{
		{User: domain.User{ID: DEMO_USER_AN, Username: "an", FullName: "Nguyen Van An"}, AccountNumber: "1000000001"},
		{User: domain.User{ID: DEMO_USER_BINH, Username: "binh", FullName: "Tran Thi Binh"}, AccountNumber: "1000000002"},
		{User: domain.User{ID: DEMO_USER_SCAM, Username: "camkhonghat", FraudChecking: true}, AccountNumber: DemoScamAccount},
	}
}

// Seed ensures every demo user and account exists.
// Credits are only posted when the credit account is created by this run.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	for _, demo := range DemoUsers() {
		// Try to get the user by ID
		if _, err := s.users.GetUser(ctx, demo.User.ID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			user := demo.User
			if err := s.users.PutUser(ctx, &user); err != nil {
				return err
			}
		}

		created, err := s.ensureAccount(ctx, demo)
		if err != nil {
			return err
		}

		if created && demo.AccountNumber == s.creditAccount {
			if err := s.postCredits(ctx, demo.AccountNumber); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *DemoSeeder) ensureAccount(ctx context.Context, demo DemoUser) (bool, error) {
	_, err := s.accounts.GetByNumber(ctx, demo.AccountNumber)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	acc := &domain.Account{
		ID:            uuid.New(),
		OwnerID:       demo.User.ID,
		AccountNumber: demo.AccountNumber,
		AccountType:   domain.AccountTypeMain,
		Balance:       s.startingBalance,
		Currency:      domain.CurrencyVND,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Validate before creating
	if err := acc.Validate(); err != nil {
		return false, err
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return false, err
	}

	s.logger.WithField("account_number", acc.AccountNumber).Info("demo account seeded")
	return true, nil
}

func (s *DemoSeeder) postCredits(ctx context.Context, number string) error {
	for i := 0; i < demoCreditCount; i++ {
		if _, _, err := s.crediter.CreditAccount(ctx, account.CreditInput{
			AccountNumber: number,
			Amount:        demoCreditAmount,
			Description:   demoCreditMemo,
		}); err != nil {
			return err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"account_number": number,
		"count":          demoCreditCount,
	}).Info("demo credits posted")
	return nil
}
