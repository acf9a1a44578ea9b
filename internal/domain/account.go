package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountType represents the classification of a bank account
type AccountType string

const (
	AccountTypeMain       AccountType = "main"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
)

// CurrencyVND is the only currency the ledger holds. Balances carry no fractional units.
const CurrencyVND = "VND"

// AccountNumberLength is the default length of generated account numbers
const AccountNumberLength = 10

// ParseAccountType validates a raw account type, defaulting to main when empty
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(raw) {
	case "":
		return AccountTypeMain, nil
	case AccountTypeMain, AccountTypeSavings, AccountTypeInvestment:
		return AccountType(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, raw)
	}
}

// Account represents a bank account in the domain layer
type Account struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	AccountNumber string
	AccountType   AccountType
	Balance       int64 // whole VND, never negative after a committed operation
	Currency      string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.AccountNumber == "" {
		return errors.New("account number cannot be empty")
	}
	for _, r := range a.AccountNumber {
		if r < '0' || r > '9' {
			return errors.New("account number must be numeric")
		}
	}
	if _, err := ParseAccountType(string(a.AccountType)); err != nil {
		return err
	}
	if a.Balance < 0 {
		return errors.New("account balance cannot be negative")
	}
	return nil
}

// OwnedBy reports whether the account belongs to the given user
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// AccountHolder is the public view of an account returned by number lookups.
// It never carries balance data.
type AccountHolder struct {
	AccountNumber string
	HolderName    string
	AccountType   AccountType
}

// User is the slice of the user record the ledger needs: a display name and the fraud flag
type User struct {
	ID            uuid.UUID
	Username      string
	FullName      string
	FraudChecking bool
}

// DisplayName returns the full name, falling back to the username
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
