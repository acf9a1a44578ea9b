package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the requester does not own the resource
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the account or transfer does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount indicates a non-positive or otherwise unusable amount
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPolicy indicates an unknown fee payer or fraud policy
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrSelfTransfer indicates sender and receiver are the same account
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrInsufficientFunds indicates the sender balance does not cover the debit
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAllocationExhausted indicates no free account number was found within the attempt bound
	ErrAllocationExhausted = errors.New("account number allocation exhausted")
	// ErrStorageFailure indicates the ledger store failed and the unit of work was rolled back
	ErrStorageFailure = errors.New("storage failure")
	// ErrExternalServiceTimeout indicates a collaborator did not answer in time
	ErrExternalServiceTimeout = errors.New("external service timeout")
	// ErrFraudBlocked indicates the fraud gate rejected the transfer
	ErrFraudBlocked = errors.New("transfer blocked by fraud check")
	// ErrInvalidAccountType indicates an unknown account classification
	ErrInvalidAccountType = errors.New("account type must be main, savings, or investment")
	// ErrDuplicateAccountNumber is returned by stores when the unique constraint rejects a number
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	// ErrOverAllocated indicates savings goals would exceed the account balance
	ErrOverAllocated = errors.New("allocation exceeds available balance")
	// ErrInvalidGoal indicates a savings goal failed validation
	ErrInvalidGoal = errors.New("invalid savings goal")
)

// InsufficientFundsError carries the amounts behind an ErrInsufficientFunds rejection
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %d VND, available %d VND", e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

var domainErrors = []error{
	ErrUnauthorized, ErrNotFound, ErrInvalidAmount, ErrInvalidPolicy, ErrSelfTransfer,
	ErrInsufficientFunds, ErrAllocationExhausted, ErrStorageFailure, ErrExternalServiceTimeout,
	ErrFraudBlocked, ErrInvalidAccountType, ErrDuplicateAccountNumber, ErrOverAllocated, ErrInvalidGoal,
}

// IsDomainError reports whether err wraps one of the sentinels above
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageFailure passes domain errors through and wraps anything else in ErrStorageFailure
func StorageFailure(err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
