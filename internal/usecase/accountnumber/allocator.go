package accountnumber

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// DefaultMaxAttempts bounds how many candidates Allocate tries before giving up
const DefaultMaxAttempts = 100

// ClaimFunc persists a candidate number. It must return an error wrapping
// domain.ErrDuplicateAccountNumber when the store's unique constraint rejects it.
type ClaimFunc func(ctx context.Context, number string) error

// Allocator hands out fixed-length numeric account numbers.
// Uniqueness is enforced by the store: a candidate is only returned once a claim on it succeeded.
type Allocator struct {
	Length      int
	MaxAttempts int
	digit       func() int
}

// NewAllocator creates an Allocator producing numbers of the given length
func NewAllocator(length, maxAttempts int) *Allocator {
	if length <= 0 {
		length = domain.AccountNumberLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{
		Length:      length,
		MaxAttempts: maxAttempts,
		digit:       func() int { return rand.Intn(10) },
	}
}

// Generate returns a random candidate without checking it
func (a *Allocator) Generate() string {
	var b strings.Builder
	b.Grow(a.Length)
	for i := 0; i < a.Length; i++ {
		b.WriteByte(byte('0' + a.digit()))
	}
	return b.String()
}

// Allocate generates candidates and passes each to claim until one is accepted.
// Returns domain.ErrAllocationExhausted after MaxAttempts collisions.
func (a *Allocator) Allocate(ctx context.Context, claim ClaimFunc) (string, error) {
	for attempt := 0; attempt < a.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		number := a.Generate()
		err := claim(ctx, number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: no unique number after %d attempts", domain.ErrAllocationExhausted, a.MaxAttempts)
}
