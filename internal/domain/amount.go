package domain

import "fmt"

// MaxAmount is the largest amount or balance the ledger accepts, in whole VND
const MaxAmount int64 = 1_000_000_000_000_000

// AddAmounts returns a + b, rejecting negative operands and sums above MaxAmount
func AddAmounts(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand", ErrInvalidAmount)
	}
	if a > MaxAmount-b {
		return 0, fmt.Errorf("%w: %d + %d exceeds the ledger maximum of %d VND", ErrInvalidAmount, a, b, MaxAmount)
	}
	return a + b, nil
}
