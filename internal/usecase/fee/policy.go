package fee

import (
	"errors"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Policy maps a transfer amount to the fee charged for it.
// Implementations must be pure: same amount, same fee, no side effects.
type Policy interface {
	ComputeFee(amount int64) int64
}

// Func adapts an ordinary function to a Policy
type Func func(amount int64) int64

// ComputeFee calls f(amount)
func (f Func) ComputeFee(amount int64) int64 {
	return f(amount)
}

// Zero charges nothing regardless of amount
var Zero Policy = Func(func(int64) int64 { return 0 })

// Tier is one bracket of a tiered schedule.
// Fee = Flat + Percent% of the amount, for amounts >= MinAmount.
type Tier struct {
	MinAmount int64
	Flat      int64
	Percent   decimal.Decimal
}

// Tiered selects the highest bracket whose MinAmount does not exceed the amount
type Tiered struct {
	tiers []Tier
}

// NewTiered validates and sorts the brackets.
// Amounts below the lowest MinAmount pay nothing.
func NewTiered(tiers []Tier) (*Tiered, error) {
	if len(tiers) == 0 {
		return nil, errors.New("fee schedule must have at least one tier")
	}

	// Create a copy of tiers to avoid mutating the caller's slice
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinAmount < sorted[j].MinAmount
	})

	hundred := decimal.NewFromInt(100)
	for i, tier := range sorted {
		if tier.MinAmount < 0 {
			return nil, errors.New("fee tier minimum amount cannot be negative")
		}
		if tier.Flat < 0 {
			return nil, errors.New("fee tier flat fee cannot be negative")
		}
		if tier.Percent.IsNegative() || tier.Percent.GreaterThan(hundred) {
			return nil, errors.New("fee tier percent must be between 0 and 100")
		}
		if i > 0 && tier.MinAmount == sorted[i-1].MinAmount {
			return nil, errors.New("fee tiers must have distinct minimum amounts")
		}
	}

	return &Tiered{tiers: sorted}, nil
}

// ComputeFee implements Policy. Percentages round half away from zero to whole VND.
// A fee that does not fit in int64 saturates at math.MaxInt64.
func (t *Tiered) ComputeFee(amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	idx := sort.Search(len(t.tiers), func(i int) bool {
		return t.tiers[i].MinAmount > amount
	}) - 1
	if idx < 0 {
		return 0
	}

	tier := t.tiers[idx]
	variable := decimal.NewFromInt(amount).
		Mul(tier.Percent).
		Div(decimal.NewFromInt(100)).
		Round(0)

	charge := variable.IntPart()
	if charge > math.MaxInt64-tier.Flat {
		return math.MaxInt64
	}
	return tier.Flat + charge
}
