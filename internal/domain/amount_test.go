package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAmounts(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int64
		want    int64
		wantErr bool
	}{
		{name: "Plain sum", a: 200000, b: 1100, want: 201100},
		{name: "Sum at the ledger maximum", a: MaxAmount - 1, b: 1, want: MaxAmount},
		{name: "Sum above the ledger maximum", a: MaxAmount, b: 1, wantErr: true},
		{name: "Operands that would wrap int64", a: math.MaxInt64, b: math.MaxInt64, wantErr: true},
		{name: "Negative operand", a: -1, b: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddAmounts(tt.a, tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
