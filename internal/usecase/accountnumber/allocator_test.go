package accountnumber

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// uniqueSet mimics a unique index
type uniqueSet struct {
	mu    sync.Mutex
	taken map[string]bool
}

func (s *uniqueSet) claim(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken[number] {
		return fmt.Errorf("insert account: %w", domain.ErrDuplicateAccountNumber)
	}
	s.taken[number] = true
	return nil
}

func TestGenerate_FixedLengthNumeric(t *testing.T) {
	a := NewAllocator(10, 100)

	for i := 0; i < 50; i++ {
		n := a.Generate()
		require.Len(t, n, 10)
		for _, r := range n {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, n)
		}
	}
}

func TestNewAllocator_Defaults(t *testing.T) {
	a := NewAllocator(0, 0)
	assert.Equal(t, domain.AccountNumberLength, a.Length)
	assert.Equal(t, DefaultMaxAttempts, a.MaxAttempts)
}

func TestAllocate_RetriesOnCollision(t *testing.T) {
	a := NewAllocator(4, 100)
	seq := []int{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2}
	i := 0
	a.digit = func() int {
		d := seq[i%len(seq)]
		i++
		return d
	}

	set := &uniqueSet{taken: map[string]bool{"1111": true}}
	number, err := a.Allocate(context.Background(), set.claim)

	require.NoError(t, err)
	assert.Equal(t, "2222", number)
}

func TestAllocate_Exhausted(t *testing.T) {
	a := NewAllocator(4, 100)
	a.digit = func() int { return 7 }

	attempts := 0
	set := &uniqueSet{taken: map[string]bool{"7777": true}}
	_, err := a.Allocate(context.Background(), func(ctx context.Context, n string) error {
		attempts++
		return set.claim(ctx, n)
	})

	assert.True(t, errors.Is(err, domain.ErrAllocationExhausted))
	assert.Equal(t, 100, attempts)
}

func TestAllocate_PropagatesOtherErrors(t *testing.T) {
	a := NewAllocator(10, 100)
	boom := errors.New("connection reset")

	_, err := a.Allocate(context.Background(), func(context.Context, string) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestAllocate_ConcurrentCallsNeverShareANumber(t *testing.T) {
	a := NewAllocator(3, 1000)
	set := &uniqueSet{taken: map[string]bool{}}

	const workers = 200
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := a.Allocate(context.Background(), set.claim)
			if err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for n := range results {
		assert.False(t, seen[n], "number %s handed out twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}
