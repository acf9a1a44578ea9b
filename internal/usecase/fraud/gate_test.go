package fraud

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// MockScorer is a mock implementation of FraudScorer for testing
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, features domain.FraudFeatures) (*domain.FraudScore, error) {
	args := m.Called(ctx, features)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FraudScore), args.Error(1)
}

// MockAccountRepository implements only the lookups the gate uses
type MockAccountRepository struct {
	mock.Mock
	domain.AccountRepository
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockUserDirectory is a mock implementation of UserDirectory for testing
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSender() *domain.Account {
	return &domain.Account{ID: uuid.New(), OwnerID: uuid.New(), AccountNumber: "1000000001", Balance: 1_000_000, Active: true}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyIgnore, p)

	p, err = ParsePolicy("block")
	require.NoError(t, err)
	assert.Equal(t, PolicyBlock, p)

	_, err = ParsePolicy("panic")
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
}

func TestPolicy_Stricter(t *testing.T) {
	tests := []struct {
		base, requested Policy
		want            Policy
	}{
		{base: PolicyBlock, requested: PolicyIgnore, want: PolicyBlock},
		{base: PolicyBlock, requested: PolicyWarn, want: PolicyBlock},
		{base: PolicyWarn, requested: PolicyIgnore, want: PolicyWarn},
		{base: PolicyWarn, requested: PolicyBlock, want: PolicyBlock},
		{base: PolicyIgnore, requested: PolicyWarn, want: PolicyWarn},
		{base: "", requested: PolicyIgnore, want: PolicyIgnore},
	}

	for _, tt := range tests {
		t.Run(string(tt.base)+"+"+string(tt.requested), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.base.Stricter(tt.requested))
		})
	}
}

func TestParseFailMode_NoDefault(t *testing.T) {
	_, err := ParseFailMode("")
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)

	m, err := ParseFailMode("closed")
	require.NoError(t, err)
	assert.Equal(t, FailClosed, m)
}

func TestAssess_FlaggedReceiverFeedsFeatures(t *testing.T) {
	ctx := context.Background()
	scorer := new(MockScorer)
	accounts := new(MockAccountRepository)
	users := new(MockUserDirectory)
	sender := newSender()
	receiverOwner := uuid.New()

	accounts.On("GetByNumber", ctx, "2000000002").Return(&domain.Account{OwnerID: receiverOwner}, nil)
	users.On("GetUser", ctx, receiverOwner).Return(&domain.User{ID: receiverOwner, FraudChecking: true}, nil)
	scorer.On("Score", mock.Anything, mock.MatchedBy(func(f domain.FraudFeatures) bool {
		return f.IsFlaggedFraud == 1 && f.Amount == 200_000 && f.NewBalanceOrig == 800_000 && f.Type == domain.FraudTxTransfer
	})).Return(&domain.FraudScore{IsFraud: true, Probability: 0.91}, nil)

	gate := NewGate(scorer, accounts, users, time.Second, FailClosed, quietLogger())
	v, err := gate.Assess(ctx, sender, 200_000, "2000000002")

	require.NoError(t, err)
	assert.False(t, v.IsSafe)
	assert.True(t, v.ReceiverFlagged)
	assert.Equal(t, "Transaction may be fraudulent (confidence: 91.00%) (destination account flagged for fraud checking)", v.Message)
	scorer.AssertExpectations(t)
}

func TestAssess_UnknownReceiverIsNotFlagged(t *testing.T) {
	ctx := context.Background()
	scorer := new(MockScorer)
	accounts := new(MockAccountRepository)
	accounts.On("GetByNumber", ctx, "9").Return(nil, domain.ErrNotFound)
	scorer.On("Score", mock.Anything, mock.MatchedBy(func(f domain.FraudFeatures) bool {
		return f.IsFlaggedFraud == 0
	})).Return(&domain.FraudScore{IsFraud: false, Probability: 0.02}, nil)

	gate := NewGate(scorer, accounts, new(MockUserDirectory), time.Second, FailOpen, quietLogger())
	v, err := gate.Assess(ctx, newSender(), 1000, "9")

	require.NoError(t, err)
	assert.True(t, v.IsSafe)
	assert.Equal(t, "Transaction is safe (confidence: 2.00%)", v.Message)
}

func TestAssess_TimeoutMapsToExternalServiceTimeout(t *testing.T) {
	scorer := new(MockScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	gate := NewGate(scorer, nil, nil, 10*time.Millisecond, FailClosed, quietLogger())
	_, err := gate.Assess(context.Background(), newSender(), 1000, "")

	assert.ErrorIs(t, err, domain.ErrExternalServiceTimeout)
}

func TestCheck_Policies(t *testing.T) {
	unsafe := &domain.FraudScore{IsFraud: true, Probability: 0.8}
	safe := &domain.FraudScore{IsFraud: false, Probability: 0.1}
	down := errors.New("connection refused")

	tests := []struct {
		name        string
		policy      Policy
		failMode    FailMode
		score       *domain.FraudScore
		scoreErr    error
		wantCalled  bool
		wantWarning bool
		wantErr     error
	}{
		{name: "ignore never calls the scorer", policy: PolicyIgnore, failMode: FailClosed, wantCalled: false},
		{name: "warn on unsafe verdict", policy: PolicyWarn, failMode: FailClosed, score: unsafe, wantCalled: true, wantWarning: true},
		{name: "warn on safe verdict", policy: PolicyWarn, failMode: FailClosed, score: safe, wantCalled: true},
		{name: "block on unsafe verdict", policy: PolicyBlock, failMode: FailOpen, score: unsafe, wantCalled: true, wantErr: domain.ErrFraudBlocked},
		{name: "block passes safe verdict", policy: PolicyBlock, failMode: FailOpen, score: safe, wantCalled: true},
		{name: "block fail open on scorer error", policy: PolicyBlock, failMode: FailOpen, scoreErr: down, wantCalled: true},
		{name: "block fail closed on scorer error", policy: PolicyBlock, failMode: FailClosed, scoreErr: down, wantCalled: true, wantErr: domain.ErrFraudBlocked},
		{name: "warn fail closed on scorer error", policy: PolicyWarn, failMode: FailClosed, scoreErr: down, wantCalled: true, wantWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := new(MockScorer)
			if tt.score != nil {
				scorer.On("Score", mock.Anything, mock.Anything).Return(tt.score, nil)
			} else {
				scorer.On("Score", mock.Anything, mock.Anything).Return(nil, tt.scoreErr)
			}

			gate := NewGate(scorer, nil, nil, time.Second, tt.failMode, quietLogger())
			warning, err := gate.Check(context.Background(), tt.policy, newSender(), 1000, "2")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantWarning, warning != "")
			if tt.wantCalled {
				scorer.AssertNumberOfCalls(t, "Score", 1)
			} else {
				scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCheck_FailClosedKeepsScorerCause(t *testing.T) {
	down := errors.New("connection refused")
	scorer := new(MockScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Return(nil, down)

	gate := NewGate(scorer, nil, nil, time.Second, FailClosed, quietLogger())
	_, err := gate.Check(context.Background(), PolicyBlock, newSender(), 1000, "")

	assert.ErrorIs(t, err, domain.ErrFraudBlocked)
	assert.ErrorIs(t, err, down)
}
