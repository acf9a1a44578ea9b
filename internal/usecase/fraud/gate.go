package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

// Policy selects what the transfer engine does with the gate's verdict
type Policy string

const (
	// PolicyIgnore skips the gate entirely
	PolicyIgnore Policy = "ignore"
	// PolicyWarn lets the transfer through and returns the verdict as a warning
	PolicyWarn Policy = "warn"
	// PolicyBlock rejects the transfer with domain.ErrFraudBlocked when the verdict is unsafe
	PolicyBlock Policy = "block"
)

// ParsePolicy validates a raw policy, defaulting to ignore when empty
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "":
		return PolicyIgnore, nil
	case PolicyIgnore, PolicyWarn, PolicyBlock:
		return Policy(raw), nil
	default:
		return "", fmt.Errorf("%w: fraud policy must be ignore, warn, or block, got %q", domain.ErrInvalidPolicy, raw)
	}
}

func (p Policy) rank() int {
	switch p {
	case PolicyWarn:
		return 1
	case PolicyBlock:
		return 2
	default:
		return 0
	}
}

// Stricter returns whichever of p and other rejects more transfers.
// Order: ignore < warn < block.
func (p Policy) Stricter(other Policy) Policy {
	if other.rank() > p.rank() {
		return other
	}
	if p == "" {
		return PolicyIgnore
	}
	return p
}

// FailMode decides how a scorer error or timeout is read
type FailMode string

const (
	// FailOpen treats an unavailable scorer as a safe verdict
	FailOpen FailMode = "open"
	// FailClosed treats an unavailable scorer as an unsafe verdict
	FailClosed FailMode = "closed"
)

// ParseFailMode validates a raw fail mode. There is no default.
func ParseFailMode(raw string) (FailMode, error) {
	switch FailMode(raw) {
	case FailOpen, FailClosed:
		return FailMode(raw), nil
	default:
		return "", fmt.Errorf("%w: fraud fail mode must be open or closed, got %q", domain.ErrInvalidPolicy, raw)
	}
}

// DefaultTimeout bounds a single scorer call
const DefaultTimeout = 3 * time.Second

// Verdict is the gate's answer for one prospective transfer
type Verdict struct {
	IsSafe          bool
	Probability     float64
	Message         string
	ReceiverFlagged bool
}

// Gate consults the external fraud scorer before money moves
type Gate struct {
	Scorer   domain.FraudScorer
	Accounts domain.AccountRepository
	Users    domain.UserDirectory
	Timeout  time.Duration
	FailMode FailMode
	Logger   logrus.FieldLogger
}

// NewGate creates a new Gate
func NewGate(
	scorer domain.FraudScorer,
	accounts domain.AccountRepository,
	users domain.UserDirectory,
	timeout time.Duration,
	failMode FailMode,
	logger logrus.FieldLogger,
) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{
		Scorer:   scorer,
		Accounts: accounts,
		Users:    users,
		Timeout:  timeout,
		FailMode: failMode,
		Logger:   logger,
	}
}

// Assess scores a transfer of amount from sender to receiverNumber.
// Scorer failures are returned as errors; a timeout wraps domain.ErrExternalServiceTimeout.
func (g *Gate) Assess(ctx context.Context, sender *domain.Account, amount int64, receiverNumber string) (*Verdict, error) {
	flagged := g.receiverFlagged(ctx, receiverNumber)
	features := domain.NewTransferFeatures(sender, amount, flagged)

	scoreCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	score, err := g.Scorer.Score(scoreCtx, features)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(scoreCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: fraud scorer did not answer within %s", domain.ErrExternalServiceTimeout, g.Timeout)
		}
		return nil, fmt.Errorf("fraud scorer: %w", err)
	}

	v := &Verdict{
		IsSafe:          !score.IsFraud,
		Probability:     score.Probability,
		ReceiverFlagged: flagged,
	}
	v.Message = verdictMessage(v)
	return v, nil
}

// Check applies policy to the verdict for a transfer.
// It returns a warning for PolicyWarn, domain.ErrFraudBlocked for PolicyBlock on an unsafe verdict,
// and nothing for PolicyIgnore without calling the scorer.
func (g *Gate) Check(ctx context.Context, policy Policy, sender *domain.Account, amount int64, receiverNumber string) (string, error) {
	if policy == PolicyIgnore || policy == "" {
		return "", nil
	}

	log := g.Logger.WithFields(logrus.Fields{
		"sender_account_id": sender.ID,
		"amount":            amount,
		"fraud_policy":      policy,
	})

	verdict, err := g.Assess(ctx, sender, amount, receiverNumber)
	if err != nil {
		if g.FailMode == FailOpen {
			log.WithError(err).Warn("fraud check unavailable, failing open")
			return "", nil
		}

		log.WithError(err).Warn("fraud check unavailable, failing closed")
		if policy == PolicyBlock {
			return "", fmt.Errorf("%w: %w", domain.ErrFraudBlocked, err)
		}
		return "Fraud check unavailable; treat this transfer with caution", nil
	}

	if verdict.IsSafe {
		return "", nil
	}

	log.WithField("probability", verdict.Probability).Warn("fraud check flagged transfer")
	if policy == PolicyBlock {
		return "", fmt.Errorf("%w: %s", domain.ErrFraudBlocked, verdict.Message)
	}
	return verdict.Message, nil
}

// receiverFlagged reports the fraud flag of the user owning receiverNumber.
// Unknown receivers and directory errors count as not flagged.
func (g *Gate) receiverFlagged(ctx context.Context, receiverNumber string) bool {
	if receiverNumber == "" || g.Accounts == nil || g.Users == nil {
		return false
	}

	receiver, err := g.Accounts.GetByNumber(ctx, receiverNumber)
	if err != nil {
		return false
	}

	user, err := g.Users.GetUser(ctx, receiver.OwnerID)
	if err != nil {
		g.Logger.WithError(err).WithField("receiver_account_number", receiverNumber).Debug("receiver user lookup failed")
		return false
	}
	return user.FraudChecking
}

func verdictMessage(v *Verdict) string {
	status := "is safe"
	if !v.IsSafe {
		status = "may be fraudulent"
	}
	msg := fmt.Sprintf("Transaction %s (confidence: %.2f%%)", status, v.Probability*100)
	if v.ReceiverFlagged {
		msg += " (destination account flagged for fraud checking)"
	}
	return msg
}
