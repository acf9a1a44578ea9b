package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/usecase/fee"
	"github.com/vigipay/vigipay-backend/internal/usecase/fraud"
)

const (
	// DefaultInternalBankCode is recorded as the receiver bank of internal transfers
	DefaultInternalBankCode = "vigipay"
	// DefaultListLimit applies when ListTransfers is called without a limit
	DefaultListLimit = 50
	// MaxListLimit caps a single ListTransfers page
	MaxListLimit = 100
	// DefaultRecipientsLimit applies when RecentRecipients is called without a limit
	DefaultRecipientsLimit = 5
)

// FraudGate is the part of the fraud gate the engine consumes
type FraudGate interface {
	Check(ctx context.Context, policy fraud.Policy, sender *domain.Account, amount int64, receiverNumber string) (string, error)
	Assess(ctx context.Context, sender *domain.Account, amount int64, receiverNumber string) (*fraud.Verdict, error)
}

// ExecuteTransferInput represents the input for executing a transfer
type ExecuteTransferInput struct {
	SenderAccountID       uuid.UUID
	ReceiverAccountNumber string
	// ReceiverBank and ReceiverName describe an external receiver; ignored for internal transfers
	ReceiverBank    string
	ReceiverName    string
	Amount          int64
	Description     string
	FeePayer        string
	RequestingUser  uuid.UUID
	FraudPolicy     string
	RequireInternal bool
}

// TransferResult is the confirmation returned for a committed transfer
type TransferResult struct {
	Transfer              *domain.Transfer
	Mode                  domain.TransferMode
	SenderTransactionID   uuid.UUID
	ReceiverTransactionID *uuid.UUID
	AmountSent            int64
	AmountReceived        int64
	Fee                   int64
	SenderBalance         int64
	ReceiverBalance       *int64
	ReceiverName          string
	FraudWarning          string
}

// ListTransfersInput represents the input for listing transfers
type ListTransfersInput struct {
	OwnerID   uuid.UUID
	AccountID *uuid.UUID
	Limit     int
	Offset    int
}

// TransferService moves money between accounts and reads transfer history
type TransferService struct {
	AccountRepo        domain.AccountRepository
	TransferRepo       domain.TransferRepository
	TransactionRepo    domain.TransactionRepository
	Users              domain.UserDirectory
	Store              domain.LedgerStore
	FeePolicy          fee.Policy
	Fraud              FraudGate
	DefaultFraudPolicy fraud.Policy
	Events             domain.EventPublisher
	InternalBankCode   string
	Logger             logrus.FieldLogger
	Now                func() time.Time
}

// NewTransferService creates a new TransferService instance.
// A nil fee policy charges nothing. With a nil gate, warn and block policies fail as unavailable.
func NewTransferService(
	accountRepo domain.AccountRepository,
	transferRepo domain.TransferRepository,
	transactionRepo domain.TransactionRepository,
	users domain.UserDirectory,
	store domain.LedgerStore,
	feePolicy fee.Policy,
	gate FraudGate,
	defaultFraudPolicy fraud.Policy,
	events domain.EventPublisher,
	logger logrus.FieldLogger,
) *TransferService {
	if feePolicy == nil {
		feePolicy = fee.Zero
	}
	if defaultFraudPolicy == "" {
		defaultFraudPolicy = fraud.PolicyIgnore
	}
	return &TransferService{
		AccountRepo:        accountRepo,
		TransferRepo:       transferRepo,
		TransactionRepo:    transactionRepo,
		Users:              users,
		Store:              store,
		FeePolicy:          feePolicy,
		Fraud:              gate,
		DefaultFraudPolicy: defaultFraudPolicy,
		Events:             events,
		InternalBankCode:   DefaultInternalBankCode,
		Logger:             logger,
		Now:                func() time.Time { return time.Now().UTC() },
	}
}

// ExecuteTransfer validates, fee-prices, fraud-checks and atomically records a transfer.
// Logic:
//  1. Sender must exist, belong to the requester and be active
//  2. Amount must be positive, within MaxAmount, and the fee payer known
//  3. Receiver must differ from the sender
//  4. Fee is computed once; amount + fee must stay within MaxAmount and the sender must cover it
//  5. Receiver resolves to an active internal account (dual entry) or stays external (single entry)
//  6. Fraud gate runs under the stricter of the default and requested policy
//  7. Both rows are locked, re-checked, mutated and recorded in one unit of work
//
// Every rejection before step 7 leaves the ledger untouched. Once step 7 starts it is not cancellable.
func (s *TransferService) ExecuteTransfer(ctx context.Context, input ExecuteTransferInput) (*TransferResult, error) {
	log := s.Logger.WithFields(logrus.Fields{
		"sender_account_id":       input.SenderAccountID,
		"receiver_account_number": input.ReceiverAccountNumber,
		"amount":                  input.Amount,
	})

	// 1. Sender
	sender, err := s.senderAccount(ctx, input.SenderAccountID, input.RequestingUser)
	if err != nil {
		return nil, err
	}

	// 2. Amount and fee payer
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidAmount, input.Amount)
	}
	if input.Amount > domain.MaxAmount {
		return nil, fmt.Errorf("%w: amount %d exceeds the ledger maximum of %d VND", domain.ErrInvalidAmount, input.Amount, domain.MaxAmount)
	}
	feePayer, err := domain.ParseFeePayer(input.FeePayer)
	if err != nil {
		return nil, err
	}

	// 3. Self-transfer
	if input.ReceiverAccountNumber == "" {
		return nil, fmt.Errorf("receiver account number is required: %w", domain.ErrNotFound)
	}
	if input.ReceiverAccountNumber == sender.AccountNumber {
		return nil, domain.ErrSelfTransfer
	}

	// 4. Fee, frozen for the rest of the operation
	feeAmount := s.FeePolicy.ComputeFee(input.Amount)
	if feeAmount < 0 {
		return nil, fmt.Errorf("%w: fee policy returned negative fee %d", domain.ErrInvalidPolicy, feeAmount)
	}
	if _, err := domain.AddAmounts(input.Amount, feeAmount); err != nil {
		return nil, err
	}
	priced := &domain.Transfer{Amount: input.Amount, Fee: feeAmount, FeePayer: feePayer}
	totalDebit := priced.TotalDebit()
	credited := priced.CreditedAmount()
	if credited <= 0 {
		return nil, fmt.Errorf("%w: amount %d does not cover fee %d", domain.ErrInvalidAmount, input.Amount, feeAmount)
	}
	if sender.Balance < totalDebit {
		log.WithField("balance", sender.Balance).Warn("transfer rejected: insufficient funds")
		return nil, &domain.InsufficientFundsError{Required: totalDebit, Available: sender.Balance}
	}

	// 5. Receiver resolution
	receiver, err := s.resolveReceiver(ctx, input.ReceiverAccountNumber)
	if err != nil {
		return nil, err
	}
	if receiver == nil && input.RequireInternal {
		return nil, fmt.Errorf("receiver account %s: %w", input.ReceiverAccountNumber, domain.ErrNotFound)
	}
	if receiver != nil && receiver.ID == sender.ID {
		return nil, domain.ErrSelfTransfer
	}

	mode := domain.TransferModeExternal
	receiverBank := input.ReceiverBank
	receiverName := input.ReceiverName
	if receiver != nil {
		mode = domain.TransferModeInternal
		receiverBank = s.InternalBankCode
		receiverName = s.displayName(ctx, receiver.OwnerID, receiver.AccountNumber)
	}

	// 6. Fraud gate
	warning, err := s.checkFraud(ctx, input.FraudPolicy, sender, input.Amount, input.ReceiverAccountNumber)
	if err != nil {
		log.WithError(err).Warn("transfer rejected by fraud gate")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 7. Mutation
	now := s.Now()
	transfer := &domain.Transfer{
		ID:                    uuid.New(),
		SenderAccountID:       sender.ID,
		ReceiverAccountNumber: input.ReceiverAccountNumber,
		ReceiverBank:          receiverBank,
		ReceiverName:          receiverName,
		Amount:                input.Amount,
		Fee:                   feeAmount,
		FeePayer:              feePayer,
		Description:           s.description(input.Description, mode),
		Status:                domain.TransferStatusCompleted,
		Date:                  now,
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	result := &TransferResult{
		Transfer:       transfer,
		Mode:           mode,
		AmountSent:     totalDebit,
		AmountReceived: credited,
		Fee:            feeAmount,
		ReceiverName:   receiverName,
		FraudWarning:   warning,
	}
	senderName := s.displayName(ctx, sender.OwnerID, sender.AccountNumber)

	err = s.Store.RunInTx(context.WithoutCancel(ctx), func(ctx context.Context, tx domain.LedgerTx) error {
		ids := []uuid.UUID{sender.ID}
		if receiver != nil {
			ids = append(ids, receiver.ID)
		}
		locked, err := tx.LockAccounts(ctx, ids...)
		if err != nil {
			return err
		}

		lockedSender, ok := locked[sender.ID]
		if !ok || !lockedSender.Active {
			return fmt.Errorf("sender account %s: %w", sender.ID, domain.ErrNotFound)
		}
		if !lockedSender.OwnedBy(input.RequestingUser) {
			return domain.ErrUnauthorized
		}
		if lockedSender.Balance < totalDebit {
			return &domain.InsufficientFundsError{Required: totalDebit, Available: lockedSender.Balance}
		}

		result.SenderBalance = lockedSender.Balance - totalDebit
		if err := tx.UpdateBalance(ctx, sender.ID, result.SenderBalance); err != nil {
			return err
		}

		var lockedReceiver *domain.Account
		if receiver != nil {
			lockedReceiver, ok = locked[receiver.ID]
			if !ok || !lockedReceiver.Active {
				return fmt.Errorf("receiver account %s: %w", receiver.AccountNumber, domain.ErrNotFound)
			}
			balance, err := domain.AddAmounts(lockedReceiver.Balance, credited)
			if err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, receiver.ID, balance); err != nil {
				return err
			}
			result.ReceiverBalance = &balance
		}

		if err := tx.InsertTransfer(ctx, transfer); err != nil {
			return err
		}

		senderAccountID, transferID := lockedSender.ID, transfer.ID
		senderEntry := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      lockedSender.OwnerID,
			AccountID:   &senderAccountID,
			TransferID:  &transferID,
			Kind:        domain.TransactionKindExpense,
			Amount:      totalDebit,
			Description: outgoingDescription(transfer, mode),
			Date:        now,
		}
		if mode == domain.TransferModeInternal {
			senderEntry.Kind = domain.TransactionKindTransferOut
		}
		if err := tx.InsertTransaction(ctx, senderEntry); err != nil {
			return err
		}
		result.SenderTransactionID = senderEntry.ID

		if lockedReceiver != nil {
			receiverAccountID := lockedReceiver.ID
			receiverEntry := &domain.Transaction{
				ID:          uuid.New(),
				UserID:      lockedReceiver.OwnerID,
				AccountID:   &receiverAccountID,
				TransferID:  &transferID,
				Kind:        domain.TransactionKindTransferIn,
				Amount:      credited,
				Description: fmt.Sprintf("Received from %s - %s", senderName, transfer.Description),
				Date:        now,
			}
			if err := tx.InsertTransaction(ctx, receiverEntry); err != nil {
				return err
			}
			result.ReceiverTransactionID = &receiverEntry.ID
		}

		return nil
	})
	if err != nil {
		if domain.IsDomainError(err) {
			log.WithError(err).Warn("transfer rejected after locking")
		} else {
			log.WithError(err).Error("transfer rolled back")
		}
		return nil, domain.StorageFailure(err)
	}

	log.WithFields(logrus.Fields{
		"transfer_id": transfer.ID,
		"fee":         feeAmount,
		"mode":        mode,
	}).Info("transfer completed")

	s.publish(ctx, transfer, mode)

	return result, nil
}

// AssessTransfer runs the fraud gate for a prospective transfer without moving money
func (s *TransferService) AssessTransfer(ctx context.Context, senderAccountID uuid.UUID, receiverNumber string, amount int64, requestingUser uuid.UUID) (*fraud.Verdict, error) {
	sender, err := s.senderAccount(ctx, senderAccountID, requestingUser)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidAmount, amount)
	}
	if s.Fraud == nil {
		return nil, errFraudUnconfigured
	}
	return s.Fraud.Assess(ctx, sender, amount, receiverNumber)
}

// ListTransfers returns transfers sent from the owner's accounts, newest first.
// When AccountID is set only that account's transfers are listed.
func (s *TransferService) ListTransfers(ctx context.Context, input ListTransfersInput) ([]*domain.Transfer, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var senderIDs []uuid.UUID
	if input.AccountID != nil {
		account, err := s.AccountRepo.GetByID(ctx, *input.AccountID)
		if err != nil {
			return nil, err
		}
		if !account.OwnedBy(input.OwnerID) {
			return nil, domain.ErrUnauthorized
		}
		senderIDs = []uuid.UUID{account.ID}
	} else {
		ids, err := s.ownedAccountIDs(ctx, input.OwnerID)
		if err != nil {
			return nil, err
		}
		senderIDs = ids
	}

	if len(senderIDs) == 0 {
		return []*domain.Transfer{}, nil
	}
	return s.TransferRepo.ListBySenders(ctx, senderIDs, limit, offset)
}

// GetTransfer returns one transfer sent from an account owned by ownerID
func (s *TransferService) GetTransfer(ctx context.Context, transferID, ownerID uuid.UUID) (*domain.Transfer, error) {
	transfer, err := s.TransferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	sender, err := s.AccountRepo.GetByID(ctx, transfer.SenderAccountID)
	if err != nil {
		return nil, err
	}
	if !sender.OwnedBy(ownerID) {
		return nil, fmt.Errorf("transfer %s: %w", transferID, domain.ErrUnauthorized)
	}

	return transfer, nil
}

// ListTransactions returns the owner's ledger entries, newest first
func (s *TransferService) ListTransactions(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	return s.TransactionRepo.ListByUser(ctx, ownerID)
}

// RecentRecipients returns distinct receivers the owner has paid, most recent first
func (s *TransferService) RecentRecipients(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Recipient, error) {
	if limit <= 0 {
		limit = DefaultRecipientsLimit
	}

	ids, err := s.ownedAccountIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Recipient{}, nil
	}
	return s.TransferRepo.RecentRecipients(ctx, ids, limit)
}

func (s *TransferService) senderAccount(ctx context.Context, accountID, requestingUser uuid.UUID) (*domain.Account, error) {
	sender, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !sender.OwnedBy(requestingUser) {
		return nil, fmt.Errorf("sender account %s: %w", accountID, domain.ErrUnauthorized)
	}
	if !sender.Active {
		return nil, fmt.Errorf("sender account %s is deactivated: %w", accountID, domain.ErrNotFound)
	}
	return sender, nil
}

// resolveReceiver returns the active internal account behind number, or nil for an external receiver
func (s *TransferService) resolveReceiver(ctx context.Context, number string) (*domain.Account, error) {
	receiver, err := s.AccountRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.StorageFailure(err)
	}
	if !receiver.Active {
		return nil, nil
	}
	return receiver, nil
}

var errFraudUnconfigured = fmt.Errorf("%w: fraud scorer is not configured", domain.ErrExternalServiceTimeout)

// checkFraud applies the stricter of the service default and the requested policy.
// A request can raise the policy but never lower it.
func (s *TransferService) checkFraud(ctx context.Context, raw string, sender *domain.Account, amount int64, receiverNumber string) (string, error) {
	requested, err := fraud.ParsePolicy(raw)
	if err != nil {
		return "", err
	}
	policy := s.DefaultFraudPolicy.Stricter(requested)
	if policy == fraud.PolicyIgnore {
		return "", nil
	}
	if s.Fraud == nil {
		return "", errFraudUnconfigured
	}
	return s.Fraud.Check(ctx, policy, sender, amount, receiverNumber)
}

func (s *TransferService) displayName(ctx context.Context, userID uuid.UUID, fallback string) string {
	if s.Users == nil {
		return fallback
	}
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil || user.DisplayName() == "" {
		return fallback
	}
	return user.DisplayName()
}

func (s *TransferService) ownedAccountIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	accounts, err := s.AccountRepo.ListAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids, nil
}

func (s *TransferService) publish(ctx context.Context, transfer *domain.Transfer, mode domain.TransferMode) {
	if s.Events == nil {
		return
	}
	event := domain.TransferCompleted{
		TransferID:            transfer.ID,
		SenderAccountID:       transfer.SenderAccountID,
		ReceiverAccountNumber: transfer.ReceiverAccountNumber,
		ReceiverBank:          transfer.ReceiverBank,
		Amount:                transfer.Amount,
		Fee:                   transfer.Fee,
		FeePayer:              transfer.FeePayer,
		Mode:                  mode,
		OccurredAt:            transfer.Date,
	}
	if err := s.Events.PublishTransferCompleted(context.WithoutCancel(ctx), event); err != nil {
		s.Logger.WithError(err).WithField("transfer_id", transfer.ID).Error("failed to publish transfer event")
	}
}

func (s *TransferService) description(raw string, mode domain.TransferMode) string {
	if raw != "" {
		return raw
	}
	if mode == domain.TransferModeInternal {
		return "Internal transfer"
	}
	return "Bank transfer"
}

func outgoingDescription(t *domain.Transfer, mode domain.TransferMode) string {
	if mode == domain.TransferModeInternal {
		return fmt.Sprintf("Transfer to %s - %s", t.ReceiverName, t.Description)
	}
	to := t.ReceiverAccountNumber
	if t.ReceiverBank != "" {
		to = fmt.Sprintf("%s (%s)", to, t.ReceiverBank)
	}
	return fmt.Sprintf("Transfer to %s: %s", to, t.Description)
}
