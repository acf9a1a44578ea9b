package grpc

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/usecase/transfer"
)

var maxAmount = decimal.NewFromInt(domain.MaxAmount)

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

// parseOptionalID returns nil for an empty field
func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseAmount accepts a decimal string holding a whole number of VND.
// Sign checks are left to the usecases so they report the domain error.
func parseAmount(field, raw string) (int64, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	if !amount.IsInteger() {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number of VND", field)
	}
	if amount.Abs().GreaterThan(maxAmount) {
		return 0, status.Errorf(codes.InvalidArgument, "%s is out of range", field)
	}
	return amount.IntPart(), nil
}

func formatAmount(v int64) string {
	return strconv.FormatInt(v, 10)
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func accountToWire(a *domain.Account) *Account {
	return &Account{
		Id:            a.ID.String(),
		OwnerId:       a.OwnerID.String(),
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		Balance:       formatAmount(a.Balance),
		Currency:      a.Currency,
		Active:        a.Active,
		CreatedAt:     timestamppb.New(a.CreatedAt),
	}
}

func transferToWire(t *domain.Transfer) *Transfer {
	return &Transfer{
		Id:                    t.ID.String(),
		SenderAccountId:       t.SenderAccountID.String(),
		ReceiverAccountNumber: t.ReceiverAccountNumber,
		ReceiverBank:          t.ReceiverBank,
		ReceiverName:          t.ReceiverName,
		Amount:                formatAmount(t.Amount),
		Fee:                   formatAmount(t.Fee),
		FeePayer:              string(t.FeePayer),
		Description:           t.Description,
		Status:                string(t.Status),
		CreatedAt:             timestamppb.New(t.Date),
	}
}

func transferResultToWire(r *transfer.TransferResult) *ExecuteTransferResponse {
	resp := &ExecuteTransferResponse{
		Transfer:              transferToWire(r.Transfer),
		Mode:                  string(r.Mode),
		SenderTransactionId:   r.SenderTransactionID.String(),
		ReceiverTransactionId: optionalID(r.ReceiverTransactionID),
		AmountSent:            formatAmount(r.AmountSent),
		AmountReceived:        formatAmount(r.AmountReceived),
		Fee:                   formatAmount(r.Fee),
		SenderBalance:         formatAmount(r.SenderBalance),
		ReceiverName:          r.ReceiverName,
		FraudWarning:          r.FraudWarning,
	}
	if r.ReceiverBalance != nil {
		resp.ReceiverBalance = formatAmount(*r.ReceiverBalance)
	}
	return resp
}

func transactionToWire(t *domain.Transaction) *Transaction {
	return &Transaction{
		Id:          t.ID.String(),
		AccountId:   optionalID(t.AccountID),
		TransferId:  optionalID(t.TransferID),
		Kind:        string(t.Kind),
		Amount:      formatAmount(t.Amount),
		Description: t.Description,
		CreatedAt:   timestamppb.New(t.Date),
	}
}

func recipientToWire(r *domain.Recipient) *Recipient {
	return &Recipient{
		AccountNumber:  r.AccountNumber,
		Name:           r.Name,
		Bank:           r.Bank,
		LastTransferAt: timestamppb.New(r.LastTransfer),
	}
}

func goalToWire(g *domain.SavingsGoal) *SavingsGoal {
	return &SavingsGoal{
		Id:              g.ID.String(),
		AccountId:       g.AccountID.String(),
		Name:            g.Name,
		TargetAmount:    formatAmount(g.TargetAmount),
		AllocatedAmount: formatAmount(g.AllocatedAmount),
		Color:           g.Color,
		Active:          g.Active,
		CreatedAt:       timestamppb.New(g.CreatedAt),
		UpdatedAt:       timestamppb.New(g.UpdatedAt),
	}
}

func goalsToWire(goals []*domain.SavingsGoal) []*SavingsGoal {
	out := make([]*SavingsGoal, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalToWire(g))
	}
	return out
}

// mapError converts domain errors to gRPC status errors.
// Storage and unknown failures are logged and reported without detail.
func (s *Server) mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrStorageFailure):
		s.Logger.WithError(err).Error("storage failure")
		return status.Error(codes.Internal, "transfer failed")

	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidGoal):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrFraudBlocked),
		errors.Is(err, domain.ErrOverAllocated):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, domain.ErrAllocationExhausted):
		return status.Error(codes.ResourceExhausted, err.Error())

	case errors.Is(err, domain.ErrExternalServiceTimeout):
		return status.Error(codes.Unavailable, err.Error())

	default:
		s.Logger.WithError(err).Error("unexpected error")
		return status.Error(codes.Internal, "internal error")
	}
}
