package grpc

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vigipay/vigipay-backend/internal/auth"
	"github.com/vigipay/vigipay-backend/internal/usecase/account"
	"github.com/vigipay/vigipay-backend/internal/usecase/savings"
	"github.com/vigipay/vigipay-backend/internal/usecase/transfer"
)

// Server implements the BankService gRPC server
type Server struct {
	AccountService  *account.AccountService
	TransferService *transfer.TransferService
	SavingsService  *savings.SavingsService
	Logger          logrus.FieldLogger
}

var _ BankServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	accountService *account.AccountService,
	transferService *transfer.TransferService,
	savingsService *savings.SavingsService,
	logger logrus.FieldLogger,
) *Server {
	return &Server{
		AccountService:  accountService,
		TransferService: transferService,
		SavingsService:  savingsService,
		Logger:          logger,
	}
}

// currentUser returns the user the auth interceptor attached to ctx
func currentUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user")
	}
	return userID, nil
}

// CreateAccount handles the CreateAccount RPC
func (s *Server) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*CreateAccountResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	acc, err := s.AccountService.CreateAccount(ctx, userID, req.AccountType)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &CreateAccountResponse{Account: accountToWire(acc)}, nil
}

// ListAccounts handles the ListAccounts RPC
func (s *Server) ListAccounts(ctx context.Context, _ *ListAccountsRequest) (*ListAccountsResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.AccountService.ListAccounts(ctx, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	resp := &ListAccountsResponse{Accounts: make([]*Account, 0, len(accounts))}
	for _, acc := range accounts {
		resp.Accounts = append(resp.Accounts, accountToWire(acc))
	}
	return resp, nil
}

// GetAccount handles the GetAccount RPC
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	acc, err := s.AccountService.GetAccount(ctx, accountID, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &GetAccountResponse{Account: accountToWire(acc)}, nil
}

// DeactivateAccount handles the DeactivateAccount RPC
func (s *Server) DeactivateAccount(ctx context.Context, req *DeactivateAccountRequest) (*DeactivateAccountResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	if err := s.AccountService.DeactivateAccount(ctx, accountID, userID); err != nil {
		return nil, s.mapError(err)
	}
	return &DeactivateAccountResponse{}, nil
}

// LookupAccount handles the LookupAccount RPC. It needs no token and returns no balance.
func (s *Server) LookupAccount(ctx context.Context, req *LookupAccountRequest) (*LookupAccountResponse, error) {
	if req.AccountNumber == "" {
		return nil, status.Error(codes.InvalidArgument, "account_number is required")
	}

	holder, err := s.AccountService.LookupAccount(ctx, req.AccountNumber)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &LookupAccountResponse{
		Exists:        true,
		AccountNumber: holder.AccountNumber,
		HolderName:    holder.HolderName,
		AccountType:   string(holder.AccountType),
	}, nil
}

// ExecuteTransfer handles the ExecuteTransfer RPC
func (s *Server) ExecuteTransfer(ctx context.Context, req *ExecuteTransferRequest) (*ExecuteTransferResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	// Parse sender account ID
	senderID, err := parseID("sender_account_id", req.SenderAccountId)
	if err != nil {
		return nil, err
	}

	// Parse amount from string to whole VND
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	input := transfer.ExecuteTransferInput{
		SenderAccountID:       senderID,
		ReceiverAccountNumber: req.ReceiverAccountNumber,
		ReceiverBank:          req.ReceiverBank,
		ReceiverName:          req.ReceiverName,
		Amount:                amount,
		Description:           req.Description,
		FeePayer:              req.FeePayer,
		RequestingUser:        userID,
		FraudPolicy:           req.FraudPolicy,
		RequireInternal:       req.InternalOnly,
	}

	result, err := s.TransferService.ExecuteTransfer(ctx, input)
	if err != nil {
		return nil, s.mapError(err)
	}

	return transferResultToWire(result), nil
}

// AssessTransfer handles the AssessTransfer RPC
func (s *Server) AssessTransfer(ctx context.Context, req *AssessTransferRequest) (*AssessTransferResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	senderID, err := parseID("sender_account_id", req.SenderAccountId)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	verdict, err := s.TransferService.AssessTransfer(ctx, senderID, req.ReceiverAccountNumber, amount, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &AssessTransferResponse{
		IsSafe:      verdict.IsSafe,
		Probability: verdict.Probability,
		Message:     verdict.Message,
	}, nil
}

// ListTransfers handles the ListTransfers RPC
func (s *Server) ListTransfers(ctx context.Context, req *ListTransfersRequest) (*ListTransfersResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseOptionalID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	transfers, err := s.TransferService.ListTransfers(ctx, transfer.ListTransfersInput{
		OwnerID:   userID,
		AccountID: accountID,
		Limit:     int(req.Limit),
		Offset:    int(req.Offset),
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	resp := &ListTransfersResponse{Transfers: make([]*Transfer, 0, len(transfers))}
	for _, t := range transfers {
		resp.Transfers = append(resp.Transfers, transferToWire(t))
	}
	return resp, nil
}

// GetTransfer handles the GetTransfer RPC
func (s *Server) GetTransfer(ctx context.Context, req *GetTransferRequest) (*GetTransferResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	transferID, err := parseID("transfer_id", req.TransferId)
	if err != nil {
		return nil, err
	}

	t, err := s.TransferService.GetTransfer(ctx, transferID, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &GetTransferResponse{Transfer: transferToWire(t)}, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, _ *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.TransferService.ListTransactions(ctx, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	resp := &ListTransactionsResponse{Transactions: make([]*Transaction, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, transactionToWire(tx))
	}
	return resp, nil
}

// RecentRecipients handles the RecentRecipients RPC
func (s *Server) RecentRecipients(ctx context.Context, req *RecentRecipientsRequest) (*RecentRecipientsResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	recipients, err := s.TransferService.RecentRecipients(ctx, userID, int(req.Limit))
	if err != nil {
		return nil, s.mapError(err)
	}

	resp := &RecentRecipientsResponse{Recipients: make([]*Recipient, 0, len(recipients))}
	for _, r := range recipients {
		resp.Recipients = append(resp.Recipients, recipientToWire(r))
	}
	return resp, nil
}

// CreateSavingsGoal handles the CreateSavingsGoal RPC
func (s *Server) CreateSavingsGoal(ctx context.Context, req *CreateSavingsGoalRequest) (*CreateSavingsGoalResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	target, err := parseAmount("target_amount", req.TargetAmount)
	if err != nil {
		return nil, err
	}
	var allocated int64
	if req.AllocatedAmount != "" {
		if allocated, err = parseAmount("allocated_amount", req.AllocatedAmount); err != nil {
			return nil, err
		}
	}

	goal, err := s.SavingsService.CreateGoal(ctx, savings.CreateGoalInput{
		UserID:          userID,
		AccountID:       accountID,
		Name:            req.Name,
		TargetAmount:    target,
		AllocatedAmount: allocated,
		Color:           req.Color,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &CreateSavingsGoalResponse{Goal: goalToWire(goal)}, nil
}

// ListSavingsGoals handles the ListSavingsGoals RPC
func (s *Server) ListSavingsGoals(ctx context.Context, req *ListSavingsGoalsRequest) (*ListSavingsGoalsResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseOptionalID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	goals, err := s.SavingsService.ListGoals(ctx, userID, accountID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ListSavingsGoalsResponse{Goals: goalsToWire(goals)}, nil
}

// UpdateSavingsGoal handles the UpdateSavingsGoal RPC
func (s *Server) UpdateSavingsGoal(ctx context.Context, req *UpdateSavingsGoalRequest) (*UpdateSavingsGoalResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	goalID, err := parseID("goal_id", req.GoalId)
	if err != nil {
		return nil, err
	}

	input := savings.UpdateGoalInput{
		GoalID: goalID,
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	}
	if req.TargetAmount != nil {
		target, err := parseAmount("target_amount", *req.TargetAmount)
		if err != nil {
			return nil, err
		}
		input.TargetAmount = &target
	}
	if req.AllocatedAmount != nil {
		allocated, err := parseAmount("allocated_amount", *req.AllocatedAmount)
		if err != nil {
			return nil, err
		}
		input.AllocatedAmount = &allocated
	}

	goal, err := s.SavingsService.UpdateGoal(ctx, input)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &UpdateSavingsGoalResponse{Goal: goalToWire(goal)}, nil
}

// DeleteSavingsGoal handles the DeleteSavingsGoal RPC
func (s *Server) DeleteSavingsGoal(ctx context.Context, req *DeleteSavingsGoalRequest) (*DeleteSavingsGoalResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	goalID, err := parseID("goal_id", req.GoalId)
	if err != nil {
		return nil, err
	}

	if err := s.SavingsService.DeleteGoal(ctx, goalID, userID); err != nil {
		return nil, s.mapError(err)
	}
	return &DeleteSavingsGoalResponse{}, nil
}

// GetSavingsSummary handles the GetSavingsSummary RPC
func (s *Server) GetSavingsSummary(ctx context.Context, req *GetSavingsSummaryRequest) (*GetSavingsSummaryResponse, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	summary, err := s.SavingsService.Summary(ctx, accountID, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &GetSavingsSummaryResponse{
		AccountId:       summary.AccountID.String(),
		TotalBalance:    formatAmount(summary.TotalBalance),
		TotalAllocated:  formatAmount(summary.TotalAllocated),
		Available:       formatAmount(summary.Available),
		GoalsCount:      int32(summary.GoalsCount),
		IsOverAllocated: summary.IsOverAllocated,
		Goals:           goalsToWire(summary.Goals),
	}, nil
}
