package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Amounts are whole VND carried as decimal strings

type Account struct {
	Id            string                 `json:"id"`
	OwnerId       string                 `json:"owner_id"`
	AccountNumber string                 `json:"account_number"`
	AccountType   string                 `json:"account_type"`
	Balance       string                 `json:"balance"`
	Currency      string                 `json:"currency"`
	Active        bool                   `json:"active"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type CreateAccountRequest struct {
	AccountType string `json:"account_type"`
}

type CreateAccountResponse struct {
	Account *Account `json:"account"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type GetAccountRequest struct {
	AccountId string `json:"account_id"`
}

type GetAccountResponse struct {
	Account *Account `json:"account"`
}

type DeactivateAccountRequest struct {
	AccountId string `json:"account_id"`
}

type DeactivateAccountResponse struct{}

type LookupAccountRequest struct {
	AccountNumber string `json:"account_number"`
}

type LookupAccountResponse struct {
	Exists        bool   `json:"exists"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	AccountType   string `json:"account_type"`
}

type Transfer struct {
	Id                    string                 `json:"id"`
	SenderAccountId       string                 `json:"sender_account_id"`
	ReceiverAccountNumber string                 `json:"receiver_account_number"`
	ReceiverBank          string                 `json:"receiver_bank"`
	ReceiverName          string                 `json:"receiver_name"`
	Amount                string                 `json:"amount"`
	Fee                   string                 `json:"fee"`
	FeePayer              string                 `json:"fee_payer"`
	Description           string                 `json:"description"`
	Status                string                 `json:"status"`
	CreatedAt             *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type ExecuteTransferRequest struct {
	SenderAccountId       string `json:"sender_account_id"`
	ReceiverAccountNumber string `json:"receiver_account_number"`
	ReceiverBank          string `json:"receiver_bank,omitempty"`
	ReceiverName          string `json:"receiver_name,omitempty"`
	Amount                string `json:"amount"`
	Description           string `json:"description,omitempty"`
	FeePayer              string `json:"fee_payer,omitempty"`
	FraudPolicy           string `json:"fraud_policy,omitempty"`
	InternalOnly          bool   `json:"internal_only,omitempty"`
}

type ExecuteTransferResponse struct {
	Transfer              *Transfer `json:"transfer"`
	Mode                  string    `json:"mode"`
	SenderTransactionId   string    `json:"sender_transaction_id"`
	ReceiverTransactionId string    `json:"receiver_transaction_id,omitempty"`
	AmountSent            string    `json:"amount_sent"`
	AmountReceived        string    `json:"amount_received"`
	Fee                   string    `json:"fee"`
	SenderBalance         string    `json:"sender_balance"`
	ReceiverBalance       string    `json:"receiver_balance,omitempty"`
	ReceiverName          string    `json:"receiver_name"`
	FraudWarning          string    `json:"fraud_warning,omitempty"`
}

type AssessTransferRequest struct {
	SenderAccountId       string `json:"sender_account_id"`
	ReceiverAccountNumber string `json:"receiver_account_number"`
	Amount                string `json:"amount"`
}

type AssessTransferResponse struct {
	IsSafe      bool    `json:"is_safe"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

type ListTransfersRequest struct {
	AccountId string `json:"account_id,omitempty"`
	Limit     int32  `json:"limit,omitempty"`
	Offset    int32  `json:"offset,omitempty"`
}

type ListTransfersResponse struct {
	Transfers []*Transfer `json:"transfers"`
}

type GetTransferRequest struct {
	TransferId string `json:"transfer_id"`
}

type GetTransferResponse struct {
	Transfer *Transfer `json:"transfer"`
}

type Transaction struct {
	Id          string                 `json:"id"`
	AccountId   string                 `json:"account_id,omitempty"`
	TransferId  string                 `json:"transfer_id,omitempty"`
	Kind        string                 `json:"kind"`
	Amount      string                 `json:"amount"`
	Description string                 `json:"description"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type ListTransactionsRequest struct{}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type Recipient struct {
	AccountNumber  string                 `json:"account_number"`
	Name           string                 `json:"name"`
	Bank           string                 `json:"bank"`
	LastTransferAt *timestamppb.Timestamp `json:"last_transfer_at,omitempty"`
}

type RecentRecipientsRequest struct {
	Limit int32 `json:"limit,omitempty"`
}

type RecentRecipientsResponse struct {
	Recipients []*Recipient `json:"recipients"`
}

type SavingsGoal struct {
	Id              string                 `json:"id"`
	AccountId       string                 `json:"account_id"`
	Name            string                 `json:"name"`
	TargetAmount    string                 `json:"target_amount"`
	AllocatedAmount string                 `json:"allocated_amount"`
	Color           string                 `json:"color"`
	Active          bool                   `json:"active"`
	CreatedAt       *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt       *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type CreateSavingsGoalRequest struct {
	AccountId       string `json:"account_id"`
	Name            string `json:"name"`
	TargetAmount    string `json:"target_amount"`
	AllocatedAmount string `json:"allocated_amount,omitempty"`
	Color           string `json:"color,omitempty"`
}

type CreateSavingsGoalResponse struct {
	Goal *SavingsGoal `json:"goal"`
}

type ListSavingsGoalsRequest struct {
	AccountId string `json:"account_id,omitempty"`
}

type ListSavingsGoalsResponse struct {
	Goals []*SavingsGoal `json:"goals"`
}

// UpdateSavingsGoalRequest leaves absent fields unchanged
type UpdateSavingsGoalRequest struct {
	GoalId          string  `json:"goal_id"`
	Name            *string `json:"name,omitempty"`
	TargetAmount    *string `json:"target_amount,omitempty"`
	AllocatedAmount *string `json:"allocated_amount,omitempty"`
	Color           *string `json:"color,omitempty"`
}

type UpdateSavingsGoalResponse struct {
	Goal *SavingsGoal `json:"goal"`
}

type DeleteSavingsGoalRequest struct {
	GoalId string `json:"goal_id"`
}

type DeleteSavingsGoalResponse struct{}

type GetSavingsSummaryRequest struct {
	AccountId string `json:"account_id"`
}

type GetSavingsSummaryResponse struct {
	AccountId       string         `json:"account_id"`
	TotalBalance    string         `json:"total_balance"`
	TotalAllocated  string         `json:"total_allocated"`
	Available       string         `json:"available"`
	GoalsCount      int32          `json:"goals_count"`
	IsOverAllocated bool           `json:"is_over_allocated"`
	Goals           []*SavingsGoal `json:"goals"`
}
