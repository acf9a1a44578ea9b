package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified BankService name
const ServiceName = "vigipay.bank.v1.BankService"

// BankServiceServer is the server API for BankService
type BankServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*CreateAccountResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	DeactivateAccount(context.Context, *DeactivateAccountRequest) (*DeactivateAccountResponse, error)
	LookupAccount(context.Context, *LookupAccountRequest) (*LookupAccountResponse, error)
	ExecuteTransfer(context.Context, *ExecuteTransferRequest) (*ExecuteTransferResponse, error)
	AssessTransfer(context.Context, *AssessTransferRequest) (*AssessTransferResponse, error)
	ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error)
	GetTransfer(context.Context, *GetTransferRequest) (*GetTransferResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	RecentRecipients(context.Context, *RecentRecipientsRequest) (*RecentRecipientsResponse, error)
	CreateSavingsGoal(context.Context, *CreateSavingsGoalRequest) (*CreateSavingsGoalResponse, error)
	ListSavingsGoals(context.Context, *ListSavingsGoalsRequest) (*ListSavingsGoalsResponse, error)
	UpdateSavingsGoal(context.Context, *UpdateSavingsGoalRequest) (*UpdateSavingsGoalResponse, error)
	DeleteSavingsGoal(context.Context, *DeleteSavingsGoalRequest) (*DeleteSavingsGoalResponse, error)
	GetSavingsSummary(context.Context, *GetSavingsSummaryRequest) (*GetSavingsSummaryResponse, error)
}

// FullMethod returns the "/service/method" path of a BankService method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod[Req, Resp any](name string, call func(BankServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BankServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(BankServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// BankServiceDesc describes BankService for grpc.Server.RegisterService.
// It mirrors proto/vigipay/bank/v1/bank_service.proto.
var BankServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateAccount", BankServiceServer.CreateAccount),
		unaryMethod("ListAccounts", BankServiceServer.ListAccounts),
		unaryMethod("GetAccount", BankServiceServer.GetAccount),
		unaryMethod("DeactivateAccount", BankServiceServer.DeactivateAccount),
		unaryMethod("LookupAccount", BankServiceServer.LookupAccount),
		unaryMethod("ExecuteTransfer", BankServiceServer.ExecuteTransfer),
		unaryMethod("AssessTransfer", BankServiceServer.AssessTransfer),
		unaryMethod("ListTransfers", BankServiceServer.ListTransfers),
		unaryMethod("GetTransfer", BankServiceServer.GetTransfer),
		unaryMethod("ListTransactions", BankServiceServer.ListTransactions),
		unaryMethod("RecentRecipients", BankServiceServer.RecentRecipients),
		unaryMethod("CreateSavingsGoal", BankServiceServer.CreateSavingsGoal),
		unaryMethod("ListSavingsGoals", BankServiceServer.ListSavingsGoals),
		unaryMethod("UpdateSavingsGoal", BankServiceServer.UpdateSavingsGoal),
		unaryMethod("DeleteSavingsGoal", BankServiceServer.DeleteSavingsGoal),
		unaryMethod("GetSavingsSummary", BankServiceServer.GetSavingsSummary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vigipay/bank/v1/bank_service.proto",
}

// RegisterBankServiceServer registers srv on s
func RegisterBankServiceServer(s grpc.ServiceRegistrar, srv BankServiceServer) {
	s.RegisterService(&BankServiceDesc, srv)
}

// BankServiceClient calls BankService with the JSON codec
type BankServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBankServiceClient wraps a client connection
func NewBankServiceClient(cc grpc.ClientConnInterface) *BankServiceClient {
	return &BankServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *BankServiceClient, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BankServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*CreateAccountResponse, error) {
	return invoke[CreateAccountResponse](ctx, c, "CreateAccount", in, opts)
}

func (c *BankServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c, "ListAccounts", in, opts)
}

func (c *BankServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountResponse](ctx, c, "GetAccount", in, opts)
}

func (c *BankServiceClient) DeactivateAccount(ctx context.Context, in *DeactivateAccountRequest, opts ...grpc.CallOption) (*DeactivateAccountResponse, error) {
	return invoke[DeactivateAccountResponse](ctx, c, "DeactivateAccount", in, opts)
}

func (c *BankServiceClient) LookupAccount(ctx context.Context, in *LookupAccountRequest, opts ...grpc.CallOption) (*LookupAccountResponse, error) {
	return invoke[LookupAccountResponse](ctx, c, "LookupAccount", in, opts)
}

func (c *BankServiceClient) ExecuteTransfer(ctx context.Context, in *ExecuteTransferRequest, opts ...grpc.CallOption) (*ExecuteTransferResponse, error) {
	return invoke[ExecuteTransferResponse](ctx, c, "ExecuteTransfer", in, opts)
}

func (c *BankServiceClient) AssessTransfer(ctx context.Context, in *AssessTransferRequest, opts ...grpc.CallOption) (*AssessTransferResponse, error) {
	return invoke[AssessTransferResponse](ctx, c, "AssessTransfer", in, opts)
}

func (c *BankServiceClient) ListTransfers(ctx context.Context, in *ListTransfersRequest, opts ...grpc.CallOption) (*ListTransfersResponse, error) {
	return invoke[ListTransfersResponse](ctx, c, "ListTransfers", in, opts)
}

func (c *BankServiceClient) GetTransfer(ctx context.Context, in *GetTransferRequest, opts ...grpc.CallOption) (*GetTransferResponse, error) {
	return invoke[GetTransferResponse](ctx, c, "GetTransfer", in, opts)
}

func (c *BankServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c, "ListTransactions", in, opts)
}

func (c *BankServiceClient) RecentRecipients(ctx context.Context, in *RecentRecipientsRequest, opts ...grpc.CallOption) (*RecentRecipientsResponse, error) {
	return invoke[RecentRecipientsResponse](ctx, c, "RecentRecipients", in, opts)
}

func (c *BankServiceClient) CreateSavingsGoal(ctx context.Context, in *CreateSavingsGoalRequest, opts ...grpc.CallOption) (*CreateSavingsGoalResponse, error) {
	return invoke[CreateSavingsGoalResponse](ctx, c, "CreateSavingsGoal", in, opts)
}

func (c *BankServiceClient) ListSavingsGoals(ctx context.Context, in *ListSavingsGoalsRequest, opts ...grpc.CallOption) (*ListSavingsGoalsResponse, error) {
	return invoke[ListSavingsGoalsResponse](ctx, c, "ListSavingsGoals", in, opts)
}

func (c *BankServiceClient) UpdateSavingsGoal(ctx context.Context, in *UpdateSavingsGoalRequest, opts ...grpc.CallOption) (*UpdateSavingsGoalResponse, error) {
	return invoke[UpdateSavingsGoalResponse](ctx, c, "UpdateSavingsGoal", in, opts)
}

func (c *BankServiceClient) DeleteSavingsGoal(ctx context.Context, in *DeleteSavingsGoalRequest, opts ...grpc.CallOption) (*DeleteSavingsGoalResponse, error) {
	return invoke[DeleteSavingsGoalResponse](ctx, c, "DeleteSavingsGoal", in, opts)
}

func (c *BankServiceClient) GetSavingsSummary(ctx context.Context, in *GetSavingsSummaryRequest, opts ...grpc.CallOption) (*GetSavingsSummaryResponse, error) {
	return invoke[GetSavingsSummaryResponse](ctx, c, "GetSavingsSummary", in, opts)
}
