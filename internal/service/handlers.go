package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Fully-qualified service names.
const (
	AuthServiceName       = "paynion.v1.AuthService"
	GroupServiceName      = "paynion.v1.GroupService"
	ExpenseServiceName    = "paynion.v1.ExpenseService"
	BillServiceName       = "paynion.v1.BillService"
	SettlementServiceName = "paynion.v1.SettlementService"
	PaymentServiceName    = "paynion.v1.PaymentService"
)

// Procedure paths, used for routing and by interceptors.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceUpdateProfileProcedure  = "/" + AuthServiceName + "/UpdateProfile"

	GroupServiceCreateGroupProcedure      = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure         = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure       = "/" + GroupServiceName + "/ListGroups"
	GroupServiceAddMembersProcedure       = "/" + GroupServiceName + "/AddMembers"
	GroupServiceGetGroupBalancesProcedure = "/" + GroupServiceName + "/GetGroupBalances"

	ExpenseServiceCreateExpenseProcedure = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceListExpensesProcedure  = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure = "/" + ExpenseServiceName + "/DeleteExpense"

	BillServiceParseBillProcedure = "/" + BillServiceName + "/ParseBill"

	SettlementServiceListSettlementsProcedure   = "/" + SettlementServiceName + "/ListSettlements"
	SettlementServiceRequestPaymentProcedure    = "/" + SettlementServiceName + "/RequestPayment"
	SettlementServiceConfirmPaymentProcedure    = "/" + SettlementServiceName + "/ConfirmPayment"
	SettlementServiceRejectPaymentProcedure     = "/" + SettlementServiceName + "/RejectPayment"
	SettlementServiceGetPaymentHistoryProcedure = "/" + SettlementServiceName + "/GetPaymentHistory"

	PaymentServiceInitiateUPIPaymentProcedure  = "/" + PaymentServiceName + "/InitiateUPIPayment"
	PaymentServiceUpdatePaymentStatusProcedure = "/" + PaymentServiceName + "/UpdatePaymentStatus"
)

// PublicProcedures can be called without a token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

// AuthServiceHandler is the server side of paynion.v1.AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[UserResponse], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[UserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(AuthServiceName,
		unary(AuthServiceRegisterProcedure, svc.Register, opts),
		unary(AuthServiceLoginProcedure, svc.Login, opts),
		unary(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts),
		unary(AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts),
	)
}

// GroupServiceHandler is the server side of paynion.v1.GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	AddMembers(context.Context, *connect.Request[AddMembersRequest]) (*connect.Response[GroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
}

func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(GroupServiceName,
		unary(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts),
		unary(GroupServiceGetGroupProcedure, svc.GetGroup, opts),
		unary(GroupServiceListGroupsProcedure, svc.ListGroups, opts),
		unary(GroupServiceAddMembersProcedure, svc.AddMembers, opts),
		unary(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts),
	)
}

// ExpenseServiceHandler is the server side of paynion.v1.ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
}

func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(ExpenseServiceName,
		unary(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts),
		unary(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts),
		unary(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts),
	)
}

// BillServiceHandler is the server side of paynion.v1.BillService.
type BillServiceHandler interface {
	ParseBill(context.Context, *connect.Request[ParseBillRequest]) (*connect.Response[ParseBillResponse], error)
}

func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(BillServiceName,
		unary(BillServiceParseBillProcedure, svc.ParseBill, opts),
	)
}

// SettlementServiceHandler is the server side of paynion.v1.SettlementService.
type SettlementServiceHandler interface {
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	RequestPayment(context.Context, *connect.Request[RequestPaymentRequest]) (*connect.Response[SettlementResponse], error)
	ConfirmPayment(context.Context, *connect.Request[SettlementActionRequest]) (*connect.Response[SettlementResponse], error)
	RejectPayment(context.Context, *connect.Request[SettlementActionRequest]) (*connect.Response[SettlementResponse], error)
	GetPaymentHistory(context.Context, *connect.Request[GetPaymentHistoryRequest]) (*connect.Response[GetPaymentHistoryResponse], error)
}

func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(SettlementServiceName,
		unary(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts),
		unary(SettlementServiceRequestPaymentProcedure, svc.RequestPayment, opts),
		unary(SettlementServiceConfirmPaymentProcedure, svc.ConfirmPayment, opts),
		unary(SettlementServiceRejectPaymentProcedure, svc.RejectPayment, opts),
		unary(SettlementServiceGetPaymentHistoryProcedure, svc.GetPaymentHistory, opts),
	)
}

// PaymentServiceHandler is the server side of paynion.v1.PaymentService.
type PaymentServiceHandler interface {
	InitiateUPIPayment(context.Context, *connect.Request[InitiateUPIPaymentRequest]) (*connect.Response[InitiateUPIPaymentResponse], error)
	UpdatePaymentStatus(context.Context, *connect.Request[UpdatePaymentStatusRequest]) (*connect.Response[PaymentResponse], error)
}

func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return mount(PaymentServiceName,
		unary(PaymentServiceInitiateUPIPaymentProcedure, svc.InitiateUPIPayment, opts),
		unary(PaymentServiceUpdatePaymentStatusProcedure, svc.UpdatePaymentStatus, opts),
	)
}

type route struct {
	procedure string
	handler   http.Handler
}

func unary[Req, Res any](
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) route {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return route{procedure: procedure, handler: connect.NewUnaryHandler(procedure, fn, opts...)}
}

func mount(service string, routes ...route) (string, http.Handler) {
	byProcedure := make(map[string]http.Handler, len(routes))
	for _, r := range routes {
		byProcedure[r.procedure] = r.handler
	}
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := byProcedure[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// Clients

// clientOptions puts the JSON codec in front of opts.
func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, clientOptions(opts)...)
}

// AuthServiceClient calls paynion.v1.AuthService.
type AuthServiceClient struct {
	Register       *connect.Client[RegisterRequest, AuthResponse]
	Login          *connect.Client[LoginRequest, AuthResponse]
	GetCurrentUser *connect.Client[GetCurrentUserRequest, UserResponse]
	UpdateProfile  *connect.Client[UpdateProfileRequest, UserResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		Register:       newClient[RegisterRequest, AuthResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		Login:          newClient[LoginRequest, AuthResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		GetCurrentUser: newClient[GetCurrentUserRequest, UserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		UpdateProfile:  newClient[UpdateProfileRequest, UserResponse](httpClient, baseURL, AuthServiceUpdateProfileProcedure, opts),
	}
}

// GroupServiceClient calls paynion.v1.GroupService.
type GroupServiceClient struct {
	CreateGroup      *connect.Client[CreateGroupRequest, GroupResponse]
	GetGroup         *connect.Client[GetGroupRequest, GroupResponse]
	ListGroups       *connect.Client[ListGroupsRequest, ListGroupsResponse]
	AddMembers       *connect.Client[AddMembersRequest, GroupResponse]
	GetGroupBalances *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		CreateGroup:      newClient[CreateGroupRequest, GroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		GetGroup:         newClient[GetGroupRequest, GroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		ListGroups:       newClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		AddMembers:       newClient[AddMembersRequest, GroupResponse](httpClient, baseURL, GroupServiceAddMembersProcedure, opts),
		GetGroupBalances: newClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL, GroupServiceGetGroupBalancesProcedure, opts),
	}
}

// ExpenseServiceClient calls paynion.v1.ExpenseService.
type ExpenseServiceClient struct {
	CreateExpense *connect.Client[CreateExpenseRequest, ExpenseResponse]
	ListExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
	DeleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
}

func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		CreateExpense: newClient[CreateExpenseRequest, ExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		ListExpenses:  newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		DeleteExpense: newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
	}
}

// BillServiceClient calls paynion.v1.BillService.
type BillServiceClient struct {
	ParseBill *connect.Client[ParseBillRequest, ParseBillResponse]
}

func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	return &BillServiceClient{
		ParseBill: newClient[ParseBillRequest, ParseBillResponse](httpClient, baseURL, BillServiceParseBillProcedure, opts),
	}
}

// SettlementServiceClient calls paynion.v1.SettlementService.
type SettlementServiceClient struct {
	ListSettlements   *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	RequestPayment    *connect.Client[RequestPaymentRequest, SettlementResponse]
	ConfirmPayment    *connect.Client[SettlementActionRequest, SettlementResponse]
	RejectPayment     *connect.Client[SettlementActionRequest, SettlementResponse]
	GetPaymentHistory *connect.Client[GetPaymentHistoryRequest, GetPaymentHistoryResponse]
}

func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		ListSettlements:   newClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),
		RequestPayment:    newClient[RequestPaymentRequest, SettlementResponse](httpClient, baseURL, SettlementServiceRequestPaymentProcedure, opts),
		ConfirmPayment:    newClient[SettlementActionRequest, SettlementResponse](httpClient, baseURL, SettlementServiceConfirmPaymentProcedure, opts),
		RejectPayment:     newClient[SettlementActionRequest, SettlementResponse](httpClient, baseURL, SettlementServiceRejectPaymentProcedure, opts),
		GetPaymentHistory: newClient[GetPaymentHistoryRequest, GetPaymentHistoryResponse](httpClient, baseURL, SettlementServiceGetPaymentHistoryProcedure, opts),
	}
}

// PaymentServiceClient calls paynion.v1.PaymentService.
type PaymentServiceClient struct {
	InitiateUPIPayment  *connect.Client[InitiateUPIPaymentRequest, InitiateUPIPaymentResponse]
	UpdatePaymentStatus *connect.Client[UpdatePaymentStatusRequest, PaymentResponse]
}

func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PaymentServiceClient {
	return &PaymentServiceClient{
		InitiateUPIPayment:  newClient[InitiateUPIPaymentRequest, InitiateUPIPaymentResponse](httpClient, baseURL, PaymentServiceInitiateUPIPaymentProcedure, opts),
		UpdatePaymentStatus: newClient[UpdatePaymentStatusRequest, PaymentResponse](httpClient, baseURL, PaymentServiceUpdatePaymentStatusProcedure, opts),
	}
}
