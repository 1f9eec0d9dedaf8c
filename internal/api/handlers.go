package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[UpdateProfileResponse], error)
}

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	SettleExpense(context.Context, *connect.Request[SettleExpenseRequest]) (*connect.Response[SettleExpenseResponse], error)
	RecomputeAllocations(context.Context, *connect.Request[RecomputeAllocationsRequest]) (*connect.Response[RecomputeAllocationsResponse], error)
	GetGroupStats(context.Context, *connect.Request[GetGroupStatsRequest]) (*connect.Response[GetGroupStatsResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
	ListMemberExpenses(context.Context, *connect.Request[ListMemberExpensesRequest]) (*connect.Response[ListMemberExpensesResponse], error)
}

// IncomeServiceHandler is implemented by the income service.
type IncomeServiceHandler interface {
	CreateIncome(context.Context, *connect.Request[CreateIncomeRequest]) (*connect.Response[CreateIncomeResponse], error)
	GetIncome(context.Context, *connect.Request[GetIncomeRequest]) (*connect.Response[GetIncomeResponse], error)
	ListIncomes(context.Context, *connect.Request[ListIncomesRequest]) (*connect.Response[ListIncomesResponse], error)
	UpdateIncome(context.Context, *connect.Request[UpdateIncomeRequest]) (*connect.Response[UpdateIncomeResponse], error)
	DeleteIncome(context.Context, *connect.Request[DeleteIncomeRequest]) (*connect.Response[DeleteIncomeResponse], error)
	GetIncomeSummary(context.Context, *connect.Request[GetIncomeSummaryRequest]) (*connect.Response[GetIncomeSummaryResponse], error)
}

// handlerOptions puts the JSON codec in front of caller options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// NewAuthServiceHandler builds an HTTP handler serving every AuthService
// procedure. It returns the path to mount the handler on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(AuthServiceUpdateProfileProcedure, connect.NewUnaryHandler(AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts...))
	return "/" + AuthServiceName + "/", mux
}

// NewGroupServiceHandler builds an HTTP handler serving every GroupService procedure.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	return "/" + GroupServiceName + "/", mux
}

// NewExpenseServiceHandler builds an HTTP handler serving every ExpenseService procedure.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceSettleExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceSettleExpenseProcedure, svc.SettleExpense, opts...))
	mux.Handle(ExpenseServiceRecomputeAllocationsProcedure, connect.NewUnaryHandler(ExpenseServiceRecomputeAllocationsProcedure, svc.RecomputeAllocations, opts...))
	mux.Handle(ExpenseServiceGetGroupStatsProcedure, connect.NewUnaryHandler(ExpenseServiceGetGroupStatsProcedure, svc.GetGroupStats, opts...))
	mux.Handle(ExpenseServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(ExpenseServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(ExpenseServiceGetDashboardProcedure, connect.NewUnaryHandler(ExpenseServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	mux.Handle(ExpenseServiceListMemberExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListMemberExpensesProcedure, svc.ListMemberExpenses, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// NewIncomeServiceHandler builds an HTTP handler serving every IncomeService procedure.
func NewIncomeServiceHandler(svc IncomeServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(IncomeServiceCreateIncomeProcedure, connect.NewUnaryHandler(IncomeServiceCreateIncomeProcedure, svc.CreateIncome, opts...))
	mux.Handle(IncomeServiceGetIncomeProcedure, connect.NewUnaryHandler(IncomeServiceGetIncomeProcedure, svc.GetIncome, opts...))
	mux.Handle(IncomeServiceListIncomesProcedure, connect.NewUnaryHandler(IncomeServiceListIncomesProcedure, svc.ListIncomes, opts...))
	mux.Handle(IncomeServiceUpdateIncomeProcedure, connect.NewUnaryHandler(IncomeServiceUpdateIncomeProcedure, svc.UpdateIncome, opts...))
	mux.Handle(IncomeServiceDeleteIncomeProcedure, connect.NewUnaryHandler(IncomeServiceDeleteIncomeProcedure, svc.DeleteIncome, opts...))
	mux.Handle(IncomeServiceGetIncomeSummaryProcedure, connect.NewUnaryHandler(IncomeServiceGetIncomeSummaryProcedure, svc.GetIncomeSummary, opts...))
	return "/" + IncomeServiceName + "/", mux
}
