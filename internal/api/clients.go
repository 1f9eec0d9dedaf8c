package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// AuthServiceClient calls AuthService procedures.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	updateProfile  *connect.Client[UpdateProfileRequest, UpdateProfileResponse]
}

// NewAuthServiceClient builds a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updateProfile:  newClient[UpdateProfileRequest, UpdateProfileResponse](httpClient, baseURL, AuthServiceUpdateProfileProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

// GroupServiceClient calls GroupService procedures.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
	updateGroup *connect.Client[UpdateGroupRequest, UpdateGroupResponse]
	deleteGroup *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
}

// NewGroupServiceClient builds a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup: newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:    newClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:  newClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		updateGroup: newClient[UpdateGroupRequest, UpdateGroupResponse](httpClient, baseURL, GroupServiceUpdateGroupProcedure, opts),
		deleteGroup: newClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// ExpenseServiceClient calls ExpenseService procedures.
type ExpenseServiceClient struct {
	createExpense        *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	getExpense           *connect.Client[GetExpenseRequest, GetExpenseResponse]
	listExpenses         *connect.Client[ListExpensesRequest, ListExpensesResponse]
	updateExpense        *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense        *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	settleExpense        *connect.Client[SettleExpenseRequest, SettleExpenseResponse]
	recomputeAllocations *connect.Client[RecomputeAllocationsRequest, RecomputeAllocationsResponse]
	getGroupStats        *connect.Client[GetGroupStatsRequest, GetGroupStatsResponse]
	getGroupBalances     *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
	getDashboard         *connect.Client[GetDashboardRequest, GetDashboardResponse]
	listMemberExpenses   *connect.Client[ListMemberExpensesRequest, ListMemberExpensesResponse]
}

// NewExpenseServiceClient builds a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense:        newClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		getExpense:           newClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		listExpenses:         newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		updateExpense:        newClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL, ExpenseServiceUpdateExpenseProcedure, opts),
		deleteExpense:        newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		settleExpense:        newClient[SettleExpenseRequest, SettleExpenseResponse](httpClient, baseURL, ExpenseServiceSettleExpenseProcedure, opts),
		recomputeAllocations: newClient[RecomputeAllocationsRequest, RecomputeAllocationsResponse](httpClient, baseURL, ExpenseServiceRecomputeAllocationsProcedure, opts),
		getGroupStats:        newClient[GetGroupStatsRequest, GetGroupStatsResponse](httpClient, baseURL, ExpenseServiceGetGroupStatsProcedure, opts),
		getGroupBalances:     newClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL, ExpenseServiceGetGroupBalancesProcedure, opts),
		getDashboard:         newClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL, ExpenseServiceGetDashboardProcedure, opts),
		listMemberExpenses:   newClient[ListMemberExpensesRequest, ListMemberExpensesResponse](httpClient, baseURL, ExpenseServiceListMemberExpensesProcedure, opts),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) SettleExpense(ctx context.Context, req *connect.Request[SettleExpenseRequest]) (*connect.Response[SettleExpenseResponse], error) {
	return c.settleExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) RecomputeAllocations(ctx context.Context, req *connect.Request[RecomputeAllocationsRequest]) (*connect.Response[RecomputeAllocationsResponse], error) {
	return c.recomputeAllocations.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetGroupStats(ctx context.Context, req *connect.Request[GetGroupStatsRequest]) (*connect.Response[GetGroupStatsResponse], error) {
	return c.getGroupStats.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListMemberExpenses(ctx context.Context, req *connect.Request[ListMemberExpensesRequest]) (*connect.Response[ListMemberExpensesResponse], error) {
	return c.listMemberExpenses.CallUnary(ctx, req)
}

// IncomeServiceClient calls IncomeService procedures.
type IncomeServiceClient struct {
	createIncome     *connect.Client[CreateIncomeRequest, CreateIncomeResponse]
	getIncome        *connect.Client[GetIncomeRequest, GetIncomeResponse]
	listIncomes      *connect.Client[ListIncomesRequest, ListIncomesResponse]
	updateIncome     *connect.Client[UpdateIncomeRequest, UpdateIncomeResponse]
	deleteIncome     *connect.Client[DeleteIncomeRequest, DeleteIncomeResponse]
	getIncomeSummary *connect.Client[GetIncomeSummaryRequest, GetIncomeSummaryResponse]
}

// NewIncomeServiceClient builds a client for the service at baseURL.
func NewIncomeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *IncomeServiceClient {
	return &IncomeServiceClient{
		createIncome:     newClient[CreateIncomeRequest, CreateIncomeResponse](httpClient, baseURL, IncomeServiceCreateIncomeProcedure, opts),
		getIncome:        newClient[GetIncomeRequest, GetIncomeResponse](httpClient, baseURL, IncomeServiceGetIncomeProcedure, opts),
		listIncomes:      newClient[ListIncomesRequest, ListIncomesResponse](httpClient, baseURL, IncomeServiceListIncomesProcedure, opts),
		updateIncome:     newClient[UpdateIncomeRequest, UpdateIncomeResponse](httpClient, baseURL, IncomeServiceUpdateIncomeProcedure, opts),
		deleteIncome:     newClient[DeleteIncomeRequest, DeleteIncomeResponse](httpClient, baseURL, IncomeServiceDeleteIncomeProcedure, opts),
		getIncomeSummary: newClient[GetIncomeSummaryRequest, GetIncomeSummaryResponse](httpClient, baseURL, IncomeServiceGetIncomeSummaryProcedure, opts),
	}
}

func (c *IncomeServiceClient) CreateIncome(ctx context.Context, req *connect.Request[CreateIncomeRequest]) (*connect.Response[CreateIncomeResponse], error) {
	return c.createIncome.CallUnary(ctx, req)
}

func (c *IncomeServiceClient) GetIncome(ctx context.Context, req *connect.Request[GetIncomeRequest]) (*connect.Response[GetIncomeResponse], error) {
	return c.getIncome.CallUnary(ctx, req)
}

func (c *IncomeServiceClient) ListIncomes(ctx context.Context, req *connect.Request[ListIncomesRequest]) (*connect.Response[ListIncomesResponse], error) {
	return c.listIncomes.CallUnary(ctx, req)
}

func (c *IncomeServiceClient) UpdateIncome(ctx context.Context, req *connect.Request[UpdateIncomeRequest]) (*connect.Response[UpdateIncomeResponse], error) {
	return c.updateIncome.CallUnary(ctx, req)
}

func (c *IncomeServiceClient) DeleteIncome(ctx context.Context, req *connect.Request[DeleteIncomeRequest]) (*connect.Response[DeleteIncomeResponse], error) {
	return c.deleteIncome.CallUnary(ctx, req)
}

func (c *IncomeServiceClient) GetIncomeSummary(ctx context.Context, req *connect.Request[GetIncomeSummaryRequest]) (*connect.Response[GetIncomeSummaryResponse], error) {
	return c.getIncomeSummary.CallUnary(ctx, req)
}
