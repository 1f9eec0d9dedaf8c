package api

const (
	AuthServiceName    = "splitledger.v1.AuthService"
	GroupServiceName   = "splitledger.v1.GroupService"
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	IncomeServiceName  = "splitledger.v1.IncomeService"
)

// Fully-qualified procedure paths.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceUpdateProfileProcedure  = "/" + AuthServiceName + "/UpdateProfile"

	GroupServiceCreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure    = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure  = "/" + GroupServiceName + "/ListGroups"
	GroupServiceUpdateGroupProcedure = "/" + GroupServiceName + "/UpdateGroup"
	GroupServiceDeleteGroupProcedure = "/" + GroupServiceName + "/DeleteGroup"

	ExpenseServiceCreateExpenseProcedure        = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetExpenseProcedure           = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceListExpensesProcedure         = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure        = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure        = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceSettleExpenseProcedure        = "/" + ExpenseServiceName + "/SettleExpense"
	ExpenseServiceRecomputeAllocationsProcedure = "/" + ExpenseServiceName + "/RecomputeAllocations"
	ExpenseServiceGetGroupStatsProcedure        = "/" + ExpenseServiceName + "/GetGroupStats"
	ExpenseServiceGetGroupBalancesProcedure     = "/" + ExpenseServiceName + "/GetGroupBalances"
	ExpenseServiceGetDashboardProcedure         = "/" + ExpenseServiceName + "/GetDashboard"
	ExpenseServiceListMemberExpensesProcedure   = "/" + ExpenseServiceName + "/ListMemberExpenses"

	IncomeServiceCreateIncomeProcedure     = "/" + IncomeServiceName + "/CreateIncome"
	IncomeServiceGetIncomeProcedure        = "/" + IncomeServiceName + "/GetIncome"
	IncomeServiceListIncomesProcedure      = "/" + IncomeServiceName + "/ListIncomes"
	IncomeServiceUpdateIncomeProcedure     = "/" + IncomeServiceName + "/UpdateIncome"
	IncomeServiceDeleteIncomeProcedure     = "/" + IncomeServiceName + "/DeleteIncome"
	IncomeServiceGetIncomeSummaryProcedure = "/" + IncomeServiceName + "/GetIncomeSummary"
)

// PublicProcedures may be called without a token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}
