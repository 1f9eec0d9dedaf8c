package api

import (
	"time"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// User is the public view of a member account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser converts a stored account to its public view.
func NewUser(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		Currency:    u.Currency,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest changes only the fields that are set.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}

// Groups

type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	Type        string   `json:"type,omitempty" validate:"omitempty,oneof=family friends roommates trip other"`
	Members     []string `json:"members,omitempty" validate:"dive,required"`
	Currency    string   `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
	// MemberNames maps member ids with an account to their display names.
	MemberNames map[string]string `json:"member_names"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

// UpdateGroupRequest changes only the fields that are set. Only the owner
// may call it; membership is fixed after creation.
type UpdateGroupRequest struct {
	GroupID     string  `json:"group_id" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=family friends roommates trip other"`
	Currency    *string `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

type UpdateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type DeleteGroupResponse struct{}

// Expenses

type CreateExpenseRequest struct {
	GroupID     string     `json:"group_id" validate:"required"`
	Description string     `json:"description" validate:"required,max=200"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	Category    string     `json:"category,omitempty" validate:"omitempty,oneof=food transportation shopping entertainment utilities healthcare education other"`
	Date        *time.Time `json:"date,omitempty"`
	// Kind defaults to personal.
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=personal gift split"`
	// PayerID defaults to the caller.
	PayerID      string   `json:"payer_id,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Notes        string   `json:"notes,omitempty" validate:"max=500"`
	Receipt      string   `json:"receipt,omitempty" validate:"max=500"`
}

type CreateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

// ListExpensesRequest lists a group's expenses, optionally filtered.
type ListExpensesRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=personal gift split"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=food transportation shopping entertainment utilities healthcare education other"`
}

type ListExpensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// UpdateExpenseRequest edits descriptive fields. Kind, payer and
// allocations are fixed after creation; see RecomputeAllocations.
type UpdateExpenseRequest struct {
	ExpenseID   string     `json:"expense_id" validate:"required"`
	Description *string    `json:"description,omitempty" validate:"omitempty,min=1,max=200"`
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,oneof=food transportation shopping entertainment utilities healthcare education other"`
	Date        *time.Time `json:"date,omitempty"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
	Receipt     *string    `json:"receipt,omitempty" validate:"omitempty,max=500"`
}

type UpdateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

// SettleExpenseRequest settles the caller's allocation, or MemberID's when
// the caller is the payer.
type SettleExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	MemberID  string `json:"member_id,omitempty"`
}

type SettleExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
	// Changed is false when the allocation was already settled.
	Changed bool `json:"changed"`
}

// RecomputeAllocationsRequest rebuilds allocations from the current amount.
// Participants replaces the participant list when non-nil.
type RecomputeAllocationsRequest struct {
	ExpenseID    string   `json:"expense_id" validate:"required"`
	Participants []string `json:"participants,omitempty"`
}

type RecomputeAllocationsResponse struct {
	Expense *models.Expense `json:"expense"`
}

type GetGroupStatsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupStatsResponse struct {
	Stats ledger.Stats `json:"stats"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Balances []ledger.MemberBalance `json:"balances"`
	Debts    []ledger.DebtEdge      `json:"debts"`
}

type GetDashboardRequest struct{}

// GroupSummary is one group's line on the dashboard.
type GroupSummary struct {
	GroupID   string       `json:"group_id"`
	GroupName string       `json:"group_name"`
	Stats     ledger.Stats `json:"stats"`
}

type GetDashboardResponse struct {
	Groups []GroupSummary `json:"groups"`
	// Totals aggregates every group from the caller's point of view.
	Totals         ledger.Stats     `json:"totals"`
	RecentExpenses []models.Expense `json:"recent_expenses"`
}

// ListMemberExpensesRequest lists the caller's expenses across every group
// they belong to, optionally filtered.
type ListMemberExpensesRequest struct {
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=personal gift split"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=food transportation shopping entertainment utilities healthcare education other"`
}

type ListMemberExpensesResponse struct {
	Expenses    []models.Expense `json:"expenses"`
	TotalGroups int              `json:"total_groups"`
}

// Incomes

type CreateIncomeRequest struct {
	Source      string     `json:"source" validate:"required,max=100"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	Category    string     `json:"category" validate:"required,oneof=salary freelance business investment rental pension benefits other"`
	Frequency   string     `json:"frequency" validate:"required,oneof=weekly bi-weekly monthly quarterly yearly one-time"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	Tags        []string   `json:"tags,omitempty" validate:"max=20,dive,required,max=30"`
}

type CreateIncomeResponse struct {
	Income *models.Income `json:"income"`
}

type GetIncomeRequest struct {
	IncomeID string `json:"income_id" validate:"required"`
}

type GetIncomeResponse struct {
	Income *models.Income `json:"income"`
}

type ListIncomesRequest struct{}

type ListIncomesResponse struct {
	Incomes []models.Income `json:"incomes"`
}

type UpdateIncomeRequest struct {
	IncomeID    string     `json:"income_id" validate:"required"`
	Source      *string    `json:"source,omitempty" validate:"omitempty,min=1,max=100"`
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,oneof=salary freelance business investment rental pension benefits other"`
	Frequency   *string    `json:"frequency,omitempty" validate:"omitempty,oneof=weekly bi-weekly monthly quarterly yearly one-time"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	Tags        []string   `json:"tags,omitempty" validate:"max=20,dive,required,max=30"`
}

type UpdateIncomeResponse struct {
	Income *models.Income `json:"income"`
}

type DeleteIncomeRequest struct {
	IncomeID string `json:"income_id" validate:"required"`
}

type DeleteIncomeResponse struct{}

type GetIncomeSummaryRequest struct{}

type GetIncomeSummaryResponse struct {
	Summary ledger.IncomeSummary `json:"summary"`
}
