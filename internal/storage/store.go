// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines every persistence operation the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore
	UserStore
	IncomeStore

	// Close releases any resources held by the store.
	Close() error
}

// GroupStore persists groups and their member lists.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are assigned when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group memberID belongs to, newest first.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// UpdateGroup writes the group's descriptive fields. Owner and members
	// are untouched.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and, by cascade, its expenses.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses and their allocations.
type ExpenseStore interface {
	// CreateExpense persists an expense and its allocations atomically.
	// ID, CreatedAt and UpdatedAt are assigned when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with allocations in participant order.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, most recent date first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// UpdateExpense writes the expense's own fields. Allocations are untouched.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// ReplaceAllocations swaps an expense's allocations for a recomputed set.
	ReplaceAllocations(ctx context.Context, expenseID string, allocations []models.Allocation) error

	// SettleAllocation marks one allocation settled if it is not already.
	// It reports whether this call performed the transition; concurrent
	// callers race on a conditional update so exactly one wins.
	SettleAllocation(ctx context.Context, expenseID, memberID string, settledAt time.Time) (bool, error)

	// DeleteExpense removes an expense and its allocations.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// UserStore persists member accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// IncomeStore persists personal incomes.
type IncomeStore interface {
	CreateIncome(ctx context.Context, income *models.Income) error
	GetIncome(ctx context.Context, incomeID string) (*models.Income, error)

	// ListIncomesByUser returns a user's active incomes, newest first.
	ListIncomesByUser(ctx context.Context, userID string) ([]models.Income, error)

	UpdateIncome(ctx context.Context, income *models.Income) error

	// DeactivateIncome soft-deletes an income.
	DeactivateIncome(ctx context.Context, incomeID string) error
}
