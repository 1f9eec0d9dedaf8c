package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const expenseColumns = `id, group_id, description, amount, category, occurred_at, kind,
	payer_id, creator_id, notes, receipt, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateExpense persists a new expense and its allocations in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID and timestamps if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now
	if expense.Date.IsZero() {
		expense.Date = now
	}
	if expense.Category == "" {
		expense.Category = models.CategoryOther
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, string(expense.Category),
		expense.Date.Unix(), string(expense.Kind), expense.PayerID, expense.CreatorID,
		expense.Notes, expense.Receipt, expense.CreatedAt.Unix(), expense.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertAllocations(ctx, tx, expense.ID, expense.Allocations); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertAllocations(ctx context.Context, ex execer, expenseID string, allocations []models.Allocation) error {
	for i, a := range allocations {
		_, err := ex.ExecContext(ctx,
			`INSERT INTO allocations (expense_id, member_id, position, owed_amount, settled, settled_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			expenseID, a.MemberID, i, a.OwedAmount, a.Settled, nullableUnix(a.SettledAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}
	return nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var category, kind string
	var occurredAt, createdAt, updatedAt int64
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &category, &occurredAt, &kind,
		&e.PayerID, &e.CreatorID, &e.Notes, &e.Receipt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = models.Category(category)
	e.Kind = models.ExpenseKind(kind)
	e.Date = fromUnix(occurredAt)
	e.CreatedAt = fromUnix(createdAt)
	e.UpdatedAt = fromUnix(updatedAt)
	e.Allocations = []models.Allocation{}
	return e, nil
}

// GetExpense retrieves an expense by ID, including its allocations.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	allocations, err := s.queryAllocations(ctx,
		`SELECT expense_id, member_id, owed_amount, settled, settled_at
		 FROM allocations WHERE expense_id = ? ORDER BY position`, expenseID)
	if err != nil {
		return nil, err
	}
	if a, ok := allocations[expenseID]; ok {
		expense.Allocations = a
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group with their allocations,
// most recent first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ?
		 ORDER BY occurred_at DESC, created_at DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	allocations, err := s.queryAllocations(ctx,
		`SELECT a.expense_id, a.member_id, a.owed_amount, a.settled, a.settled_at
		 FROM allocations a JOIN expenses e ON e.id = a.expense_id
		 WHERE e.group_id = ? ORDER BY a.expense_id, a.position`, groupID)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		if a, ok := allocations[expenses[i].ID]; ok {
			expenses[i].Allocations = a
		}
	}
	return expenses, nil
}

// queryAllocations runs query and groups the resulting allocations by expense ID.
func (s *SQLiteStore) queryAllocations(ctx context.Context, query string, args ...any) (map[string][]models.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.Allocation)
	for rows.Next() {
		var expenseID string
		var a models.Allocation
		var settledAt sql.NullInt64
		if err := rows.Scan(&expenseID, &a.MemberID, &a.OwedAmount, &a.Settled, &settledAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		a.SettledAt = fromNullableUnix(settledAt)
		result[expenseID] = append(result[expenseID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return result, nil
}

// UpdateExpense writes an expense's editable fields. Kind and payer are fixed
// at creation and allocations are not recomputed; use ReplaceAllocations for that.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, category = ?, occurred_at = ?,
		 notes = ?, receipt = ?, updated_at = ? WHERE id = ?`,
		expense.Description, expense.Amount, string(expense.Category), expense.Date.Unix(),
		expense.Notes, expense.Receipt, expense.UpdatedAt.Unix(), expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense", expense.ID)
}

// ReplaceAllocations deletes an expense's allocations and inserts the given set.
//
// Members whose stored allocation is already settled stay settled with their
// stored timestamp, whatever the new set says. The touch of the expense row
// comes first so the transaction holds the write lock before those rows are
// read, and a SettleAllocation cannot commit in between.
func (s *SQLiteStore) ReplaceAllocations(ctx context.Context, expenseID string, allocations []models.Allocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE expenses SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), expenseID)
	if err != nil {
		return fmt.Errorf("failed to touch expense: %w", err)
	}
	if err := requireAffected(res, "expense", expenseID); err != nil {
		return err
	}

	settled, err := settledAllocations(ctx, tx, expenseID)
	if err != nil {
		return err
	}
	merged := make([]models.Allocation, len(allocations))
	copy(merged, allocations)
	for i := range merged {
		if at, ok := settled[merged[i].MemberID]; ok {
			merged[i].Settled = true
			merged[i].SettledAt = at
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM allocations WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	if err := insertAllocations(ctx, tx, expenseID, merged); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// settledAllocations maps member id to settlement time for the settled
// allocations of an expense. The time is nil for rows settled at creation.
func settledAllocations(ctx context.Context, tx *sql.Tx, expenseID string) (map[string]*time.Time, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT member_id, settled_at FROM allocations WHERE expense_id = ? AND settled = 1", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to read settled allocations: %w", err)
	}
	defer rows.Close()

	settled := make(map[string]*time.Time)
	for rows.Next() {
		var memberID string
		var settledAt sql.NullInt64
		if err := rows.Scan(&memberID, &settledAt); err != nil {
			return nil, fmt.Errorf("failed to scan settled allocation: %w", err)
		}
		settled[memberID] = fromNullableUnix(settledAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settled allocations: %w", err)
	}
	return settled, nil
}

// SettleAllocation flips one allocation to settled with a conditional update.
// It returns false without error when the allocation was already settled.
func (s *SQLiteStore) SettleAllocation(ctx context.Context, expenseID, memberID string, settledAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE allocations SET settled = 1, settled_at = ?
		 WHERE expense_id = ? AND member_id = ? AND settled = 0`,
		settledAt.Unix(), expenseID, memberID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle allocation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM allocations WHERE expense_id = ? AND member_id = ?",
		expenseID, memberID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, notFound("allocation", expenseID+"/"+memberID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check allocation existence: %w", err)
	}
	return false, nil
}

// DeleteExpense removes an expense by ID. Allocations go with it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}
