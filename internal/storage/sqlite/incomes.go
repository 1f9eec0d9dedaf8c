package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const incomeColumns = `id, user_id, source, amount, category, frequency, start_date, end_date,
	description, active, tags, created_at, updated_at`

// CreateIncome persists a new income. New incomes are always active.
func (s *SQLiteStore) CreateIncome(ctx context.Context, income *models.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	income.CreatedAt = now
	income.UpdatedAt = now
	income.Active = true
	if income.StartDate.IsZero() {
		income.StartDate = now
	}

	tags, err := encodeTags(income.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO incomes (`+incomeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		income.ID, income.UserID, income.Source, income.Amount, string(income.Category),
		string(income.Frequency), income.StartDate.Unix(), nullableUnix(income.EndDate),
		income.Description, income.Active, tags, income.CreatedAt.Unix(), income.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func scanIncome(row scanner) (*models.Income, error) {
	in := &models.Income{}
	var category, frequency, tags string
	var startDate, createdAt, updatedAt int64
	var endDate sql.NullInt64
	err := row.Scan(&in.ID, &in.UserID, &in.Source, &in.Amount, &category, &frequency,
		&startDate, &endDate, &in.Description, &in.Active, &tags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	in.Category = models.IncomeCategory(category)
	in.Frequency = models.IncomeFrequency(frequency)
	in.StartDate = fromUnix(startDate)
	in.EndDate = fromNullableUnix(endDate)
	in.CreatedAt = fromUnix(createdAt)
	in.UpdatedAt = fromUnix(updatedAt)
	if err := json.Unmarshal([]byte(tags), &in.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return in, nil
}

// GetIncome retrieves an income by ID, active or not.
func (s *SQLiteStore) GetIncome(ctx context.Context, incomeID string) (*models.Income, error) {
	income, err := scanIncome(s.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, incomeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("income", incomeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income: %w", err)
	}
	return income, nil
}

// ListIncomesByUser retrieves a user's active incomes, newest first.
func (s *SQLiteStore) ListIncomesByUser(ctx context.Context, userID string) ([]models.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = ? AND active = 1
		 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []models.Income{}
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incomes: %w", err)
	}
	return incomes, nil
}

// UpdateIncome writes an income's editable fields.
func (s *SQLiteStore) UpdateIncome(ctx context.Context, income *models.Income) error {
	income.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	tags, err := encodeTags(income.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE incomes SET source = ?, amount = ?, category = ?, frequency = ?, start_date = ?,
		 end_date = ?, description = ?, tags = ?, updated_at = ? WHERE id = ?`,
		income.Source, income.Amount, string(income.Category), string(income.Frequency),
		income.StartDate.Unix(), nullableUnix(income.EndDate), income.Description, tags,
		income.UpdatedAt.Unix(), income.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	return requireAffected(res, "income", income.ID)
}

// DeactivateIncome soft-deletes an income so it drops out of lists and summaries.
func (s *SQLiteStore) DeactivateIncome(ctx context.Context, incomeID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE incomes SET active = 0, updated_at = ? WHERE id = ?", time.Now().Unix(), incomeID)
	if err != nil {
		return fmt.Errorf("failed to deactivate income: %w", err)
	}
	return requireAffected(res, "income", incomeID)
}
