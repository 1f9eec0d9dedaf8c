package models

import "time"

// IncomeFrequency is how often an income is received.
type IncomeFrequency string

const (
	FrequencyWeekly    IncomeFrequency = "weekly"
	FrequencyBiWeekly  IncomeFrequency = "bi-weekly"
	FrequencyMonthly   IncomeFrequency = "monthly"
	FrequencyQuarterly IncomeFrequency = "quarterly"
	FrequencyYearly    IncomeFrequency = "yearly"
	FrequencyOneTime   IncomeFrequency = "one-time"
)

// IncomeCategory classifies an income source.
type IncomeCategory string

const (
	IncomeSalary     IncomeCategory = "salary"
	IncomeFreelance  IncomeCategory = "freelance"
	IncomeBusiness   IncomeCategory = "business"
	IncomeInvestment IncomeCategory = "investment"
	IncomeRental     IncomeCategory = "rental"
	IncomePension    IncomeCategory = "pension"
	IncomeBenefits   IncomeCategory = "benefits"
	IncomeOther      IncomeCategory = "other"
)

// Income is an income source owned by one user. Incomes are never shared
// with a group.
type Income struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Source      string          `json:"source"`
	Amount      float64         `json:"amount"`
	Category    IncomeCategory  `json:"category"`
	Frequency   IncomeFrequency `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"` // nil for ongoing income
	Description string          `json:"description,omitempty"`

	// Active is cleared instead of deleting the row.
	Active bool     `json:"active"`
	Tags   []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
