package ledger

import "github.com/mmynk/splitledger/internal/models"

// CategoryIncome aggregates active incomes sharing a category.
type CategoryIncome struct {
	Count        int     `json:"count"`
	TotalMonthly float64 `json:"total_monthly"`
}

// FrequencyIncome aggregates active incomes sharing a frequency.
type FrequencyIncome struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// IncomeSummary is the normalized view of a user's incomes.
type IncomeSummary struct {
	TotalSources  int                                        `json:"total_sources"`
	MonthlyIncome float64                                    `json:"monthly_income"`
	YearlyIncome  float64                                    `json:"yearly_income"`
	ByCategory    map[models.IncomeCategory]CategoryIncome   `json:"by_category"`
	ByFrequency   map[models.IncomeFrequency]FrequencyIncome `json:"by_frequency"`
}

// MonthlyEquivalent converts amount received at frequency into a monthly
// figure. One-time income contributes nothing to regular monthly income.
// Unknown frequencies are treated as monthly.
func MonthlyEquivalent(amount float64, frequency models.IncomeFrequency) float64 {
	var monthly float64
	switch frequency {
	case models.FrequencyWeekly:
		monthly = amount * 4.33 // average weeks per month
	case models.FrequencyBiWeekly:
		monthly = amount * 2.17
	case models.FrequencyQuarterly:
		monthly = amount / 3
	case models.FrequencyYearly:
		monthly = amount / 12
	case models.FrequencyOneTime:
		monthly = 0
	default:
		monthly = amount
	}
	return Round2(monthly)
}

// SummarizeIncome aggregates the active incomes in incomes.
func SummarizeIncome(incomes []models.Income) IncomeSummary {
	summary := IncomeSummary{
		ByCategory:  make(map[models.IncomeCategory]CategoryIncome),
		ByFrequency: make(map[models.IncomeFrequency]FrequencyIncome),
	}

	var monthly float64
	for _, in := range incomes {
		if !in.Active {
			continue
		}
		summary.TotalSources++

		eq := MonthlyEquivalent(in.Amount, in.Frequency)
		monthly += eq

		c := summary.ByCategory[in.Category]
		c.Count++
		c.TotalMonthly = Round2(c.TotalMonthly + eq)
		summary.ByCategory[in.Category] = c

		f := summary.ByFrequency[in.Frequency]
		f.Count++
		f.TotalAmount = Round2(f.TotalAmount + in.Amount)
		summary.ByFrequency[in.Frequency] = f
	}

	summary.MonthlyIncome = Round2(monthly)
	summary.YearlyIncome = Round2(monthly * 12)
	return summary
}
