package ledger

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		frequency models.IncomeFrequency
		amount    float64
		want      float64
	}{
		{models.FrequencyWeekly, 100, 433},
		{models.FrequencyBiWeekly, 1000, 2170},
		{models.FrequencyMonthly, 3000, 3000},
		{models.FrequencyQuarterly, 1000, 333.33},
		{models.FrequencyYearly, 60000, 5000},
		{models.FrequencyOneTime, 5000, 0},
		{"fortnightly", 10, 10},
	}
	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			if got := MonthlyEquivalent(tt.amount, tt.frequency); got != tt.want {
				t.Errorf("MonthlyEquivalent(%v, %s) = %v, want %v", tt.amount, tt.frequency, got, tt.want)
			}
		})
	}
}

func TestSummarizeIncome(t *testing.T) {
	incomes := []models.Income{
		{Source: "Acme", Amount: 3000, Category: models.IncomeSalary, Frequency: models.FrequencyMonthly, Active: true},
		{Source: "Side gig", Amount: 100, Category: models.IncomeFreelance, Frequency: models.FrequencyWeekly, Active: true},
		{Source: "Bonus", Amount: 2000, Category: models.IncomeSalary, Frequency: models.FrequencyOneTime, Active: true},
		{Source: "Old job", Amount: 9999, Category: models.IncomeSalary, Frequency: models.FrequencyMonthly, Active: false},
	}

	summary := SummarizeIncome(incomes)

	if summary.TotalSources != 3 {
		t.Errorf("TotalSources = %d, want 3", summary.TotalSources)
	}
	if summary.MonthlyIncome != 3433 {
		t.Errorf("MonthlyIncome = %v, want 3433", summary.MonthlyIncome)
	}
	if summary.YearlyIncome != 41196 {
		t.Errorf("YearlyIncome = %v, want 41196", summary.YearlyIncome)
	}

	salary := summary.ByCategory[models.IncomeSalary]
	if salary.Count != 2 || salary.TotalMonthly != 3000 {
		t.Errorf("salary = %+v, want 2 sources totalling 3000/month", salary)
	}
	oneTime := summary.ByFrequency[models.FrequencyOneTime]
	if oneTime.Count != 1 || oneTime.TotalAmount != 2000 {
		t.Errorf("one-time = %+v, want 1 source of 2000", oneTime)
	}
}
