package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"finboard/internal/models"
)

func TestSummarizeBalancesSignConsistency(t *testing.T) {
	accounts := []models.Account{
		{ID: "a1", Name: "Everyday Checking", Type: models.AccountTypeDepository, Balance: 100},
		{ID: "a2", Name: "Rewards Card", Type: models.AccountTypeCredit, Balance: -50, CreditLimit: 200},
		{ID: "a3", Name: "Brokerage", Type: models.AccountTypeInvestment, Balance: 300},
	}

	s := SummarizeBalances(accounts)

	assert.Equal(t, 350.0, s.Total)
	assert.Equal(t, 100.0, s.Checking)
	assert.Equal(t, 50.0, s.Credit, "credit displays as absolute value")
	assert.Equal(t, 300.0, s.Investment)
	assert.Equal(t, 0.0, s.Savings)
}

func TestSummarizeBalancesDepositorySplit(t *testing.T) {
	accounts := []models.Account{
		{Name: "High-Yield Savings", Type: models.AccountTypeDepository, Balance: 500},
		{Name: "My SAVINGS account", Type: models.AccountTypeDepository, Balance: 250},
		{Name: "Main Checking", Type: models.AccountTypeDepository, Balance: 75},
		{Name: "Unlabeled Deposit", Type: models.AccountTypeDepository, Balance: 25},
	}

	s := SummarizeBalances(accounts)

	assert.Equal(t, 750.0, s.Savings)
	assert.Equal(t, 100.0, s.Checking, "unmatched depository defaults to checking")
	assert.Equal(t, 850.0, s.Total)
}

func TestSummarizeBalancesLoanDebt(t *testing.T) {
	accounts := []models.Account{
		{Name: "Mortgage", Type: models.AccountTypeLoan, Balance: -1000},
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 400},
	}

	s := SummarizeBalances(accounts)

	assert.Equal(t, -600.0, s.Total, "loan subtracts from net worth")
	assert.Equal(t, 1000.0, s.Loan, "loan displays as absolute value")
}

func TestSummarizeBalancesCoercesNaN(t *testing.T) {
	accounts := []models.Account{
		{Name: "Broken", Type: models.AccountTypeDepository, Balance: math.NaN()},
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 10},
	}

	s := SummarizeBalances(accounts)

	assert.Equal(t, 10.0, s.Total)
	assert.False(t, math.IsNaN(s.Checking))
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name         string
		current      float64
		previous     float64
		wantPercent  float64
		wantNew      bool
		wantPositive bool
		wantLabel    string
	}{
		{"both zero", 0, 0, 0, false, false, "0%"},
		{"new positive", 120, 0, 0, true, true, "New"},
		{"new negative", -40, 0, 0, true, false, "New"},
		{"dropped to zero", 0, 80, -100, false, false, "-100.0%"},
		{"growth", 150, 100, 50, false, true, "+50.0%"},
		{"decline", 75, 100, -25, false, false, "-25.0%"},
		{"negative previous uses magnitude", -50, -100, 50, false, true, "+50.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.current, tt.previous)
			assert.InDelta(t, tt.wantPercent, got.Percent, 1e-9)
			assert.Equal(t, tt.wantNew, got.New)
			assert.Equal(t, tt.wantPositive, got.Positive)
			assert.Equal(t, tt.wantLabel, got.Label())
		})
	}
}

func TestPercentChangeNaNInput(t *testing.T) {
	got := PercentChange(math.NaN(), 100)
	assert.InDelta(t, -100, got.Percent, 1e-9, "NaN current coerces to 0")
}
