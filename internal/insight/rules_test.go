package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/aggregate"
	"finboard/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func facts(accounts []models.Account) Facts {
	return Facts{
		Accounts:   accounts,
		Summary:    aggregate.SummarizeBalances(accounts),
		Thresholds: DefaultThresholds(),
		Now:        testNow,
	}
}

func kinds(insights []models.Insight) []string {
	out := make([]string, len(insights))
	for i, ins := range insights {
		out[i] = ins.Kind
	}
	return out
}

func TestGenerateEmptyInputs(t *testing.T) {
	g := NewGenerator()

	assert.NotPanics(t, func() {
		insights := g.Generate(Facts{})
		assert.Empty(t, insights, "no data means no insights, not an error")
	})
}

func TestHighCreditUtilizationFires(t *testing.T) {
	g := NewGenerator()
	// 180/200 = 90% utilization, above the 80% threshold.
	f := facts([]models.Account{
		{Name: "Rewards Card", Type: models.AccountTypeCredit, Balance: -180, CreditLimit: 200, LastUpdated: testNow},
	})

	insights := g.Generate(f)
	require.Contains(t, kinds(insights), "high_credit_utilization")

	for _, ins := range insights {
		if ins.Kind == "high_credit_utilization" {
			assert.Equal(t, models.SeverityError, ins.Severity)
			assert.Equal(t, 180.0, ins.Amount)
			assert.Contains(t, ins.Message, "90%")
		}
	}
}

func TestHighCreditUtilizationDoesNotFireAtLowRatio(t *testing.T) {
	g := NewGenerator()
	// 50/200 = 25%.
	f := facts([]models.Account{
		{Name: "Rewards Card", Type: models.AccountTypeCredit, Balance: -50, CreditLimit: 200, LastUpdated: testNow},
	})

	assert.NotContains(t, kinds(g.Generate(f)), "high_credit_utilization")
}

func TestHighCreditUtilizationDefaultLimit(t *testing.T) {
	g := NewGenerator()
	// No limit reported: the configured stand-in (1000) applies, 900/1000 = 90%.
	f := facts([]models.Account{
		{Name: "Store Card", Type: models.AccountTypeCredit, Balance: -900, LastUpdated: testNow},
	})

	assert.Contains(t, kinds(g.Generate(f)), "high_credit_utilization")
}

func TestStaleAccounts(t *testing.T) {
	g := NewGenerator()
	f := facts([]models.Account{
		{Name: "Fresh", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow.Add(-time.Hour)},
		{Name: "Stale", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow.Add(-48 * time.Hour)},
		{Name: "Dead", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow.Add(-100 * time.Hour)},
	})

	insights := g.Generate(f)
	require.Contains(t, kinds(insights), "stale_accounts")

	for _, ins := range insights {
		if ins.Kind == "stale_accounts" {
			assert.Equal(t, models.SeverityWarning, ins.Severity)
			assert.Contains(t, ins.Message, "2 accounts")
			assert.Equal(t, "sync", ins.Action)
		}
	}
}

func TestPositiveNetWorth(t *testing.T) {
	g := NewGenerator()

	f := facts([]models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 500, LastUpdated: testNow},
	})
	insights := g.Generate(f)
	require.Contains(t, kinds(insights), "positive_net_worth")
	for _, ins := range insights {
		if ins.Kind == "positive_net_worth" {
			assert.Equal(t, models.SeveritySuccess, ins.Severity)
			assert.Equal(t, 500.0, ins.Amount)
		}
	}

	underwater := facts([]models.Account{
		{Name: "Mortgage", Type: models.AccountTypeLoan, Balance: -500, LastUpdated: testNow},
	})
	assert.NotContains(t, kinds(g.Generate(underwater)), "positive_net_worth")
}

func TestEmergencyFund(t *testing.T) {
	g := NewGenerator()

	// Savings below 6x the monthly estimate (6 * 2000 = 12000).
	low := facts([]models.Account{
		{Name: "High-Yield Savings", Type: models.AccountTypeDepository, Balance: 3000, LastUpdated: testNow},
	})
	insights := g.Generate(low)
	require.Contains(t, kinds(insights), "emergency_fund")
	for _, ins := range insights {
		if ins.Kind == "emergency_fund" {
			assert.Equal(t, models.SeverityInfo, ins.Severity)
			assert.Equal(t, 12000.0, ins.Amount)
		}
	}

	funded := facts([]models.Account{
		{Name: "High-Yield Savings", Type: models.AccountTypeDepository, Balance: 15000, LastUpdated: testNow},
	})
	assert.NotContains(t, kinds(g.Generate(funded)), "emergency_fund")

	// A zero estimate disables the rule rather than producing a 0 target.
	noEstimate := low
	noEstimate.Thresholds.MonthlyExpenseEstimate = 0
	assert.NotContains(t, kinds(g.Generate(noEstimate)), "emergency_fund")
}

func TestDiversification(t *testing.T) {
	g := NewGenerator()

	uniform := facts([]models.Account{
		{Name: "Checking A", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow},
		{Name: "Checking B", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow},
	})
	assert.Contains(t, kinds(g.Generate(uniform)), "diversification")

	mixed := facts([]models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow},
		{Name: "Brokerage", Type: models.AccountTypeInvestment, Balance: 10, LastUpdated: testNow},
	})
	assert.NotContains(t, kinds(g.Generate(mixed)), "diversification")

	single := facts([]models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 10, LastUpdated: testNow},
	})
	assert.NotContains(t, kinds(g.Generate(single)), "diversification")
}

func TestGenerateAssignsIDs(t *testing.T) {
	g := NewGenerator()
	f := facts([]models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 500, LastUpdated: testNow},
	})

	seen := map[string]bool{}
	for _, ins := range g.Generate(f) {
		require.NotEmpty(t, ins.ID)
		assert.False(t, seen[ins.ID], "insight IDs are unique")
		seen[ins.ID] = true
	}
}
