// Package insight derives dashboard insights from aggregated financial
// state and manages the backend-sourced alert stream.
//
// Insights come from an ordered list of independent rules over a shared
// Facts struct. Rules are total: empty or malformed input means a rule does
// not fire, never that it errors. Evaluation order does not imply priority;
// every applicable rule fires.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"finboard/internal/aggregate"
	"finboard/internal/health"
	"finboard/internal/models"
)

// Thresholds are the tunable inputs to the rule set. The credit-limit
// stand-in and the monthly-expense estimate are known approximations used
// when the backend omits real data, not derived values.
type Thresholds struct {
	// DefaultCreditLimit substitutes for accounts that omit a credit limit.
	DefaultCreditLimit float64
	// MonthlyExpenseEstimate feeds the emergency-fund target.
	MonthlyExpenseEstimate float64
	// EmergencyFundMonths is the adequacy multiple (conventionally 6).
	EmergencyFundMonths float64
	// UtilizationWarning is the credit-utilization ratio above which the
	// high-utilization rule fires (conventionally 0.8).
	UtilizationWarning float64
}

// DefaultThresholds returns the stand-in values used when configuration
// provides none.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DefaultCreditLimit:     1000,
		MonthlyExpenseEstimate: 2000,
		EmergencyFundMonths:    6,
		UtilizationWarning:     0.8,
	}
}

// Facts is the aggregated state rules inspect. All fields may be zero-valued
// or nil; rules must tolerate that.
type Facts struct {
	Accounts   []models.Account
	Summary    aggregate.BalanceSummary
	Budgets    []models.BudgetLine
	Thresholds Thresholds
	Now        time.Time
}

// Rule pairs a name with a producer. Evaluate returns nil when the rule does
// not apply.
type Rule struct {
	Name     string
	Evaluate func(Facts) *models.Insight
}

// Generator evaluates an ordered rule list.
type Generator struct {
	rules []Rule
}

// NewGenerator creates a generator with the standard rule set.
func NewGenerator() *Generator {
	return &Generator{
		rules: []Rule{
			{Name: "stale_accounts", Evaluate: staleAccounts},
			{Name: "high_credit_utilization", Evaluate: highCreditUtilization},
			{Name: "positive_net_worth", Evaluate: positiveNetWorth},
			{Name: "emergency_fund", Evaluate: emergencyFund},
			{Name: "diversification", Evaluate: diversification},
		},
	}
}

// Generate runs every rule against the facts and collects the insights that
// fired. It never returns an error and never panics; a blank dashboard is
// worse than a missing insight.
func (g *Generator) Generate(f Facts) []models.Insight {
	insights := make([]models.Insight, 0, len(g.rules))
	for _, rule := range g.rules {
		if ins := g.evaluate(rule, f); ins != nil {
			if ins.ID == "" {
				ins.ID = uuid.NewString()
			}
			if ins.Kind == "" {
				ins.Kind = rule.Name
			}
			insights = append(insights, *ins)
		}
	}
	return insights
}

func (g *Generator) evaluate(rule Rule, f Facts) (ins *models.Insight) {
	defer func() {
		if r := recover(); r != nil {
			// A misbehaving rule must not blank the dashboard.
			ins = nil
		}
	}()
	return rule.Evaluate(f)
}

func staleAccounts(f Facts) *models.Insight {
	stale := 0
	for _, a := range f.Accounts {
		if health.Classify(a.LastUpdated, f.Now) != health.StatusHealthy {
			stale++
		}
	}
	if stale == 0 {
		return nil
	}

	msg := fmt.Sprintf("%d accounts have not updated in over a day.", stale)
	if stale == 1 {
		msg = "1 account has not updated in over a day."
	}
	return &models.Insight{
		Severity: models.SeverityWarning,
		Title:    "Accounts need a sync",
		Message:  msg,
		Action:   "sync",
	}
}

func highCreditUtilization(f Facts) *models.Insight {
	var worst *models.Account
	var worstRatio float64

	for i, a := range f.Accounts {
		if a.Type != models.AccountTypeCredit {
			continue
		}
		limit := a.CreditLimit
		if limit <= 0 {
			limit = f.Thresholds.DefaultCreditLimit
		}
		if limit <= 0 {
			continue
		}
		ratio := math.Abs(a.Balance) / limit
		if ratio > f.Thresholds.UtilizationWarning && ratio > worstRatio {
			worst = &f.Accounts[i]
			worstRatio = ratio
		}
	}
	if worst == nil {
		return nil
	}

	return &models.Insight{
		Severity: models.SeverityError,
		Title:    "High credit utilization",
		Message:  fmt.Sprintf("%s is at %.0f%% of its credit limit.", worst.Name, worstRatio*100),
		Amount:   math.Abs(worst.Balance),
	}
}

func positiveNetWorth(f Facts) *models.Insight {
	if f.Summary.Total <= 0 {
		return nil
	}
	return &models.Insight{
		Severity: models.SeveritySuccess,
		Title:    "Positive net worth",
		Message:  fmt.Sprintf("Your net worth is $%.2f. Keep it up.", f.Summary.Total),
		Amount:   f.Summary.Total,
	}
}

func emergencyFund(f Facts) *models.Insight {
	if len(f.Accounts) == 0 {
		return nil
	}
	if f.Thresholds.MonthlyExpenseEstimate <= 0 || f.Thresholds.EmergencyFundMonths <= 0 {
		return nil
	}
	target := f.Thresholds.MonthlyExpenseEstimate * f.Thresholds.EmergencyFundMonths
	if f.Summary.Savings >= target {
		return nil
	}
	return &models.Insight{
		Severity: models.SeverityInfo,
		Title:    "Build your emergency fund",
		Message: fmt.Sprintf("Aim for $%.0f in savings (%.0f months of expenses).",
			target, f.Thresholds.EmergencyFundMonths),
		Amount: target,
	}
}

func diversification(f Facts) *models.Insight {
	if len(f.Accounts) < 2 {
		return nil
	}
	first := f.Accounts[0].Type
	for _, a := range f.Accounts[1:] {
		if a.Type != first {
			return nil
		}
	}
	return &models.Insight{
		Severity: models.SeverityInfo,
		Title:    "Diversify your accounts",
		Message:  fmt.Sprintf("All %d of your accounts are %s accounts. Consider adding other account types.", len(f.Accounts), first),
	}
}
