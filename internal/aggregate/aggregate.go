// Package aggregate derives dashboard metrics from raw account, transaction
// and budget collections. Every function here is a pure transform: no I/O,
// no panics, and missing or non-finite numeric inputs coerce to zero at the
// boundary rather than propagating.
package aggregate

import (
	"fmt"
	"math"

	"finboard/internal/models"
)

// amount sanitizes a numeric field from the backend. NaN and infinities are
// treated as absent and coerced to 0.
func amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// BalanceSummary holds signed and display balances partitioned by account
// type. Total is the signed sum across all accounts (net worth); Credit and
// Loan are absolute values for display while their true negative sign still
// flows into Total.
type BalanceSummary struct {
	Total      float64 `json:"total"`
	Checking   float64 `json:"checking"`
	Savings    float64 `json:"savings"`
	Credit     float64 `json:"credit"`
	Investment float64 `json:"investment"`
	Loan       float64 `json:"loan"`
	Other      float64 `json:"other"`
}

// SummarizeBalances partitions account balances by type. Depository accounts
// split into checking and savings on the account name; unmatched depository
// accounts count as checking.
func SummarizeBalances(accounts []models.Account) BalanceSummary {
	var s BalanceSummary
	for _, a := range accounts {
		bal := amount(a.Balance)
		s.Total += bal

		switch a.Type {
		case models.AccountTypeDepository:
			if a.IsSavings() {
				s.Savings += bal
			} else {
				s.Checking += bal
			}
		case models.AccountTypeCredit:
			s.Credit += math.Abs(bal)
		case models.AccountTypeInvestment:
			s.Investment += bal
		case models.AccountTypeLoan:
			s.Loan += math.Abs(bal)
		default:
			s.Other += bal
		}
	}
	return s
}

// Change is a period-over-period comparison. When New is true the previous
// value was zero and Percent carries no meaning.
type Change struct {
	Percent  float64 `json:"percent"`
	New      bool    `json:"new"`
	Positive bool    `json:"positive"`
}

// PercentChange compares a current value against a previous-period value.
// The three zero cases are defined exactly: both zero is a neutral 0%,
// previous zero with a nonzero current is "New", and a current of zero
// against a nonzero previous is -100%.
func PercentChange(current, previous float64) Change {
	current, previous = amount(current), amount(previous)

	switch {
	case previous == 0 && current == 0:
		return Change{}
	case previous == 0:
		return Change{New: true, Positive: current > 0}
	case current == 0:
		return Change{Percent: -100}
	}

	pct := (current - previous) / math.Abs(previous) * 100
	return Change{Percent: pct, Positive: pct > 0}
}

// Label renders the change for display: "New", "0%", or a signed percentage.
func (c Change) Label() string {
	if c.New {
		return "New"
	}
	if c.Percent == 0 {
		return "0%"
	}
	return fmt.Sprintf("%+.1f%%", c.Percent)
}
