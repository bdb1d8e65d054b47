package aggregate

import (
	"sort"
	"strings"
	"time"

	"finboard/internal/models"
)

// GroupTotal is one bucket of a category or merchant rollup.
type GroupTotal struct {
	Key     string  `json:"key"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
	Count   int     `json:"count"`
}

// GroupByCategory rolls up signed transaction amounts by category within a
// date window, sorted descending by amount. Each bucket's Percent is its
// share of the window total (0 when the window total is 0).
func GroupByCategory(txs []models.Transaction, from, to time.Time) []GroupTotal {
	return groupBy(txs, from, to, func(t models.Transaction) string {
		if t.Category == "" {
			return "Uncategorized"
		}
		return t.Category
	})
}

// GroupByMerchant rolls up signed transaction amounts by merchant within a
// date window. Transactions without a merchant fall back to the display name.
func GroupByMerchant(txs []models.Transaction, from, to time.Time) []GroupTotal {
	return groupBy(txs, from, to, func(t models.Transaction) string {
		if t.Merchant != "" {
			return t.Merchant
		}
		return t.Name
	})
}

func groupBy(txs []models.Transaction, from, to time.Time, key func(models.Transaction) string) []GroupTotal {
	sums := make(map[string]*GroupTotal)
	var total float64

	for _, tx := range txs {
		if !tx.InWindow(from, to) {
			continue
		}
		amt := amount(tx.Amount)
		k := key(tx)
		g, ok := sums[k]
		if !ok {
			g = &GroupTotal{Key: k}
			sums[k] = g
		}
		g.Amount += amt
		g.Count++
		total += amt
	}

	groups := make([]GroupTotal, 0, len(sums))
	for _, g := range sums {
		if total != 0 {
			g.Percent = g.Amount / total * 100
		}
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Amount != groups[j].Amount {
			return groups[i].Amount > groups[j].Amount
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// RecomputeBudgets rebuilds Spent, Remaining and Percentage for each budget
// line from raw transactions in the current period. Stored spent values are
// never trusted; refunds (negative amounts) reduce the recomputed spend.
func RecomputeBudgets(lines []models.BudgetLine, txs []models.Transaction, periodStart, periodEnd time.Time) []models.BudgetLine {
	out := make([]models.BudgetLine, len(lines))
	for i, line := range lines {
		var spent float64
		for _, tx := range txs {
			if !tx.InWindow(periodStart, periodEnd) {
				continue
			}
			if !strings.EqualFold(tx.Category, line.Category) {
				continue
			}
			spent += amount(tx.Amount)
		}

		budgeted := amount(line.Budgeted)
		line.Spent = spent
		line.Remaining = budgeted - spent
		if budgeted != 0 {
			line.Percentage = spent / budgeted * 100
		} else {
			line.Percentage = 0
		}
		out[i] = line
	}
	return out
}

// CurrentBudgetPeriod returns the first and last instant of now's calendar
// month, the period budget rollups are computed over.
func CurrentBudgetPeriod(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
