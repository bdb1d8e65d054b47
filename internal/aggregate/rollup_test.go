package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC)
}

func TestGroupByCategory(t *testing.T) {
	txs := []models.Transaction{
		{Category: "Food", Amount: 60, Date: day(2)},
		{Category: "Food", Amount: 40, Date: day(5)},
		{Category: "Transport", Amount: 80, Date: day(3)},
		{Category: "", Amount: 20, Date: day(4)},
		{Category: "Food", Amount: 999, Date: day(25)}, // outside window
	}

	groups := GroupByCategory(txs, day(1), day(10))
	require.Len(t, groups, 3)

	assert.Equal(t, "Food", groups[0].Key)
	assert.Equal(t, 100.0, groups[0].Amount)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, 50.0, groups[0].Percent, 1e-9)

	assert.Equal(t, "Transport", groups[1].Key)
	assert.InDelta(t, 40.0, groups[1].Percent, 1e-9)

	assert.Equal(t, "Uncategorized", groups[2].Key)
}

func TestGroupByMerchantFallsBackToName(t *testing.T) {
	txs := []models.Transaction{
		{Merchant: "Acme Grocers", Name: "ACME 0042", Amount: 30, Date: day(2)},
		{Merchant: "", Name: "Corner Cafe", Amount: 10, Date: day(2)},
	}

	groups := GroupByMerchant(txs, day(1), day(10))
	require.Len(t, groups, 2)
	assert.Equal(t, "Acme Grocers", groups[0].Key)
	assert.Equal(t, "Corner Cafe", groups[1].Key)
}

func TestGroupByZeroWindowTotal(t *testing.T) {
	txs := []models.Transaction{
		{Category: "Food", Amount: 50, Date: day(2)},
		{Category: "Refunds", Amount: -50, Date: day(3)},
	}

	groups := GroupByCategory(txs, day(1), day(10))
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, 0.0, g.Percent, "zero window total leaves percents at 0")
	}
}

func TestRecomputeBudgets(t *testing.T) {
	start, end := CurrentBudgetPeriod(day(15))
	lines := []models.BudgetLine{
		{Category: "Food", Budgeted: 200, Spent: 9999, Remaining: -1, Percentage: -1},
		{Category: "Travel", Budgeted: 0, Spent: 12},
	}
	txs := []models.Transaction{
		{Category: "food", Amount: 50, Date: day(3)}, // category match is case-insensitive
		{Category: "Food", Amount: 30, Date: day(10)},
		{Category: "Food", Amount: -10, Date: day(11)}, // refund reduces spend
		{Category: "Food", Amount: 500, Date: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
		{Category: "Travel", Amount: 12, Date: day(4)},
	}

	out := RecomputeBudgets(lines, txs, start, end)
	require.Len(t, out, 2)

	food := out[0]
	assert.Equal(t, 70.0, food.Spent, "stored spent is never trusted")
	assert.Equal(t, 130.0, food.Remaining)
	assert.InDelta(t, 35.0, food.Percentage, 1e-9)

	travel := out[1]
	assert.Equal(t, 12.0, travel.Spent)
	assert.Equal(t, -12.0, travel.Remaining)
	assert.Equal(t, 0.0, travel.Percentage, "zero budget yields 0 percent, not a division error")
}

func TestRecomputeBudgetsNonFiniteBudget(t *testing.T) {
	start, end := CurrentBudgetPeriod(day(15))
	lines := []models.BudgetLine{
		{Category: "Food", Budgeted: math.NaN()},
		{Category: "Travel", Budgeted: math.Inf(1)},
	}
	txs := []models.Transaction{
		{Category: "Food", Amount: 40, Date: day(3)},
		{Category: "Travel", Amount: 25, Date: day(4)},
	}

	for _, line := range RecomputeBudgets(lines, txs, start, end) {
		assert.False(t, math.IsNaN(line.Remaining) || math.IsInf(line.Remaining, 0))
		assert.Equal(t, 0.0, line.Percentage, "a non-finite budget coerces to 0, not NaN percent")
	}
}

// remaining and percentage must always be consistent with the recomputed
// spent value, for any regenerated rollup.
func TestRecomputeBudgetsIdentities(t *testing.T) {
	start, end := CurrentBudgetPeriod(day(15))
	lines := []models.BudgetLine{
		{Category: "A", Budgeted: 100},
		{Category: "B", Budgeted: 55.5},
		{Category: "C", Budgeted: 0},
	}
	txs := []models.Transaction{
		{Category: "A", Amount: 33.3, Date: day(1)},
		{Category: "B", Amount: 60, Date: day(20)},
		{Category: "C", Amount: 5, Date: day(9)},
	}

	for _, line := range RecomputeBudgets(lines, txs, start, end) {
		assert.InDelta(t, line.Budgeted-line.Spent, line.Remaining, 1e-9)
		if line.Budgeted == 0 {
			assert.Equal(t, 0.0, line.Percentage)
		} else {
			assert.InDelta(t, line.Spent/line.Budgeted*100, line.Percentage, 1e-9)
		}
	}
}
