package aggregate

import (
	"time"

	"finboard/internal/models"
)

// Point is one day in a time series of balances.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// NetWorthSeries reconstructs a daily net-worth series ending today by
// walking transactions backwards from the current signed total. An outflow
// recorded on day D means the balance before D was higher by that amount, so
// the value at any earlier day adds back all later signed amounts.
func NetWorthSeries(accounts []models.Account, txs []models.Transaction, days int, now time.Time) []Point {
	if days <= 0 {
		return nil
	}

	total := SummarizeBalances(accounts).Total
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	series := make([]Point, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, -(days - 1 - i))
		value := total
		for _, tx := range txs {
			if tx.Date.After(day.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
				value += amount(tx.Amount)
			}
		}
		series[i] = Point{Date: day, Value: value}
	}
	return series
}

// Forecast is one projected day of a cash-flow forecast.
type Forecast struct {
	Date            time.Time `json:"date"`
	Projected       float64   `json:"projected"`
	Confidence      float64   `json:"confidence"`
	ConfidenceLabel string    `json:"confidenceLabel"`
}

// ConfidenceLabel tiers a numeric confidence input. This is a threshold
// label, not a statistical model.
func ConfidenceLabel(c float64) string {
	switch {
	case c >= 0.8:
		return "high"
	case c >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// forecastLookback is the trailing window used to estimate daily net flow.
const forecastLookback = 30

// ProjectCashFlow projects the signed total balance forward at the average
// daily net flow of the trailing thirty days. Confidence decays linearly
// with the projection horizon.
func ProjectCashFlow(accounts []models.Account, txs []models.Transaction, days int, now time.Time) []Forecast {
	if days <= 0 {
		return nil
	}

	total := SummarizeBalances(accounts).Total
	from := now.AddDate(0, 0, -forecastLookback)

	var netOut float64
	for _, tx := range txs {
		if tx.InWindow(from, now) {
			netOut += amount(tx.Amount)
		}
	}
	dailyFlow := -netOut / forecastLookback // positive amounts are outflows

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]Forecast, days)
	for i := 0; i < days; i++ {
		confidence := 0.95 - 0.02*float64(i)
		if confidence < 0.2 {
			confidence = 0.2
		}
		out[i] = Forecast{
			Date:            today.AddDate(0, 0, i+1),
			Projected:       total + dailyFlow*float64(i+1),
			Confidence:      confidence,
			ConfidenceLabel: ConfidenceLabel(confidence),
		}
	}
	return out
}
