package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/models"
)

func TestNetWorthSeries(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	accounts := []models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 1000},
	}
	// An outflow of 200 on June 9: balance on June 8 and earlier was 1200.
	txs := []models.Transaction{
		{Amount: 200, Date: time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)},
	}

	series := NetWorthSeries(accounts, txs, 3, now)
	require.Len(t, series, 3)

	assert.Equal(t, 1200.0, series[0].Value) // June 8
	assert.Equal(t, 1000.0, series[1].Value) // June 9, tx already applied
	assert.Equal(t, 1000.0, series[2].Value) // June 10
	assert.True(t, series[2].Date.After(series[0].Date), "series is ordered ascending")
}

func TestNetWorthSeriesEmptyInputs(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, NetWorthSeries(nil, nil, 0, now))

	series := NetWorthSeries(nil, nil, 5, now)
	require.Len(t, series, 5)
	for _, p := range series {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.95, "high"},
		{0.8, "high"},
		{0.79, "medium"},
		{0.6, "medium"},
		{0.59, "low"},
		{0, "low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceLabel(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestProjectCashFlow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	accounts := []models.Account{
		{Name: "Checking", Type: models.AccountTypeDepository, Balance: 3000},
	}
	// 300 of net outflow over the trailing 30 days: 10/day burn.
	txs := []models.Transaction{
		{Amount: 300, Date: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)},
	}

	forecast := ProjectCashFlow(accounts, txs, 10, now)
	require.Len(t, forecast, 10)

	assert.InDelta(t, 2990.0, forecast[0].Projected, 1e-9)
	assert.InDelta(t, 2900.0, forecast[9].Projected, 1e-9)
	assert.Equal(t, "high", forecast[0].ConfidenceLabel)
	for i := 1; i < len(forecast); i++ {
		assert.LessOrEqual(t, forecast[i].Confidence, forecast[i-1].Confidence)
	}
}
