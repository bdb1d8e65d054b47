package models

import "time"

// Transaction represents a single transaction from the aggregation backend.
//
// Amount sign convention is inverted relative to plain bookkeeping: positive
// amounts are outflows (spending), negative amounts are inflows (income).
// Every aggregation formula in this repo assumes this convention.
type Transaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Merchant  string    `json:"merchantName,omitempty"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Pending   bool      `json:"pending"`
}

// IsSpending reports whether the transaction is an outflow.
func (t Transaction) IsSpending() bool {
	return t.Amount > 0
}

// InWindow reports whether the transaction date falls in [from, to].
func (t Transaction) InWindow(from, to time.Time) bool {
	return !t.Date.Before(from) && !t.Date.After(to)
}
