package models

import "time"

// Severity grades alerts and insights for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Alert kinds sourced from the backend alert stream.
const (
	AlertLargeTransaction = "large_transaction"
	AlertLowBalance       = "low_balance"
	AlertRecurringPayment = "recurring_payment"
	AlertBudgetExceeded   = "budget_exceeded"
)

// Alert is a backend-sourced notification with persisted read state. The
// read flag is the only piece of alert state the client mutates, and only
// through the mark-as-read relay.
type Alert struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Amount   float64   `json:"amount,omitempty"`
	Date     time.Time `json:"date"`
	Read     bool      `json:"read"`
}

// Insight is a derived, non-persistent observation about financial state.
// Insights are recomputed on every data load and never stored.
type Insight struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Amount   float64  `json:"amount,omitempty"`
	Action   string   `json:"action,omitempty"`
}
