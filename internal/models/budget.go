package models

import "time"

// BudgetLine is a user-authored budget for a single category within the
// current budget period. Spent, Remaining and Percentage are derived values;
// stored copies coming back from the backend are treated as stale and
// recomputed from raw transactions before display.
type BudgetLine struct {
	Category   string  `json:"category"`
	Budgeted   float64 `json:"budgeted"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// SavingsGoal is a user-authored savings target.
type SavingsGoal struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetDate    time.Time `json:"targetDate"`
	Category      string    `json:"category,omitempty"`
}

// Progress returns the raw completion percentage, uncapped so that callers
// can detect exceeded goals.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

// DisplayProgress returns the completion percentage capped at 100 for
// rendering.
func (g SavingsGoal) DisplayProgress() float64 {
	p := g.Progress()
	if p > 100 {
		return 100
	}
	return p
}
