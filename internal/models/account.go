package models

import (
	"strings"
	"time"
)

// AccountType classifies an account as reported by the aggregation backend.
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// IsDebt reports whether balances of this type represent money owed.
// Debt-bearing accounts carry negative balances and subtract from net worth.
func (t AccountType) IsDebt() bool {
	return t == AccountTypeCredit || t == AccountTypeLoan
}

// Account represents a linked financial account. Balance follows the backend
// sign convention: depository/investment balances are positive, credit/loan
// balances are negative-as-debt.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Balance     float64     `json:"balance"`
	CreditLimit float64     `json:"creditLimit,omitempty"`
	BankName    string      `json:"bankName,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// IsSavings reports whether a depository account should be bucketed as
// savings. The backend does not expose a subtype, so the split is a
// case-insensitive substring match on the account name; unmatched depository
// accounts default to checking.
func (a Account) IsSavings() bool {
	if a.Type != AccountTypeDepository {
		return false
	}
	return strings.Contains(strings.ToLower(a.Name), "saving")
}
