package gateway

import (
	"context"
	"encoding/json"

	"finboard/internal/models"
)

// ClientInterface defines the operations the dashboard core needs from the
// aggregation backend. The backend is a black box; only these request and
// response shapes matter.
type ClientInterface interface {
	GetAccounts(ctx context.Context) ([]models.Account, error)
	GetTransactions(ctx context.Context, q TransactionQuery) (*TransactionPage, error)
	GetConnectedBanks(ctx context.Context) ([]models.Bank, error)
	HealthCheck(ctx context.Context) (*models.BankHealth, error)

	TriggerSync(ctx context.Context) error
	TriggerInvestmentSync(ctx context.Context) error
	GetSyncStatus(ctx context.Context) (*models.SyncStatus, error)

	CreateLinkToken(ctx context.Context) (json.RawMessage, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (json.RawMessage, error)
	RemoveBank(ctx context.Context, bankID string) error

	GetBudget(ctx context.Context) ([]models.BudgetLine, error)
	UpdateBudget(ctx context.Context, lines []models.BudgetLine) error
	CreateSavingsGoal(ctx context.Context, goal models.SavingsGoal) (*models.SavingsGoal, error)

	ListAlerts(ctx context.Context) ([]models.Alert, error)
	MarkAlertRead(ctx context.Context, alertID string) error
}
