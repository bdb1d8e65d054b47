// Package gateway implements the HTTP client for the banking-aggregation
// backend. All dashboard data flows through this client; nothing else in the
// repo performs network I/O.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/models"
)

const (
	defaultTimeout = 30 * time.Second

	accountsPath     = "/api/accounts"
	transactionsPath = "/api/transactions"
	banksPath        = "/api/transactions/connected_banks"
	healthCheckPath  = "/api/transactions/health_check"
	syncPath         = "/api/transactions/sync"
	syncStatusPath   = "/api/transactions/sync/status"
	investmentsPath  = "/api/investments/sync"
	linkTokenPath    = "/api/link/token/create"
	exchangePath     = "/api/token/exchange"
	removeBankPath   = "/api/transactions/banks/"
	budgetPath       = "/api/budget"
	goalsPath        = "/api/savings-goals"
	alertsPath       = "/api/alerts"
)

// ErrSyncRejected is returned when the backend declines a sync trigger
// (success=false). The visible sync state must not advance in that case.
var ErrSyncRejected = errors.New("sync request rejected by backend")

// Client handles communication with the aggregation backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new backend client. apiKey may be empty when the
// backend does not require authentication (local development).
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// ErrorResponse represents an error response from the backend.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do executes a JSON request against the backend and decodes the response
// body into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err != nil {
			return fmt.Errorf("backend request failed with status %d: %s", resp.StatusCode, string(raw))
		}
		return fmt.Errorf("backend error (status %d): %s - %s", resp.StatusCode, errResp.Error, errResp.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// GetAccounts fetches all linked accounts.
func (c *Client) GetAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.do(ctx, http.MethodGet, accountsPath, nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// TransactionQuery carries the filter, sort and paging parameters for the
// transactions endpoint. Zero values are omitted from the query string.
type TransactionQuery struct {
	Range      string
	Categories []string
	Accounts   []string
	Search     string
	MinAmount  *float64
	MaxAmount  *float64
	SortField  string
	SortDir    string
	Page       int
	Limit      int
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	if q.Range != "" {
		v.Set("range", q.Range)
	}
	if len(q.Categories) > 0 {
		v.Set("categories", strings.Join(q.Categories, ","))
	}
	if len(q.Accounts) > 0 {
		v.Set("accounts", strings.Join(q.Accounts, ","))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinAmount != nil {
		v.Set("minAmount", strconv.FormatFloat(*q.MinAmount, 'f', -1, 64))
	}
	if q.MaxAmount != nil {
		v.Set("maxAmount", strconv.FormatFloat(*q.MaxAmount, 'f', -1, 64))
	}
	if q.SortField != "" {
		v.Set("sortField", q.SortField)
	}
	if q.SortDir != "" {
		v.Set("sortDirection", q.SortDir)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// TransactionPage is one page of transaction results.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

// GetTransactions fetches transactions matching the query.
func (c *Client) GetTransactions(ctx context.Context, q TransactionQuery) (*TransactionPage, error) {
	var page TransactionPage
	if err := c.do(ctx, http.MethodGet, transactionsPath, q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetConnectedBanks fetches the list of connected institutions.
func (c *Client) GetConnectedBanks(ctx context.Context) ([]models.Bank, error) {
	var resp struct {
		Banks []models.Bank `json:"banks"`
	}
	if err := c.do(ctx, http.MethodGet, banksPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Banks, nil
}

// HealthCheck fetches per-connection health from the backend.
func (c *Client) HealthCheck(ctx context.Context) (*models.BankHealth, error) {
	var health models.BankHealth
	if err := c.do(ctx, http.MethodGet, healthCheckPath, nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

type syncResponse struct {
	Success bool `json:"success"`
}

// TriggerSync asks the backend to start a full bank-data sync. The sync
// itself runs asynchronously on the backend; a nil return only means the
// request was accepted.
func (c *Client) TriggerSync(ctx context.Context) error {
	var resp syncResponse
	if err := c.do(ctx, http.MethodPost, syncPath, nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return ErrSyncRejected
	}
	return nil
}

// TriggerInvestmentSync asks the backend to refresh investment holdings only.
func (c *Client) TriggerInvestmentSync(ctx context.Context) error {
	var resp syncResponse
	if err := c.do(ctx, http.MethodPost, investmentsPath, nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return ErrSyncRejected
	}
	return nil
}

// GetSyncStatus fetches the backend's current sync status.
func (c *Client) GetSyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	var status models.SyncStatus
	if err := c.do(ctx, http.MethodGet, syncStatusPath, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CreateLinkToken relays the bank-link handshake start. The token payload is
// opaque to the core and passed through unchanged.
func (c *Client) CreateLinkToken(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, linkTokenPath, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ExchangePublicToken relays the public-token exchange step of the handshake.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (json.RawMessage, error) {
	in := map[string]string{"public_token": publicToken}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, exchangePath, nil, in, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RemoveBank disconnects an institution.
func (c *Client) RemoveBank(ctx context.Context, bankID string) error {
	var resp syncResponse
	if err := c.do(ctx, http.MethodDelete, removeBankPath+url.PathEscape(bankID), nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("backend refused to remove bank %s", bankID)
	}
	return nil
}

// GetBudget fetches the current budget lines.
func (c *Client) GetBudget(ctx context.Context) ([]models.BudgetLine, error) {
	var lines []models.BudgetLine
	if err := c.do(ctx, http.MethodGet, budgetPath, nil, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateBudget replaces the budget lines on the backend.
func (c *Client) UpdateBudget(ctx context.Context, lines []models.BudgetLine) error {
	return c.do(ctx, http.MethodPut, budgetPath, nil, lines, nil)
}

// CreateSavingsGoal creates a savings goal and returns the stored copy.
func (c *Client) CreateSavingsGoal(ctx context.Context, goal models.SavingsGoal) (*models.SavingsGoal, error) {
	var created models.SavingsGoal
	if err := c.do(ctx, http.MethodPost, goalsPath, nil, goal, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListAlerts fetches the backend-sourced alert stream.
func (c *Client) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := c.do(ctx, http.MethodGet, alertsPath, nil, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// MarkAlertRead relays the read flag for one alert to the backend.
func (c *Client) MarkAlertRead(ctx context.Context, alertID string) error {
	return c.do(ctx, http.MethodPatch, alertsPath+"/"+url.PathEscape(alertID)+"/read", nil, nil, nil)
}
