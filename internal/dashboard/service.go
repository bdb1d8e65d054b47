// Package dashboard runs the load pipeline that turns raw backend
// collections into the derived data the dashboard renders, and exposes it
// over HTTP.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"

	"finboard/internal/aggregate"
	"finboard/internal/gateway"
	"finboard/internal/health"
	"finboard/internal/insight"
	"finboard/internal/models"
)

const snapshotCacheKey = "dashboard:snapshot"

// Backend is the slice of the gateway the load pipeline reads from.
type Backend interface {
	GetAccounts(ctx context.Context) ([]models.Account, error)
	GetTransactions(ctx context.Context, q gateway.TransactionQuery) (*gateway.TransactionPage, error)
	GetBudget(ctx context.Context) ([]models.BudgetLine, error)
}

// Options tunes the load pipeline.
type Options struct {
	CacheTTL            time.Duration
	TransactionWindow   time.Duration
	NetWorthSeriesDays  int
	CashFlowHorizonDays int
	Thresholds          insight.Thresholds
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Minute
	}
	if o.TransactionWindow <= 0 {
		o.TransactionWindow = 90 * 24 * time.Hour
	}
	if o.NetWorthSeriesDays <= 0 {
		o.NetWorthSeriesDays = 30
	}
	if o.CashFlowHorizonDays <= 0 {
		o.CashFlowHorizonDays = 14
	}
	zero := insight.Thresholds{}
	if o.Thresholds == zero {
		o.Thresholds = insight.DefaultThresholds()
	}
	return o
}

// AccountView decorates an account with its derived health state.
type AccountView struct {
	models.Account
	Health      health.Status `json:"health"`
	HealthLabel string        `json:"healthLabel"`
	UpdatedAgo  string        `json:"updatedAgo"`
}

// Snapshot is one fully derived dashboard payload.
type Snapshot struct {
	Accounts      []AccountView            `json:"accounts"`
	Summary       aggregate.BalanceSummary `json:"summary"`
	TopCategories []aggregate.GroupTotal   `json:"topCategories"`
	TopMerchants  []aggregate.GroupTotal   `json:"topMerchants"`
	Budgets       []models.BudgetLine      `json:"budgets"`
	NetWorth      []aggregate.Point        `json:"netWorth"`
	CashFlow      []aggregate.Forecast     `json:"cashFlow"`
	Insights      []models.Insight         `json:"insights"`
	GeneratedAt   time.Time                `json:"generatedAt"`
}

// Service executes the load pipeline: gateway fetch, aggregation and health
// classification, then insight generation. Snapshots are cached briefly so
// dashboard navigation does not hammer the backend.
type Service struct {
	backend  Backend
	insights *insight.Generator
	opts     Options
	cache    *ristretto.Cache
	now      func() time.Time
}

// NewService creates a dashboard service.
func NewService(backend Backend, opts Options) (*Service, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot cache: %w", err)
	}

	return &Service{
		backend:  backend,
		insights: insight.NewGenerator(),
		opts:     opts.withDefaults(),
		cache:    cache,
		now:      time.Now,
	}, nil
}

// Load returns a derived dashboard snapshot, from cache when fresh.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		if snap, ok := cached.(*Snapshot); ok {
			return snap, nil
		}
	}

	snap, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(snapshotCacheKey, snap, 1, s.opts.CacheTTL)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next load rebuilds it. Called
// when a sync completes or user-authored data changes.
func (s *Service) Invalidate() {
	s.cache.Del(snapshotCacheKey)
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	now := s.now()

	accounts, err := s.backend.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	windowDays := int(s.opts.TransactionWindow.Hours() / 24)
	page, err := s.backend.GetTransactions(ctx, gateway.TransactionQuery{
		Range: fmt.Sprintf("%dd", windowDays),
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	txs := page.Transactions

	// A budget fetch failure degrades that panel instead of blanking the
	// whole dashboard.
	budgets, err := s.backend.GetBudget(ctx)
	if err != nil {
		log.Printf("Dashboard: failed to load budgets: %v", err)
		budgets = nil
	}

	summary := aggregate.SummarizeBalances(accounts)

	views := make([]AccountView, len(accounts))
	for i, a := range accounts {
		status := health.Classify(a.LastUpdated, now)
		views[i] = AccountView{
			Account:     a,
			Health:      status,
			HealthLabel: health.Describe(status),
			UpdatedAgo:  health.RelativeTime(a.LastUpdated, now),
		}
	}

	monthAgo := now.AddDate(0, -1, 0)
	periodStart, periodEnd := aggregate.CurrentBudgetPeriod(now)

	snap := &Snapshot{
		Accounts:      views,
		Summary:       summary,
		TopCategories: aggregate.GroupByCategory(txs, monthAgo, now),
		TopMerchants:  aggregate.GroupByMerchant(txs, monthAgo, now),
		Budgets:       aggregate.RecomputeBudgets(budgets, txs, periodStart, periodEnd),
		NetWorth:      aggregate.NetWorthSeries(accounts, txs, s.opts.NetWorthSeriesDays, now),
		CashFlow:      aggregate.ProjectCashFlow(accounts, txs, s.opts.CashFlowHorizonDays, now),
		Insights: s.insights.Generate(insight.Facts{
			Accounts:   accounts,
			Summary:    summary,
			Budgets:    budgets,
			Thresholds: s.opts.Thresholds,
			Now:        now,
		}),
		GeneratedAt: now,
	}
	return snap, nil
}
