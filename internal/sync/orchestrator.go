// Package sync owns the bank-data sync lifecycle: manual triggers, periodic
// auto-sync, and the safeguards that keep the dashboard's busy indicator
// honest when the backend misbehaves.
package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"finboard/internal/models"
)

var (
	syncTracer      = otel.Tracer("finboard/sync")
	syncMeter       = otel.Meter("finboard/sync")
	syncDuration, _ = syncMeter.Float64Histogram("sync.trigger.duration", metric.WithDescription("Sync trigger duration in seconds"), metric.WithUnit("s"))
	syncTotal, _    = syncMeter.Int64Counter("sync.trigger.total", metric.WithDescription("Total sync triggers by status"))
	syncForced, _   = syncMeter.Int64Counter("sync.forced_reset.total", metric.WithDescription("Visible sync states forcibly reset by the timeout safeguard"))
)

// State is the visible sync state shown to the dashboard.
type State string

const (
	StateIdle      State = "idle"
	StateSyncing   State = "syncing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Result is the outcome banner of the most recent trigger. It is cleared a
// fixed delay after it is set.
type Result struct {
	State   State     `json:"state"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Backend is the slice of the gateway the orchestrator depends on.
type Backend interface {
	TriggerSync(ctx context.Context) error
	TriggerInvestmentSync(ctx context.Context) error
	GetSyncStatus(ctx context.Context) (*models.SyncStatus, error)
}

// Options configures the orchestrator's timers. Zero values take defaults.
type Options struct {
	// AutoSyncInterval is the period of unattended full syncs.
	AutoSyncInterval time.Duration
	// VisibleTimeout bounds how long the Syncing state may persist. When it
	// elapses the visible state resets to Idle; the outbound request is NOT
	// cancelled, only its outcome stops being trusted.
	VisibleTimeout time.Duration
	// SettleDelay is how long after an accepted sync to refresh status a
	// second time, catching eventual server-side completion.
	SettleDelay time.Duration
	// ResultTTL is how long the outcome banner stays before clearing.
	ResultTTL time.Duration
	// OnComplete, when set, is notified after every accepted sync so the
	// dashboard can re-run its load pipeline.
	OnComplete func()
}

const (
	defaultAutoSyncInterval = 30 * time.Minute
	defaultVisibleTimeout   = 8 * time.Second
	defaultSettleDelay      = 5 * time.Second
	defaultResultTTL        = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.AutoSyncInterval <= 0 {
		o.AutoSyncInterval = defaultAutoSyncInterval
	}
	if o.VisibleTimeout <= 0 {
		o.VisibleTimeout = defaultVisibleTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = defaultResultTTL
	}
	return o
}

// Orchestrator drives the sync state machine:
//
//	Idle -> Syncing -> (Completed | Failed) -> Idle
//
// Concurrent triggers are allowed to race; the backend de-duplicates
// overlapping syncs. The orchestrator's only correctness obligation is that
// the visible Syncing state resolves within VisibleTimeout regardless of
// backend behavior.
type Orchestrator struct {
	backend Backend
	opts    Options

	mu         sync.Mutex
	state      State
	status     models.SyncStatus
	lastResult *Result
	generation uint64 // invalidates timer callbacks from superseded triggers

	timeoutTimer *time.Timer
	settleTimer  *time.Timer
	clearTimer   *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an orchestrator. Call Start to begin auto-sync and Close to
// tear it down.
func New(backend Backend, opts Options) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		backend: backend,
		opts:    opts.withDefaults(),
		state:   StateIdle,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start fetches the initial status and launches the auto-sync loop. The
// interval timer and the per-trigger timeout safeguard are independent,
// separately cancelled timers.
func (o *Orchestrator) Start() {
	o.RefreshStatus(o.ctx)

	o.wg.Add(1)
	go o.autoSyncLoop()
}

// autoSyncLoop re-triggers a full sync on a fixed interval until Close.
// Each tick is independently guarded: a failing tick is logged and the loop
// keeps running.
func (o *Orchestrator) autoSyncLoop() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.AutoSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
			if err := o.TriggerSync(o.ctx, false); err != nil {
				log.Printf("Sync: auto-sync tick failed: %v", err)
			}
		}
	}
}

// TriggerSync requests a sync from the backend. With investmentOnly it
// requests an investment-only refresh; otherwise a full sync, and once the
// full sync is accepted a secondary investment refresh fires as an
// independent, non-blocking side effect whose failure cannot affect the
// reported outcome.
//
// On acceptance the status is refreshed immediately (optimistic completion),
// the OnComplete callback is notified, and one more status refresh is
// scheduled after SettleDelay. On rejection a user-facing error is returned
// and the stored status stays untouched.
func (o *Orchestrator) TriggerSync(ctx context.Context, investmentOnly bool) error {
	gen := o.beginSync()

	ctx, span := syncTracer.Start(ctx, "sync.trigger",
		trace.WithAttributes(attribute.Bool("sync.investment_only", investmentOnly)),
	)
	defer span.End()
	start := time.Now()

	var err error
	if investmentOnly {
		err = o.backend.TriggerInvestmentSync(ctx)
	} else {
		err = o.backend.TriggerSync(ctx)
	}
	syncDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		syncTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "rejected")))
		o.failSync(gen, err)
		return err
	}
	syncTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "accepted")))

	if !investmentOnly {
		// Fire-and-forget: gated on the full sync's acceptance, unordered
		// relative to everything else.
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := o.backend.TriggerInvestmentSync(o.ctx); err != nil {
				log.Printf("Sync: secondary investment sync failed: %v", err)
			}
		}()
	}

	o.RefreshStatus(ctx)
	o.completeSync(gen)

	if o.opts.OnComplete != nil {
		o.opts.OnComplete()
	}
	return nil
}

// beginSync moves the visible state to Syncing and arms the timeout
// safeguard for this trigger generation.
func (o *Orchestrator) beginSync() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateSyncing
	o.generation++
	gen := o.generation

	stopTimer(o.timeoutTimer)
	o.timeoutTimer = time.AfterFunc(o.opts.VisibleTimeout, func() {
		o.forceIdle(gen)
	})
	return gen
}

// forceIdle is the timeout safeguard: if this trigger's Syncing state is
// still visible when the timer fires, reset it so the busy indicator never
// sticks. The outbound request keeps running; only the visible state resets.
func (o *Orchestrator) forceIdle(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen || o.state != StateSyncing {
		return
	}
	o.state = StateIdle
	o.generation++ // stop trusting the outcome of the in-flight request
	syncForced.Add(context.Background(), 1)
	log.Printf("Sync: visible state timed out after %v, forcing idle", o.opts.VisibleTimeout)
}

func (o *Orchestrator) completeSync(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen {
		return
	}
	stopTimer(o.timeoutTimer)
	o.state = StateCompleted
	o.lastResult = &Result{State: StateCompleted, Message: "Sync started", At: time.Now()}
	o.armResultTimersLocked(gen)
}

func (o *Orchestrator) failSync(gen uint64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != gen {
		return
	}
	stopTimer(o.timeoutTimer)
	o.state = StateFailed
	o.lastResult = &Result{State: StateFailed, Message: userMessage(err), At: time.Now()}
	o.armResultTimersLocked(gen)
}

// armResultTimersLocked schedules the banner clear and the deferred status
// refresh for a finished trigger. Caller must hold o.mu.
func (o *Orchestrator) armResultTimersLocked(gen uint64) {
	stopTimer(o.clearTimer)
	o.clearTimer = time.AfterFunc(o.opts.ResultTTL, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation != gen {
			return
		}
		o.lastResult = nil
		if o.state == StateCompleted || o.state == StateFailed {
			o.state = StateIdle
		}
	})

	stopTimer(o.settleTimer)
	o.settleTimer = time.AfterFunc(o.opts.SettleDelay, func() {
		select {
		case <-o.ctx.Done():
		default:
			o.RefreshStatus(o.ctx)
		}
	})
}

// RefreshStatus polls the backend's sync status. Failures are logged and
// swallowed; the stored status simply stays stale until the next attempt.
func (o *Orchestrator) RefreshStatus(ctx context.Context) {
	status, err := o.backend.GetSyncStatus(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Sync: status poll failed: %v", err)
		}
		return
	}
	o.mu.Lock()
	o.status = *status
	o.mu.Unlock()
}

// State returns the visible sync state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Syncing reports whether the busy indicator should show.
func (o *Orchestrator) Syncing() bool {
	return o.State() == StateSyncing
}

// Status returns the last known backend sync status.
func (o *Orchestrator) Status() models.SyncStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// LastResult returns the current outcome banner, or nil once cleared.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastResult == nil {
		return nil
	}
	r := *o.lastResult
	return &r
}

// Close tears the orchestrator down: the auto-sync loop stops, all pending
// timers are cancelled, and no callbacks fire afterwards.
func (o *Orchestrator) Close() {
	o.cancel()

	o.mu.Lock()
	o.generation++ // invalidate every outstanding timer callback
	stopTimer(o.timeoutTimer)
	stopTimer(o.settleTimer)
	stopTimer(o.clearTimer)
	o.mu.Unlock()

	o.wg.Wait()
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func userMessage(err error) string {
	return "Sync failed: " + err.Error()
}
