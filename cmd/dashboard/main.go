package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finboard/internal/dashboard"
	"finboard/internal/gateway"
	"finboard/internal/insight"
	"finboard/internal/notify"
	"finboard/internal/shared/config"
	"finboard/internal/shared/telemetry"
	syncpkg "finboard/internal/sync"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Initialize telemetry (if enabled)
	var telemetryShutdown func(context.Context) error
	if cfg.Telemetry.Enabled {
		telemetryShutdown, err = telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
	} else {
		log.Println("Telemetry is disabled")
	}

	// Backend gateway client
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)
	log.Printf("Gateway client pointed at %s", cfg.Gateway.BaseURL)

	// WebSocket hub for pushing sync events to open dashboards
	hubCtx, hubCancel := context.WithCancel(ctx)
	defer hubCancel()
	hub := notify.NewHub()
	hub.Run(hubCtx)

	// Alert mirror
	alerts := insight.NewAlertStore(gw)

	// Dashboard load pipeline
	svc, err := dashboard.NewService(gw, dashboard.Options{
		CacheTTL:            cfg.Dashboard.CacheTTL,
		TransactionWindow:   cfg.Dashboard.TransactionWindow,
		NetWorthSeriesDays:  cfg.Dashboard.NetWorthSeriesDays,
		CashFlowHorizonDays: cfg.Dashboard.CashFlowHorizonDays,
		Thresholds: insight.Thresholds{
			DefaultCreditLimit:     cfg.Insights.DefaultCreditLimit,
			MonthlyExpenseEstimate: cfg.Insights.MonthlyExpenseEstimate,
			EmergencyFundMonths:    cfg.Insights.EmergencyFundMonths,
			UtilizationWarning:     cfg.Insights.UtilizationWarning,
		},
	})
	if err != nil {
		return err
	}

	// Sync orchestrator: a finished sync drops the cached snapshot and tells
	// connected dashboards to reload.
	orch := syncpkg.New(gw, syncpkg.Options{
		AutoSyncInterval: cfg.Sync.AutoSyncInterval,
		VisibleTimeout:   cfg.Sync.VisibleTimeout,
		SettleDelay:      cfg.Sync.SettleDelay,
		ResultTTL:        cfg.Sync.ResultTTL,
		OnComplete: func() {
			svc.Invalidate()
			hub.BroadcastSyncEvent(string(syncpkg.StateCompleted), "Sync completed")
		},
	})
	orch.Start()
	log.Printf("Sync orchestrator started (auto-sync every %v)", cfg.Sync.AutoSyncInterval)

	handler := dashboard.NewHandler(svc, orch, alerts, hub, gw)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	orch.Close()
	hubCancel()

	if telemetryShutdown != nil {
		if err := telemetryShutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}

	log.Println("Server stopped")
	return nil
}
