package dashboard

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finboard/internal/gateway"
	"finboard/internal/insight"
	"finboard/internal/models"
	"finboard/internal/notify"
	"finboard/internal/shared/middleware"
	syncpkg "finboard/internal/sync"
)

// Handler serves the derived dashboard data and relays user actions to the
// backend.
type Handler struct {
	service *Service
	orch    *syncpkg.Orchestrator
	alerts  *insight.AlertStore
	hub     *notify.Hub
	gw      gateway.ClientInterface
}

// NewHandler wires the HTTP surface over the core components.
func NewHandler(service *Service, orch *syncpkg.Orchestrator, alerts *insight.AlertStore, hub *notify.Hub, gw gateway.ClientInterface) *Handler {
	return &Handler{service: service, orch: orch, alerts: alerts, hub: hub, gw: gw}
}

// Routes builds the router for the dashboard API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)

	r.Get("/api/dashboard", h.handleDashboard)

	r.Post("/api/sync", h.handleTriggerSync)
	r.Get("/api/sync/status", h.handleSyncStatus)

	r.Get("/api/alerts", h.handleListAlerts)
	r.Patch("/api/alerts/{id}/read", h.handleMarkAlertRead)

	r.Get("/api/banks", h.handleListBanks)
	r.Get("/api/banks/health", h.handleBankHealth)
	r.Delete("/api/banks/{id}", h.handleRemoveBank)

	r.Post("/api/link/token/create", h.handleCreateLinkToken)
	r.Post("/api/token/exchange", h.handleExchangeToken)

	r.Get("/api/budget", h.handleGetBudget)
	r.Put("/api/budget", h.handleUpdateBudget)
	r.Post("/api/savings-goals", h.handleCreateSavingsGoal)

	if h.hub != nil {
		r.Get("/ws", h.hub.ServeWS)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context())
	if err != nil {
		log.Printf("Dashboard: load failed: %v", err)
		respondError(w, http.StatusBadGateway, "Unable to load dashboard data right now")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	investmentOnly := r.URL.Query().Get("investments") == "true"

	if err := h.orch.TriggerSync(r.Context(), investmentOnly); err != nil {
		respondError(w, http.StatusBadGateway, "Sync failed: "+err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]any{
		"state":  h.orch.State(),
		"status": h.orch.Status(),
	})
}

func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"state":      h.orch.State(),
		"syncing":    h.orch.Syncing(),
		"status":     h.orch.Status(),
		"lastResult": h.orch.LastResult(),
	})
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.Refresh(r.Context()); err != nil {
		// Serve the stale mirror rather than failing the panel.
		log.Printf("Dashboard: alert refresh failed: %v", err)
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	respondJSON(w, http.StatusOK, map[string]any{
		"alerts": h.alerts.Alerts(unreadOnly),
		"unread": h.alerts.UnreadCount(),
	})
}

func (h *Handler) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.alerts.MarkRead(r.Context(), id); err != nil {
		respondError(w, http.StatusBadGateway, "Failed to mark alert as read")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.gw.GetConnectedBanks(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Unable to load connected banks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"banks": banks})
}

func (h *Handler) handleBankHealth(w http.ResponseWriter, r *http.Request) {
	bankHealth, err := h.gw.HealthCheck(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Unable to check bank connections")
		return
	}
	respondJSON(w, http.StatusOK, bankHealth)
}

func (h *Handler) handleRemoveBank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.gw.RemoveBank(r.Context(), id); err != nil {
		respondError(w, http.StatusBadGateway, "Failed to remove bank connection")
		return
	}
	h.service.Invalidate()
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	raw, err := h.gw.CreateLinkToken(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Unable to start bank link")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *Handler) handleExchangeToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublicToken string `json:"public_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PublicToken == "" {
		respondError(w, http.StatusBadRequest, "public_token is required")
		return
	}

	raw, err := h.gw.ExchangePublicToken(r.Context(), body.PublicToken)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Unable to complete bank link")
		return
	}
	h.service.Invalidate()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *Handler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	lines, err := h.gw.GetBudget(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Unable to load budget")
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

func (h *Handler) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var lines []models.BudgetLine
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid budget payload")
		return
	}
	if err := h.gw.UpdateBudget(r.Context(), lines); err != nil {
		respondError(w, http.StatusBadGateway, "Failed to save budget")
		return
	}
	h.service.Invalidate()
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// savingsGoalView decorates a goal with its derived completion. Progress
// stays uncapped so an exceeded goal is detectable; DisplayProgress caps at
// 100 for rendering.
type savingsGoalView struct {
	models.SavingsGoal
	Progress        float64 `json:"progress"`
	DisplayProgress float64 `json:"displayProgress"`
}

func newSavingsGoalView(g models.SavingsGoal) savingsGoalView {
	return savingsGoalView{
		SavingsGoal:     g,
		Progress:        g.Progress(),
		DisplayProgress: g.DisplayProgress(),
	}
}

func (h *Handler) handleCreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.SavingsGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid savings goal payload")
		return
	}
	if goal.Name == "" || goal.TargetAmount <= 0 {
		respondError(w, http.StatusBadRequest, "A name and a positive target amount are required")
		return
	}

	created, err := h.gw.CreateSavingsGoal(r.Context(), goal)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to create savings goal")
		return
	}
	respondJSON(w, http.StatusCreated, newSavingsGoalView(*created))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Dashboard: failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "message": message})
}
