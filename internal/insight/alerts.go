package insight

import (
	"context"
	"log"
	"sync"

	"finboard/internal/models"
)

// AlertBackend is the slice of the gateway the alert store needs.
type AlertBackend interface {
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	MarkAlertRead(ctx context.Context, alertID string) error
}

// AlertStore mirrors the backend alert stream locally, with client-side
// read/unread filtering and optimistic mark-as-read. The read flag is the
// only alert state the client mutates.
type AlertStore struct {
	backend AlertBackend

	mu     sync.RWMutex
	alerts []models.Alert
}

// NewAlertStore creates an alert store over the given backend.
func NewAlertStore(backend AlertBackend) *AlertStore {
	return &AlertStore{backend: backend}
}

// Refresh replaces the local mirror with the backend's alert stream.
func (s *AlertStore) Refresh(ctx context.Context) error {
	alerts, err := s.backend.ListAlerts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.alerts = alerts
	s.mu.Unlock()
	return nil
}

// Alerts returns the mirrored alerts, optionally filtered to unread only.
func (s *AlertStore) Alerts(unreadOnly bool) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UnreadCount returns the number of unread alerts in the mirror.
func (s *AlertStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.alerts {
		if !a.Read {
			n++
		}
	}
	return n
}

// MarkRead flips an alert to read. The transition is idempotent: marking an
// already-read alert is a no-op that does not hit the backend. The local
// mirror is updated optimistically before the relay; a relay failure is
// returned but the local flag stays set so the UI does not flicker.
func (s *AlertStore) MarkRead(ctx context.Context, alertID string) error {
	s.mu.Lock()
	found, alreadyRead := false, false
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			found = true
			alreadyRead = s.alerts[i].Read
			s.alerts[i].Read = true
			break
		}
	}
	s.mu.Unlock()

	if found && alreadyRead {
		return nil
	}

	if err := s.backend.MarkAlertRead(ctx, alertID); err != nil {
		log.Printf("Alert store: failed to relay read flag for %s: %v", alertID, err)
		return err
	}
	return nil
}
