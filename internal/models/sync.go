package models

import "time"

// SyncStatus is the backend's view of the bank-data sync pipeline. It is
// ephemeral client-side state, rebuilt from scratch on every poll.
type SyncStatus struct {
	Running    bool      `json:"running"`
	LastSynced time.Time `json:"lastSynced"`
	LastError  string    `json:"lastError,omitempty"`
}
