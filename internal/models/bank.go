package models

import "time"

// Bank is a connected institution as reported by the backend.
type Bank struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status,omitempty"`
	ConnectedAt time.Time `json:"connectedAt,omitempty"`
}

// BankIssue describes a connection that failed the backend health check.
type BankIssue struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BankHealth is the result of the backend connection health check.
type BankHealth struct {
	Healthy   []string    `json:"healthy"`
	Unhealthy []BankIssue `json:"unhealthy"`
}
