// Package health classifies account staleness from last-sync timestamps.
//
// The classifier and the relative-time formatter share the same breakpoints
// so a displayed age can never contradict the health badge next to it.
package health

import (
	"fmt"
	"time"
)

// Breakpoints shared by Classify and RelativeTime.
const (
	WarnAfter  = 24 * time.Hour
	ErrorAfter = 72 * time.Hour
)

// Status is the health state of an account connection.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Classify maps an account's last-updated timestamp to a health state.
// It is monotonic in age: growing older never improves the status.
func Classify(lastUpdated, now time.Time) Status {
	age := now.Sub(lastUpdated)
	switch {
	case age < WarnAfter:
		return StatusHealthy
	case age < ErrorAfter:
		return StatusWarning
	default:
		return StatusError
	}
}

// Describe returns the user-facing label for a status.
func Describe(s Status) string {
	switch s {
	case StatusHealthy:
		return "Up to date"
	case StatusWarning:
		return "Needs sync"
	default:
		return "Connection issue"
	}
}

// RelativeTime formats how long ago t was, using the same breakpoints as
// Classify: hours inside the healthy window, days inside the warning window,
// and a calendar date once the connection is in error territory.
func RelativeTime(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Hour:
		return "Just now"
	case age < WarnAfter:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < ErrorAfter:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
