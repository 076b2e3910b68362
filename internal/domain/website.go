package domain

import (
	"fmt"
	"time"
)

// Status is the up/down state of a website as of its most recent check.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// StatusFor maps a probe's up classification to a Status.
func StatusFor(up bool) Status {
	if up {
		return StatusUp
	}
	return StatusDown
}

// Website is one monitored URL together with its owner contact and check
// state. URL is the unique key: registering the same URL again merges into
// the existing record instead of creating a second one.
//
// ResponseTime keeps the legacy string convention ("<n>ms", or "N/A" when
// the site never answered) because that is what the API and stored records
// have always carried; LogEntry holds the typed duration.
type Website struct {
	URL          string     `json:"url"`
	OwnerContact string     `json:"owner_contact,omitempty"`
	Status       Status     `json:"status"`
	ResponseTime string     `json:"response_time"`
	LastChecked  time.Time  `json:"last_checked"`
	Logs         []LogEntry `json:"logs,omitempty"`
}

// LogEntry records the outcome of a single check. Entries are append-only;
// Website.Status always equals the status of the newest entry.
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Status       Status        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Reached      bool          `json:"reached"`
}

// FormatLatency renders a latency for records and API responses: "<n>ms",
// or "N/A" when the target never answered.
func FormatLatency(d time.Duration, reached bool) string {
	if !reached {
		return "N/A"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
