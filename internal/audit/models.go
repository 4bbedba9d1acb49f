package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Severity ranks an audit entry.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"

	DefaultSeverity = SeverityMedium
)

// IsValid reports whether s is one of the four known severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity accepts the empty string as "unspecified" and returns
// ok=false for anything else that is not a known severity.
func ParseSeverity(raw string) (Severity, bool) {
	if raw == "" {
		return "", true
	}
	s := Severity(raw)
	return s, s.IsValid()
}

// Entry is one immutable ledger record.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"userId"`
	SessionID string          `json:"sessionId"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	IPAddress string          `json:"ipAddress"`
	UserAgent string          `json:"userAgent"`
	Timestamp time.Time       `json:"timestamp"`
	Severity  Severity        `json:"severity"`
}

// Input is the caller-supplied part of an entry. The ledger assigns ID and
// Timestamp and fills defaults for the rest.
type Input struct {
	UserID    string
	SessionID string
	Action    string
	Details   json.RawMessage
	IPAddress string
	UserAgent string
	Severity  Severity
}

// Filter selects and pages entries. A zero Severity or ActionContains
// matches everything.
type Filter struct {
	Severity       Severity
	ActionContains string
	Limit          int
	Offset         int
}

// Page is one slice of the filtered, newest-first sequence. Total is the
// filtered count before pagination.
type Page struct {
	Entries []Entry
	Total   int
}
