// Package scan holds the pieces the security scanners share: severity
// ranking, secret masking and hashing, file tree walking, and run
// metadata for reports.
package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/devskills/skillkit/internal/model"
)

// Severity is the shared finding severity, aliased so scanner code and
// reports read naturally without importing model everywhere.
type Severity = model.Severity

const (
	SeverityCritical = model.SeverityCritical
	SeverityHigh     = model.SeverityHigh
	SeverityMedium   = model.SeverityMedium
	SeverityLow      = model.SeverityLow
	SeverityInfo     = model.SeverityInfo
)

// ParseSeverity validates a severity name from flags or config.
func ParseSeverity(v string) (Severity, error) {
	return model.ParseSeverity(v)
}

// Severities lists all severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// ExitCode maps the worst severity present to the process exit code:
// 2 for critical, 1 for high, 0 otherwise.
func ExitCode(sevs []Severity) int {
	code := 0
	for _, s := range sevs {
		switch s {
		case SeverityCritical:
			return 2
		case SeverityHigh:
			code = 1
		}
	}
	return code
}

// Run identifies one scanner invocation in reports.
type Run struct {
	ID        string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// NewRun stamps a fresh run with a UUID and the current time.
func NewRun() Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}
