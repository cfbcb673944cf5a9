package model

import (
	"fmt"
	"strings"
)

// Severity grades a lint or scan finding.
// Severities are ordered so thresholds can be applied uniformly across
// the lint rules and the scanners.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank defines the ordering of severities.
// Higher rank = more severe.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// IsValid returns true if the severity is recognized.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// AllSeverities returns all severities from least to most severe.
func AllSeverities() []Severity {
	return []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Rank returns the numeric rank of the severity, or -1 if unrecognized.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast returns true if this severity is at or above min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity converts a string to a Severity.
// Returns an error if the severity is not recognized.
func ParseSeverity(s string) (Severity, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	// Try exact match first
	sev := Severity(normalized)
	if sev.IsValid() {
		return sev, nil
	}

	// Try common aliases
	switch normalized {
	case "crit":
		return SeverityCritical, nil
	case "warning", "warn":
		return SeverityMedium, nil
	case "informational", "note":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q (valid: info, low, medium, high, critical)", s)
	}
}

// SeverityFromScore maps a 0-100 risk score to a severity band.
func SeverityFromScore(score int) Severity {
	switch {
	case score >= 90:
		return SeverityCritical
	case score >= 70:
		return SeverityHigh
	case score >= 50:
		return SeverityMedium
	case score >= 25:
		return SeverityLow
	default:
		return SeverityInfo
	}
}
