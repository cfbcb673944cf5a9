package secscan

import (
	"strings"

	"github.com/devskills/skillkit/internal/scan"
)

// sensitivityScore maps severity to the sensitivity component of the
// risk score.
var sensitivityScore = map[scan.Severity]int{
	scan.SeverityCritical: 100,
	scan.SeverityHigh:     80,
	scan.SeverityMedium:   60,
	scan.SeverityLow:      40,
	scan.SeverityInfo:     20,
}

// riskScore combines sensitivity, path exposure, verifiability, and
// scope into a 0-100 priority score.
func riskScore(sev scan.Severity, path string, confidence float64) int {
	sensitivity := sensitivityScore[sev]

	exposure := 50
	lower := strings.ToLower(path)
	switch {
	case containsAny(lower, ".env", "secrets", "credentials", "config"):
		exposure = 80
	case containsAny(lower, "test", "spec", "mock", "example", "sample"):
		exposure = 30
	case containsAny(lower, "production", "prod", "live"):
		exposure = 95
	}

	verifiability := confidence * 100
	scope := 60.0

	score := 0.40*float64(sensitivity) + 0.30*float64(exposure) + 0.15*verifiability + 0.15*scope
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
