package secscan

import (
	"testing"

	"github.com/devskills/skillkit/internal/scan"
)

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name       string
		severity   scan.Severity
		path       string
		confidence float64
		want       int
	}{
		{"critical plain path", scan.SeverityCritical, "src/app.py", 0.95, 78},
		{"critical config path", scan.SeverityCritical, "config/app.py", 0.95, 87},
		{"critical test path", scan.SeverityCritical, "tests/app.py", 0.475, 65},
		{"high production path", scan.SeverityHigh, "production/app.py", 0.95, 83},
		{"low plain path", scan.SeverityLow, "x/app.py", 0.6, 49},
		{"info test path", scan.SeverityInfo, "tests/app.py", 0.475, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := riskScore(tt.severity, tt.path, tt.confidence)
			if got != tt.want {
				t.Errorf("riskScore(%q, %q, %v) = %d, want %d",
					tt.severity, tt.path, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestRiskScore_EnvBeatsTestPath(t *testing.T) {
	// A .env file inside a test tree still counts as exposed config.
	got := riskScore(scan.SeverityCritical, "tests/fixtures/.env", 0.95)
	want := riskScore(scan.SeverityCritical, "config/app.py", 0.95)
	if got != want {
		t.Errorf("riskScore for test .env = %d, want %d (config exposure wins)", got, want)
	}
}

func TestRemediationFor(t *testing.T) {
	base := remediationFor("Unknown")
	if len(base) == 0 {
		t.Fatal("base remediation should not be empty")
	}
	aws := remediationFor("AWS")
	if len(aws) <= len(base) {
		t.Errorf("AWS remediation has %d steps, want more than the %d base steps", len(aws), len(base))
	}
}
