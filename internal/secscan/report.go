package secscan

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/devskills/skillkit/internal/scan"
)

// infoURI identifies the project in SARIF tool metadata.
const infoURI = "https://github.com/devskills/skillkit"

type jsonSummary struct {
	FilesScanned    int                   `json:"files_scanned"`
	LinesScanned    int                   `json:"lines_scanned"`
	TotalFindings   int                   `json:"total_findings"`
	BySeverity      map[scan.Severity]int `json:"by_severity"`
	ByProvider      map[string]int        `json:"by_provider"`
	DurationSeconds float64               `json:"duration_seconds"`
}

type jsonReport struct {
	Run      scan.Run    `json:"run"`
	Summary  jsonSummary `json:"summary"`
	Findings []Finding   `json:"findings"`
}

// WriteJSON writes the full machine-readable report.
func WriteJSON(w io.Writer, res *Result) error {
	findings := res.Findings
	if findings == nil {
		findings = []Finding{}
	}
	report := jsonReport{
		Run: res.Run,
		Summary: jsonSummary{
			FilesScanned:    res.FilesScanned,
			LinesScanned:    res.LinesScanned,
			TotalFindings:   len(res.Findings),
			BySeverity:      res.BySeverity(),
			ByProvider:      res.ByProvider(),
			DurationSeconds: res.Duration.Seconds(),
		},
		Findings: findings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteMarkdown writes a human-readable report suitable for review or
// ticket attachments.
func WriteMarkdown(w io.Writer, res *Result) error {
	var b strings.Builder

	b.WriteString("# Secret Scan Report\n\n")
	fmt.Fprintf(&b, "- **Run ID**: %s\n", res.Run.ID)
	fmt.Fprintf(&b, "- **Started**: %s\n", res.Run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Files scanned**: %d\n", res.FilesScanned)
	fmt.Fprintf(&b, "- **Lines scanned**: %d\n", res.LinesScanned)
	fmt.Fprintf(&b, "- **Findings**: %d\n\n", len(res.Findings))

	if len(res.Findings) == 0 {
		b.WriteString("No secrets detected.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("## By Severity\n\n")
	b.WriteString("| Severity | Count |\n|---|---|\n")
	bySev := res.BySeverity()
	for _, sev := range scan.Severities() {
		if n := bySev[sev]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", sev, n)
		}
	}
	b.WriteString("\n## By Provider\n\n")
	b.WriteString("| Provider | Count |\n|---|---|\n")
	for _, pc := range sortedCounts(res.ByProvider()) {
		fmt.Fprintf(&b, "| %s | %d |\n", pc.name, pc.count)
	}

	b.WriteString("\n## Findings\n")
	for _, sev := range scan.Severities() {
		var group []Finding
		for _, f := range res.Findings {
			if f.Severity == sev {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n", titleSeverity(sev))
		for _, f := range group {
			fmt.Fprintf(&b, "\n#### %s: %s\n\n", f.ID, f.Name)
			fmt.Fprintf(&b, "- **Location**: %s:%d:%d\n", f.Path, f.Line, f.Column)
			fmt.Fprintf(&b, "- **Rule**: %s\n", f.Rule)
			fmt.Fprintf(&b, "- **Provider**: %s\n", f.Provider)
			fmt.Fprintf(&b, "- **Value**: `%s` (%s)\n", f.Value, f.ValueHash)
			fmt.Fprintf(&b, "- **Confidence**: %.2f\n", f.Confidence)
			fmt.Fprintf(&b, "- **Risk score**: %d\n", f.RiskScore)
			if f.Entropy > 0 {
				fmt.Fprintf(&b, "- **Entropy**: %.2f\n", f.Entropy)
			}
			if f.Context != "" {
				fmt.Fprintf(&b, "\n```\n%s\n```\n", f.Context)
			}
		}
	}

	b.WriteString("\n## Remediation\n")
	for _, pc := range sortedCounts(res.ByProvider()) {
		fmt.Fprintf(&b, "\n### %s\n\n", pc.name)
		for i, step := range remediationFor(pc.name) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func titleSeverity(sev scan.Severity) string {
	s := string(sev)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type nameCount struct {
	name  string
	count int
}

// sortedCounts orders by count descending, then name, so reports are
// stable run to run.
func sortedCounts(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for name, count := range m {
		out = append(out, nameCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// SARIF 2.1.0 structures, minimal subset for code scanning upload.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool       `json:"tool"`
	AutomationDetails sarifAutomation `json:"automationDetails"`
	Results           []sarifResult   `json:"results"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
	DefaultConfig    sarifConfig  `json:"defaultConfiguration"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

func sarifLevel(sev scan.Severity) string {
	if sev.AtLeast(scan.SeverityHigh) {
		return "error"
	}
	return "warning"
}

// WriteSARIF writes the findings in SARIF 2.1.0 form for code scanning
// integrations. version names the tool release in the run metadata.
func WriteSARIF(w io.Writer, res *Result, version string) error {
	rules := []sarifRule{}
	seenRules := make(map[string]bool)
	results := make([]sarifResult, 0, len(res.Findings))

	for _, f := range res.Findings {
		if !seenRules[f.Rule] {
			seenRules[f.Rule] = true
			rules = append(rules, sarifRule{
				ID:               f.Rule,
				Name:             f.Name,
				ShortDescription: sarifMessage{Text: f.Name},
				DefaultConfig:    sarifConfig{Level: sarifLevel(f.Severity)},
			})
		}
		results = append(results, sarifResult{
			RuleID: f.Rule,
			Level:  sarifLevel(f.Severity),
			Message: sarifMessage{
				Text: fmt.Sprintf("%s detected (value %s)", f.Name, f.Value),
			},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: toURI(f.Path)},
					Region:           sarifRegion{StartLine: f.Line, StartColumn: f.Column},
				},
			}},
			PartialFingerprints: map[string]string{"secretHash/v1": f.ValueHash},
		})
	}

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "skillkit",
				Version:        version,
				InformationURI: infoURI,
				Rules:          rules,
			}},
			AutomationDetails: sarifAutomation{GUID: res.Run.ID},
			Results:           results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func toURI(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
