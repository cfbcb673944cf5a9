package logscan

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/scan"
)

type jsonSummary struct {
	FilesScanned       int            `json:"files_scanned"`
	StatementsAnalyzed int            `json:"statements_analyzed"`
	TotalFindings      int            `json:"total_findings"`
	BySeverity         map[string]int `json:"by_severity"`
	ByType             map[string]int `json:"by_type"`
	DurationSeconds    float64        `json:"duration_seconds"`
}

type jsonReport struct {
	Run      scan.Run    `json:"run"`
	Summary  jsonSummary `json:"summary"`
	Findings []Finding   `json:"findings"`
}

// WriteJSON writes the machine-readable report.
func WriteJSON(w io.Writer, res *Result) error {
	bySev := make(map[string]int)
	for sev, n := range res.BySeverity() {
		bySev[string(sev)] = n
	}
	findings := res.Findings
	if findings == nil {
		findings = []Finding{}
	}
	report := jsonReport{
		Run: res.Run,
		Summary: jsonSummary{
			FilesScanned:       res.FilesScanned,
			StatementsAnalyzed: res.StatementsAnalyzed,
			TotalFindings:      len(res.Findings),
			BySeverity:         bySev,
			ByType:             res.ByType(),
			DurationSeconds:    res.Duration.Seconds(),
		},
		Findings: findings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteMarkdown writes the human-readable report.
func WriteMarkdown(w io.Writer, res *Result) error {
	var b strings.Builder

	b.WriteString("# Log Statement Scan\n\n")
	fmt.Fprintf(&b, "- **Run**: %s\n", res.Run.ID)
	fmt.Fprintf(&b, "- **Started**: %s\n", res.Run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Files scanned**: %d\n", res.FilesScanned)
	fmt.Fprintf(&b, "- **Log statements analyzed**: %d\n", res.StatementsAnalyzed)
	fmt.Fprintf(&b, "- **Findings**: %d\n\n", len(res.Findings))

	if len(res.Findings) == 0 {
		b.WriteString("No sensitive data found in logging statements.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("## Summary by Severity\n\n")
	b.WriteString("| Severity | Count |\n|----------|-------|\n")
	bySev := res.BySeverity()
	for _, sev := range scan.Severities() {
		if n := bySev[sev]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", strings.ToUpper(string(sev)), n)
		}
	}
	b.WriteString("\n## Sensitive Data Types\n\n")
	b.WriteString("| Type | Count |\n|------|-------|\n")
	for _, tc := range sortedTypes(res.ByType()) {
		fmt.Fprintf(&b, "| %s | %d |\n", tc.name, tc.count)
	}

	b.WriteString("\n## Findings\n")
	for _, f := range res.Findings {
		fmt.Fprintf(&b, "\n### %s - %s\n\n", f.ID, f.Description)
		fmt.Fprintf(&b, "- **Severity**: %s\n", strings.ToUpper(string(f.Severity)))
		fmt.Fprintf(&b, "- **Risk score**: %d/100\n", f.RiskScore)
		fmt.Fprintf(&b, "- **Language**: %s\n", f.Language)
		fmt.Fprintf(&b, "- **File**: `%s:%d`\n", f.File, f.Line)
		fmt.Fprintf(&b, "- **Log call**: `%s`\n", f.LogCall)
		fmt.Fprintf(&b, "- **Context**: `%s`\n", f.Context)
		b.WriteString("- **Remediation**:\n")
		for _, step := range f.Remediation {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
	}

	b.WriteString("\n## Safe Logging Patterns\n\n")
	b.WriteString("Log opaque identifiers, never the sensitive fields themselves:\n\n")
	b.WriteString("```python\n")
	b.WriteString("# Bad\n")
	b.WriteString("logger.info(f\"Processing patient {patient.name}\")\n\n")
	b.WriteString("# Good\n")
	b.WriteString("logger.info(f\"Processing patient {patient.id}\")\n\n")
	b.WriteString("# Better, with a redaction filter\n")
	b.WriteString("class RedactionFilter(logging.Filter):\n")
	b.WriteString("    def filter(self, record):\n")
	b.WriteString("        record.msg = redact(record.msg)\n")
	b.WriteString("        return True\n")
	b.WriteString("```\n")

	_, err := io.WriteString(w, b.String())
	return err
}

type typeCount struct {
	name  string
	count int
}

func sortedTypes(counts map[string]int) []typeCount {
	out := make([]typeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, typeCount{name: name, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
