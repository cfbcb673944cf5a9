package gitscan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/devskills/skillkit/internal/scan"
)

type jsonSummary struct {
	CommitsScanned  int                   `json:"commits_scanned"`
	TotalFindings   int                   `json:"total_findings"`
	StillPresent    int                   `json:"still_present"`
	BySeverity      map[scan.Severity]int `json:"by_severity"`
	DurationSeconds float64               `json:"duration_seconds"`
}

type jsonReport struct {
	Run      scan.Run    `json:"run"`
	Repo     string      `json:"repo"`
	Branch   string      `json:"branch"`
	Summary  jsonSummary `json:"summary"`
	Findings []Finding   `json:"findings"`
}

// WriteJSON writes the full machine-readable history report.
func WriteJSON(w io.Writer, res *Result) error {
	findings := res.Findings
	if findings == nil {
		findings = []Finding{}
	}
	bySev := make(map[scan.Severity]int)
	for _, f := range res.Findings {
		bySev[f.Severity]++
	}
	report := jsonReport{
		Run:    res.Run,
		Repo:   res.Repo,
		Branch: res.Branch,
		Summary: jsonSummary{
			CommitsScanned:  res.CommitsScanned,
			TotalFindings:   len(res.Findings),
			StillPresent:    len(res.StillPresent()),
			BySeverity:      bySev,
			DurationSeconds: res.Duration.Seconds(),
		},
		Findings: findings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteMarkdown writes a reviewer-facing history report. Still-present
// findings lead since only those block a release.
func WriteMarkdown(w io.Writer, res *Result) error {
	var b strings.Builder

	b.WriteString("# Git History Secret Scan\n\n")
	fmt.Fprintf(&b, "- **Run ID**: %s\n", res.Run.ID)
	fmt.Fprintf(&b, "- **Started**: %s\n", res.Run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Repository**: %s\n", res.Repo)
	fmt.Fprintf(&b, "- **Branch**: %s\n", res.Branch)
	fmt.Fprintf(&b, "- **Commits scanned**: %d\n", res.CommitsScanned)
	fmt.Fprintf(&b, "- **Findings**: %d (%d still present in HEAD)\n",
		len(res.Findings), len(res.StillPresent()))

	if len(res.Findings) == 0 {
		b.WriteString("\nNo secrets found in history.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if present := res.StillPresent(); len(present) > 0 {
		b.WriteString("\n## URGENT: Still Present in HEAD\n\n")
		b.WriteString("These values match the current tree. Rotate them before anything else.\n")
		writeFindings(&b, present)
	}

	if removed := res.Removed(); len(removed) > 0 {
		b.WriteString("\n## Removed From Tree, Still in History\n\n")
		b.WriteString("Rotation is still required; the values remain readable in old commits.\n")
		writeFindings(&b, removed)
	}

	b.WriteString("\n## Cleaning Git History\n\n")
	b.WriteString("After rotating, rewrite history so the old values disappear:\n\n")
	b.WriteString("```\n")
	b.WriteString("bfg --replace-text replacements.txt\n")
	b.WriteString("git reflog expire --expire=now --all\n")
	b.WriteString("git gc --prune=now --aggressive\n")
	b.WriteString("git push --force\n")
	b.WriteString("```\n\n")
	b.WriteString("Coordinate the force-push with everyone tracking the repository.\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFindings(b *strings.Builder, findings []Finding) {
	for _, f := range findings {
		fmt.Fprintf(b, "\n#### %s: %s (%s)\n\n", f.ID, f.Name, f.Severity)
		fmt.Fprintf(b, "- **Commit**: %s by %s <%s> on %s\n", f.CommitShort, f.Author, f.Email, f.Date)
		fmt.Fprintf(b, "- **Message**: %s\n", f.Message)
		fmt.Fprintf(b, "- **File**: %s:%d\n", f.File, f.Line)
		fmt.Fprintf(b, "- **Value**: `%s` (%s)\n", f.Value, f.ValueHash)
		if f.RemovedIn != "" {
			fmt.Fprintf(b, "- **Removed in**: %s\n", f.RemovedIn)
		}
	}
}
