package logscan

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/progress"
	"github.com/devskills/skillkit/internal/scan"
)

// Options controls a log scan.
type Options struct {
	// Include and Exclude are doublestar globs applied to candidate files.
	Include []string
	Exclude []string
	// SkipDirs extends the default directory skip list.
	SkipDirs []string
	// MaxFileSize caps file reads in bytes. Defaults to 1 MiB.
	MaxFileSize int64
}

// Finding is one log statement that references sensitive data.
type Finding struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Severity    scan.Severity `json:"severity"`
	RiskScore   int           `json:"risk_score"`
	Language    string        `json:"language"`
	File        string        `json:"file"`
	Line        int           `json:"line"`
	LogCall     string        `json:"log_call"`
	Context     string        `json:"context"`
	Remediation []string      `json:"remediation"`
}

// Result aggregates one scan run.
type Result struct {
	Run                scan.Run      `json:"run"`
	Findings           []Finding     `json:"findings"`
	FilesScanned       int           `json:"files_scanned"`
	StatementsAnalyzed int           `json:"statements_analyzed"`
	Duration           time.Duration `json:"-"`
}

// BySeverity counts findings per severity.
func (r *Result) BySeverity() map[scan.Severity]int {
	out := make(map[scan.Severity]int)
	for _, f := range r.Findings {
		out[f.Severity]++
	}
	return out
}

// ByType counts findings per sensitive-data type.
func (r *Result) ByType() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Findings {
		out[f.Type]++
	}
	return out
}

// ExitCode returns 2 for critical findings, 1 for high, 0 otherwise.
func (r *Result) ExitCode() int {
	sevs := make([]scan.Severity, len(r.Findings))
	for i, f := range r.Findings {
		sevs[i] = f.Severity
	}
	return scan.ExitCode(sevs)
}

// Scanner walks a tree and inspects logging calls in recognized languages.
type Scanner struct {
	opts Options
}

// New builds a Scanner, applying option defaults.
func New(opts Options) *Scanner {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 1 << 20
	}
	return &Scanner{opts: opts}
}

// Scan analyzes every recognized source file under root.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	run := scan.NewRun()
	start := time.Now()

	files, err := scan.Walk(ctx, root, scan.WalkOptions{
		SkipDirs:    s.opts.SkipDirs,
		MaxFileSize: s.opts.MaxFileSize,
		Include:     s.opts.Include,
		Exclude:     s.opts.Exclude,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Run: run, Findings: []Finding{}}
	bar := progress.Simple(int64(len(files)), "Scanning log statements")
	day := run.StartedAt.Format("20060102")
	n := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lang := languageFor(f)
		if lang == nil {
			_ = bar.Add(1)
			continue
		}
		findings, statements := s.scanFile(f, lang)
		result.FilesScanned++
		result.StatementsAnalyzed += statements
		for i := range findings {
			n++
			findings[i].ID = fmt.Sprintf("LOG-%s-%04d", day, n)
		}
		result.Findings = append(result.Findings, findings...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	result.Duration = time.Since(start)
	logging.Debug("log scan finished",
		logging.Operation("scan_logs"),
		logging.Path(root),
		logging.Count(len(result.Findings)),
		logging.Duration(result.Duration),
	)
	return result, nil
}

// scanFile returns the findings for one file plus the number of log
// statements inspected. Each statement yields at most one finding.
func (s *Scanner) scanFile(path string, lang *Language) ([]Finding, int) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the walked tree
	if err != nil {
		logging.Warn("skipping unreadable file", logging.Path(path), logging.Err(err))
		return nil, 0
	}
	content := string(data)

	var findings []Finding
	statements := 0
	for _, call := range lang.Calls {
		for _, loc := range call.FindAllStringIndex(content, -1) {
			statements++
			stmt := extractStatement(content, loc[1])
			if stmt == "" {
				continue
			}
			if isSafeStatement(stmt) {
				continue
			}
			for _, p := range sensitivePatterns {
				if !p.Regexp.MatchString(stmt) {
					continue
				}
				score, severity := riskFor(p.Type)
				findings = append(findings, Finding{
					Type:        p.Type,
					Description: p.Description,
					Severity:    severity,
					RiskScore:   score,
					Language:    lang.Name,
					File:        path,
					Line:        1 + strings.Count(content[:loc[0]], "\n"),
					LogCall:     strings.TrimSpace(strings.TrimRight(content[loc[0]:loc[1]], "(")),
					Context:     redactContext(lineText(content, loc[0])),
					Remediation: remediationFor(p.Type),
				})
				break
			}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Type < findings[j].Type
	})
	return findings, statements
}

// extractStatement returns the argument text of a log call whose
// regexp match ends at end. Calls with parentheses are walked to the
// matching close across lines. Paren-less forms (ruby puts) take the
// rest of the line.
func extractStatement(content string, end int) string {
	if end > 0 && content[end-1] == '(' {
		depth := 1
		pos := end
		for pos < len(content) && depth > 0 {
			switch content[pos] {
			case '(':
				depth++
			case ')':
				depth--
			}
			pos++
		}
		if depth > 0 {
			return content[end:]
		}
		return content[end : pos-1]
	}
	if i := strings.IndexByte(content[end:], '\n'); i >= 0 {
		return content[end : end+i]
	}
	return content[end:]
}

// lineText returns the trimmed source line containing pos, truncated
// to 150 characters.
func lineText(content string, pos int) string {
	start := strings.LastIndexByte(content[:pos], '\n') + 1
	end := strings.IndexByte(content[pos:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += pos
	}
	line := strings.TrimSpace(content[start:end])
	if len(line) > 150 {
		line = line[:150] + "..."
	}
	return line
}

var (
	ssnValueRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	emailValueRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// redactContext masks literal SSNs and email addresses so the report
// itself does not leak them.
func redactContext(line string) string {
	line = ssnValueRe.ReplaceAllString(line, "[SSN-REDACTED]")
	return emailValueRe.ReplaceAllString(line, "[EMAIL-REDACTED]")
}
