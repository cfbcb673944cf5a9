// Package secscan detects hardcoded credentials in source trees: a
// provider pattern registry, Shannon entropy detection for opaque
// tokens, false-positive suppression, and risk-scored findings with
// masked values.
package secscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/progress"
	"github.com/devskills/skillkit/internal/scan"
)

// Options configures a scan.
type Options struct {
	// MinSeverity drops findings below this rank. Empty means info,
	// which keeps everything.
	MinSeverity scan.Severity
	// NoEntropy disables entropy-based detection.
	NoEntropy bool
	// EntropyThreshold overrides DefaultEntropyThreshold when positive.
	EntropyThreshold float64
	// MaxFileSize skips files larger than this many bytes. Zero means
	// 1 MiB.
	MaxFileSize int64
	// SkipDirs overrides the default pruned directory names.
	SkipDirs []string
	// Include and Exclude are doublestar globs on root-relative paths.
	Include []string
	Exclude []string
	// Allowlist suppresses reviewed findings.
	Allowlist *Allowlist
	// Workers bounds concurrent file scans. Zero means 4.
	Workers int
}

// Finding is one detected secret.
type Finding struct {
	ID          string        `json:"id"`
	Rule        string        `json:"rule"`
	Name        string        `json:"name"`
	Provider    string        `json:"provider"`
	Severity    scan.Severity `json:"severity"`
	Path        string        `json:"path"`
	Line        int           `json:"line"`
	Column      int           `json:"column"`
	Value       string        `json:"value_preview"`
	ValueHash   string        `json:"value_hash"`
	Confidence  float64       `json:"confidence"`
	RiskScore   int           `json:"risk_score"`
	Entropy     float64       `json:"entropy,omitempty"`
	Context     string        `json:"context"`
	Remediation []string      `json:"remediation"`
}

// Result collects everything one scan produced.
type Result struct {
	Run          scan.Run      `json:"run"`
	Findings     []Finding     `json:"findings"`
	FilesScanned int           `json:"files_scanned"`
	LinesScanned int           `json:"lines_scanned"`
	Duration     time.Duration `json:"-"`
}

// BySeverity counts findings per severity.
func (r *Result) BySeverity() map[scan.Severity]int {
	out := make(map[scan.Severity]int)
	for _, f := range r.Findings {
		out[f.Severity]++
	}
	return out
}

// ByProvider counts findings per provider.
func (r *Result) ByProvider() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Findings {
		out[f.Provider]++
	}
	return out
}

// ByRule counts findings per rule ID.
func (r *Result) ByRule() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Findings {
		out[f.Rule]++
	}
	return out
}

// ExitCode maps the worst finding to the scanner exit code.
func (r *Result) ExitCode() int {
	sevs := make([]scan.Severity, len(r.Findings))
	for i, f := range r.Findings {
		sevs[i] = f.Severity
	}
	return scan.ExitCode(sevs)
}

// Scanner runs secret detection over files and trees.
type Scanner struct {
	opts     Options
	patterns []Pattern
}

// New builds a scanner. Zero-value options get working defaults.
func New(opts Options) *Scanner {
	if opts.MinSeverity == "" {
		opts.MinSeverity = scan.SeverityInfo
	}
	if opts.EntropyThreshold <= 0 {
		opts.EntropyThreshold = DefaultEntropyThreshold
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 1 << 20
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scanner{
		opts:     opts,
		patterns: DefaultPatterns(),
	}
}

type fileResult struct {
	findings []Finding
	lines    int
}

// Scan walks root and scans every eligible file. Findings come back
// sorted by path, line, and column, with sequential SK-<n> IDs.
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

	// Directory walks keep only recognizably scannable files; a root
	// named directly is always scanned.
	kept := files[:0]
	for _, f := range files {
		if f == root || shouldScan(f) {
			kept = append(kept, f)
		}
	}
	files = kept

	bar := progress.Simple(int64(len(files)), "Scanning for secrets")

	jobs := make(chan string)
	results := make(chan fileResult)
	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- s.scanFile(path)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	result := &Result{Run: run}
	for fr := range results {
		result.FilesScanned++
		result.LinesScanned += fr.lines
		result.Findings = append(result.Findings, fr.findings...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortFindings(result.Findings)
	for i := range result.Findings {
		result.Findings[i].ID = fmt.Sprintf("SK-%d", i+1)
	}
	result.Duration = time.Since(start)

	logging.Debug("secret scan complete",
		logging.Operation("scan_secrets"),
		logging.Count(len(result.Findings)),
		logging.Duration(result.Duration),
	)
	return result, nil
}

func (s *Scanner) scanFile(path string) fileResult {
	// #nosec G304 - scan targets are user-specified paths
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("skipping unreadable file", logging.Path(path), logging.Err(err))
		return fileResult{}
	}

	lines := strings.Split(string(data), "\n")
	fr := fileResult{lines: len(lines)}

	confidenceBase := 0.95
	if isTestPath(path) {
		confidenceBase *= 0.5
	}

	// Hashes matched by provider patterns in this file; entropy skips
	// them so a value never reports twice.
	seen := make(map[string]bool)

	for i, line := range lines {
		lineNo := i + 1

		for pi := range s.patterns {
			p := &s.patterns[pi]
			if !p.Severity.AtLeast(s.opts.MinSeverity) {
				continue
			}
			for _, loc := range p.Regexp.FindAllStringIndex(line, -1) {
				value := line[loc[0]:loc[1]]
				hash := scan.HashValue(value)
				if s.suppressed(p, path, value, hash) {
					continue
				}
				seen[hash] = true
				fr.findings = append(fr.findings, Finding{
					Rule:        p.ID,
					Name:        p.Name,
					Provider:    p.Provider,
					Severity:    p.Severity,
					Path:        path,
					Line:        lineNo,
					Column:      loc[0] + 1,
					Value:       scan.MaskValue(value),
					ValueHash:   hash,
					Confidence:  confidenceBase,
					RiskScore:   riskScore(p.Severity, path, confidenceBase),
					Context:     scan.Excerpt(lines, lineNo, 2),
					Remediation: remediationFor(p.Provider),
				})
			}
		}

		if s.opts.NoEntropy || !scan.SeverityLow.AtLeast(s.opts.MinSeverity) {
			continue
		}
		if isCommentLine(line) {
			continue
		}
		for _, cand := range extractEntropyCandidates(line) {
			hash := scan.HashValue(cand.value)
			if seen[hash] {
				continue
			}
			if IsPlaceholder(cand.value) || s.opts.Allowlist.Allows(RuleEntropy, path, cand.value, hash) {
				continue
			}
			entropy := ShannonEntropy(cand.value)
			if entropy < s.opts.EntropyThreshold {
				continue
			}
			if !mixedCharClasses(cand.value) {
				continue
			}
			confidence := 0.6
			if hasEntropyKeyword(line) {
				confidence = 0.8
			}
			seen[hash] = true
			fr.findings = append(fr.findings, Finding{
				Rule:        RuleEntropy,
				Name:        "High Entropy String",
				Provider:    "Unknown",
				Severity:    scan.SeverityLow,
				Path:        path,
				Line:        lineNo,
				Column:      cand.column,
				Value:       scan.MaskValue(cand.value),
				ValueHash:   hash,
				Confidence:  confidence,
				RiskScore:   riskScore(scan.SeverityLow, path, confidence),
				Entropy:     entropy,
				Context:     scan.Excerpt(lines, lineNo, 2),
				Remediation: remediationFor("Unknown"),
			})
		}
	}

	return fr
}

// suppressed applies the pattern's own false-positive forms, the
// global placeholder markers, and the allowlist.
func (s *Scanner) suppressed(p *Pattern, path, value, hash string) bool {
	for _, fp := range p.FalsePositives {
		if fp.MatchString(value) {
			return true
		}
	}
	if IsPlaceholder(value) {
		return true
	}
	return s.opts.Allowlist.Allows(p.ID, path, value, hash)
}

// placeholderMarkers are substrings that mark sample or template
// values across all rules.
var placeholderMarkers = []string{
	"EXAMPLE", "example", "YOUR_", "your_", "REPLACE", "replace",
	"INSERT", "insert", "PLACEHOLDER", "placeholder", "TODO", "todo",
	"XXXX", "xxxx", "****", "0000000000", "1234567890",
	"test_api_key", "fake_", "mock_", "dummy_",
}

// IsPlaceholder reports whether a value looks like sample or template
// data rather than a live credential. The history scanner shares it.
func IsPlaceholder(value string) bool {
	for _, m := range placeholderMarkers {
		if strings.Contains(value, m) {
			return true
		}
	}
	return false
}

// isCommentLine guards the entropy pass; hashes and IDs live in
// comments too often to flag there.
func isCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"#", "//", "/*", "*", "--", "<!--"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// testPathMarkers identify test and fixture trees where hits are half
// as credible.
var testPathMarkers = []string{
	"test", "spec", "mock", "fake", "dummy", "example", "sample", "demo", "fixture",
}

func isTestPath(path string) bool {
	lower := strings.ToLower(path)
	for _, m := range testPathMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// scannableExtensions are file types worth scanning in a tree walk.
var scannableExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".java": true, ".go": true, ".rb": true, ".php": true, ".cs": true,
	".swift": true, ".kt": true, ".rs": true, ".c": true, ".cpp": true,
	".h": true, ".hpp": true, ".scala": true,
	".env": true, ".json": true, ".yaml": true, ".yml": true, ".xml": true,
	".toml": true, ".ini": true, ".conf": true, ".cfg": true,
	".properties": true, ".config": true,
	".tf": true, ".tfvars": true, ".hcl": true,
	".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".bat": true, ".cmd": true,
	".sql": true, ".graphql": true, ".prisma": true, ".txt": true, ".md": true, ".rst": true,
}

// alwaysScanNames are files scanned regardless of extension.
var alwaysScanNames = map[string]bool{
	".env": true, ".env.local": true, ".env.development": true,
	".env.production": true, ".env.test": true,
	"dockerfile": true, "docker-compose.yml": true, "docker-compose.yaml": true,
	".npmrc": true, ".pypirc": true, ".netrc": true, ".pgpass": true, ".my.cnf": true,
	"credentials": true, "secrets": true, "config": true, "settings": true,
}

func shouldScan(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if alwaysScanNames[name] {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && scannableExtensions[ext]
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Rule < b.Rule
	})
}
