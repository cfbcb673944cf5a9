// Package gitscan finds secrets in git commit history by scanning the
// added lines of each commit's diff. A finding that still matches the
// working tree HEAD is urgent; one that was later removed still calls
// for rotation and a history rewrite.
package gitscan

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/progress"
	"github.com/devskills/skillkit/internal/scan"
	"github.com/devskills/skillkit/internal/secscan"
)

// Options configures a history scan.
type Options struct {
	// Depth bounds how many commits to inspect. Zero means 100.
	Depth int
	// Branch scans a specific branch instead of the checked-out one.
	Branch string
	// AllBranches scans commits reachable from any ref.
	AllBranches bool
	// Timeout bounds each git invocation. Zero means 30 seconds.
	Timeout time.Duration
}

// Commit is the metadata scanned for one history entry.
type Commit struct {
	Hash    string
	Short   string
	Author  string
	Email   string
	Date    string
	Message string
}

// Finding is one secret detected in history.
type Finding struct {
	ID           string        `json:"id"`
	Rule         string        `json:"rule"`
	Name         string        `json:"name"`
	Provider     string        `json:"provider"`
	Severity     scan.Severity `json:"severity"`
	Commit       string        `json:"commit"`
	CommitShort  string        `json:"commit_short"`
	Author       string        `json:"author"`
	Email        string        `json:"email"`
	Date         string        `json:"date"`
	Message      string        `json:"message"`
	File         string        `json:"file"`
	Line         int           `json:"line"`
	Branch       string        `json:"branch"`
	Value        string        `json:"value_preview"`
	ValueHash    string        `json:"value_hash"`
	StillPresent bool          `json:"still_present"`
	RemovedIn    string        `json:"removed_in,omitempty"`
}

// Result is everything one history scan produced.
type Result struct {
	Run            scan.Run      `json:"run"`
	Repo           string        `json:"repo"`
	Branch         string        `json:"branch"`
	CommitsScanned int           `json:"commits_scanned"`
	Findings       []Finding     `json:"findings"`
	Duration       time.Duration `json:"-"`
}

// StillPresent returns the findings whose value is still in HEAD.
func (r *Result) StillPresent() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.StillPresent {
			out = append(out, f)
		}
	}
	return out
}

// Removed returns the findings whose value left the tree but remains
// in history.
func (r *Result) Removed() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.StillPresent {
			out = append(out, f)
		}
	}
	return out
}

// ExitCode maps findings to the scanner exit code. Only values still
// present in HEAD count; rotated history-only hits do not fail CI.
func (r *Result) ExitCode() int {
	var sevs []scan.Severity
	for _, f := range r.Findings {
		if f.StillPresent {
			sevs = append(sevs, f.Severity)
		}
	}
	return scan.ExitCode(sevs)
}

// Scanner runs secret detection over a repository's history.
type Scanner struct {
	opts     Options
	repo     string
	patterns []secscan.Pattern
}

// New builds a scanner for the repository at repo.
func New(repo string, opts Options) *Scanner {
	if opts.Depth <= 0 {
		opts.Depth = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	// History noise drowns out medium-and-below rules, so only the
	// rules worth a rewrite are kept.
	var patterns []secscan.Pattern
	for _, p := range secscan.DefaultPatterns() {
		if p.Severity.AtLeast(scan.SeverityHigh) {
			patterns = append(patterns, p)
		}
	}
	return &Scanner{opts: opts, repo: repo, patterns: patterns}
}

// git runs one git command in the repository with the configured
// timeout and returns its stdout.
func (s *Scanner) git(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	// #nosec G204 - args are fixed subcommands plus validated values
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repo
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}

// Scan walks the configured slice of history newest-first.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	run := scan.NewRun()
	start := time.Now()

	if _, err := s.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%q is not a git repository: %w", s.repo, err)
	}

	branch := s.opts.Branch
	if s.opts.AllBranches {
		branch = "all"
	} else if branch == "" {
		out, err := s.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return nil, err
		}
		branch = strings.TrimSpace(out)
	}

	commits, err := s.commits(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Run: run, Repo: s.repo, Branch: branch}
	bar := progress.Simple(int64(len(commits)), "Scanning git history")
	seen := make(map[string]bool)

	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Findings = append(result.Findings, s.scanCommit(ctx, c, branch, seen)...)
		result.CommitsScanned++
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	result.Duration = time.Since(start)
	logging.Debug("history scan complete",
		logging.Operation("scan_history"),
		logging.Count(len(result.Findings)),
		logging.Duration(result.Duration),
	)
	return result, nil
}

// commits lists the history slice to scan, newest first.
func (s *Scanner) commits(ctx context.Context) ([]Commit, error) {
	args := []string{"log", "--format=%H|%h|%an|%ae|%aI|%s", "-n", strconv.Itoa(s.opts.Depth)}
	switch {
	case s.opts.AllBranches:
		args = append(args, "--all")
	case s.opts.Branch != "":
		args = append(args, s.opts.Branch)
	}

	out, err := s.git(ctx, args...)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 6)
		if len(parts) != 6 {
			continue
		}
		msg := parts[5]
		if len(msg) > 100 {
			msg = msg[:100]
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Short:   parts[1],
			Author:  parts[2],
			Email:   parts[3],
			Date:    parts[4],
			Message: msg,
		})
	}
	return commits, nil
}

// scanCommit scans the added lines of one commit's diff. seen dedupes
// values across commits; history repeats the same secret many times
// and one report entry per value is enough.
func (s *Scanner) scanCommit(ctx context.Context, c Commit, branch string, seen map[string]bool) []Finding {
	diff, err := s.git(ctx, "show", "--format=", "-p", c.Hash)
	if err != nil {
		logging.Warn("skipping unreadable commit", logging.Operation("scan_history"), logging.Err(err))
		return nil
	}

	var findings []Finding
	n := 0
	for _, add := range parseAdditions(diff) {
		for pi := range s.patterns {
			p := &s.patterns[pi]
			loc := p.Regexp.FindStringIndex(add.text)
			if loc == nil {
				continue
			}
			value := add.text[loc[0]:loc[1]]
			if s.falsePositive(p, value) {
				continue
			}
			hash := scan.HashValue(value)
			if seen[hash] {
				continue
			}
			seen[hash] = true

			f := Finding{
				Rule:        p.ID,
				Name:        p.Name,
				Provider:    p.Provider,
				Severity:    p.Severity,
				Commit:      c.Hash,
				CommitShort: c.Short,
				Author:      c.Author,
				Email:       c.Email,
				Date:        c.Date,
				Message:     c.Message,
				File:        add.file,
				Line:        add.line,
				Branch:      branch,
				Value:       scan.MaskValue(value),
				ValueHash:   hash,
			}
			f.StillPresent = s.stillPresent(ctx, add.file, value)
			if !f.StillPresent {
				f.RemovedIn = s.removedIn(ctx, add.file, value)
			}
			n++
			f.ID = fmt.Sprintf("GS-%s-%04d", c.Short, n)
			findings = append(findings, f)
		}
	}
	return findings
}

func (s *Scanner) falsePositive(p *secscan.Pattern, value string) bool {
	for _, fp := range p.FalsePositives {
		if fp.MatchString(value) {
			return true
		}
	}
	return secscan.IsPlaceholder(value)
}

// stillPresent reports whether the value is in the HEAD version of the
// file. A missing file means the secret left the tree.
func (s *Scanner) stillPresent(ctx context.Context, file, value string) bool {
	out, err := s.git(ctx, "show", "HEAD:"+file)
	if err != nil {
		return false
	}
	return strings.Contains(out, value)
}

// removedIn finds the commit that removed the value from the file.
// git log -S lists every commit changing the occurrence count, newest
// first; with more than one the newest is the removal.
func (s *Scanner) removedIn(ctx context.Context, file, value string) string {
	out, err := s.git(ctx, "log", "--oneline", "-S", value, "--", file)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || lines[0] == "" {
		return ""
	}
	hash, _, _ := strings.Cut(lines[0], " ")
	return hash
}
