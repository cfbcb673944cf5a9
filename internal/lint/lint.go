// Package lint checks skill documents for hygiene problems: missing
// metadata, dead reference links, duplicate names, broken requires
// chains. Findings carry stable rule IDs so individual rules can be
// disabled through configuration.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/config"
	"github.com/devskills/skillkit/internal/dependency"
	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/parser"
)

// Severity ranks lint findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule IDs are stable so disabled_rules configuration keeps working
// across releases.
const (
	RuleFrontmatterMissing = "frontmatter-missing"
	RuleFrontmatterInvalid = "frontmatter-invalid"
	RuleNameMissing        = "name-missing"
	RuleNameFormat         = "name-format"
	RuleDescriptionMissing = "description-missing"
	RuleDescriptionLength  = "description-length"
	RuleReferenceMissing   = "reference-missing"
	RuleDuplicateName      = "duplicate-name"
	RuleEmptyContent       = "empty-content"
	RuleUnbalancedFences   = "unbalanced-fences"
	RuleRequiresUnknown    = "requires-unknown"
	RuleRequiresCycle      = "requires-cycle"
	RuleKeywordDuplicate   = "keyword-duplicate"
)

// Finding is a single lint hit on one file.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Skill    string   `json:"skill,omitempty"`
	Message  string   `json:"message"`
}

// Result collects the findings of one lint run.
type Result struct {
	Findings []Finding `json:"findings"`
	Checked  int       `json:"checked"`
}

// Errors returns findings with error severity.
func (r *Result) Errors() []Finding {
	return r.bySeverity(SeverityError)
}

// Warnings returns findings with warning severity.
func (r *Result) Warnings() []Finding {
	return r.bySeverity(SeverityWarning)
}

func (r *Result) bySeverity(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any finding has error severity.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings reports whether any finding has warning severity.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// Failed reports whether the run should exit nonzero. Strict mode
// promotes warnings; info findings never fail a run.
func (r *Result) Failed(strict bool) bool {
	if r.HasErrors() {
		return true
	}
	return strict && r.HasWarnings()
}

// Summary returns a one-line account of the run.
func (r *Result) Summary() string {
	files := "files"
	if r.Checked == 1 {
		files = "file"
	}
	if len(r.Findings) == 0 {
		return fmt.Sprintf("checked %d %s: no problems", r.Checked, files)
	}

	var parts []string
	if n := len(r.Errors()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "error")))
	}
	if n := len(r.Warnings()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "warning")))
	}
	if n := len(r.bySeverity(SeverityInfo)); n > 0 {
		parts = append(parts, fmt.Sprintf("%d info", n))
	}
	return fmt.Sprintf("checked %d %s: %s", r.Checked, files, strings.Join(parts, ", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// sortFindings orders findings by path, line, then rule so output is
// stable run to run.
func (r *Result) sortFindings() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// Options configures a lint run.
type Options struct {
	// Known lists skill names outside the linted set that requires may
	// legitimately reference, typically the loaded library.
	Known []string
}

// Linter runs hygiene checks over skill documents.
type Linter struct {
	cfg *config.Config
}

// New returns a linter using the given configuration. Nil means
// defaults.
func New(cfg *config.Config) *Linter {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Linter{cfg: cfg}
}

// LintPaths lints files and directories. Directories are expanded with
// the standard skill discovery rules.
func (l *Linter) LintPaths(ctx context.Context, paths []string, opts Options) (*Result, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot lint %q: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := parser.DiscoverWith(p, parser.DiscoverOptions{IgnoreGlobs: l.ignoreGlobs()})
		if err != nil {
			return nil, fmt.Errorf("discovering skills under %q: %w", p, err)
		}
		files = append(files, found...)
	}
	return l.LintFiles(ctx, files, opts)
}

// LintFiles lints the given skill files.
func (l *Linter) LintFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	result := &Result{}
	docs := make([]document, 0, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.lintFile(file, result)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		result.Checked++
	}

	l.checkDuplicateNames(docs, result)
	l.checkRequires(docs, opts.Known, result)

	result.sortFindings()

	logging.Debug("lint run complete",
		logging.Operation("lint"),
		logging.Count(result.Checked),
	)

	return result, nil
}

// document carries the per-file facts the cross-file rules need.
type document struct {
	path     string
	name     string
	requires []string
}

func (l *Linter) lintFile(path string, result *Result) (document, error) {
	// #nosec G304 - lint targets are user-specified paths
	raw, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("reading %q: %w", path, err)
	}

	doc := document{path: path}
	res := parser.SplitFrontmatter(raw)

	var fm map[string]any
	if !res.HasFrontmatter {
		l.report(result, Finding{
			Rule:     RuleFrontmatterMissing,
			Severity: SeverityError,
			Path:     path,
			Message:  "no metadata header found",
		})
	} else if parsed, err := parser.ParseFrontmatter(res); err != nil {
		l.report(result, Finding{
			Rule:     RuleFrontmatterInvalid,
			Severity: SeverityError,
			Path:     path,
			Message:  fmt.Sprintf("metadata header does not parse: %v", err),
		})
	} else {
		fm = parsed
	}

	name := stringField(fm, "name")
	if name == "" {
		name = parser.DeriveNameFromPath(path)
	}
	doc.name = name
	if name == "" {
		l.report(result, Finding{
			Rule:     RuleNameMissing,
			Severity: SeverityError,
			Path:     path,
			Message:  "skill has no name and none can be derived from the path",
		})
	} else if err := parser.ValidateSkillName(name); err != nil {
		l.report(result, Finding{
			Rule:     RuleNameFormat,
			Severity: SeverityError,
			Path:     path,
			Skill:    name,
			Message:  err.Error(),
		})
	}

	// Field rules only make sense once the header parses; a missing or
	// broken header is already an error above.
	if fm != nil {
		l.lintFields(path, doc.name, fm, &doc, result)
	}

	body := res.Content
	if strings.TrimSpace(body) == "" {
		l.report(result, Finding{
			Rule:     RuleEmptyContent,
			Severity: SeverityWarning,
			Path:     path,
			Skill:    doc.name,
			Message:  "skill body is empty",
		})
	}

	l.lintFences(path, doc.name, string(raw), body, result)
	l.lintLinks(path, doc.name, raw, result)

	return doc, nil
}

// lintFields checks the parsed frontmatter fields.
func (l *Linter) lintFields(path, name string, fm map[string]any, doc *document, result *Result) {
	desc := strings.TrimSpace(stringField(fm, "description"))
	maxLen := l.cfg.Lint.MaxDescriptionLength
	switch {
	case desc == "":
		l.report(result, Finding{
			Rule:     RuleDescriptionMissing,
			Severity: SeverityError,
			Path:     path,
			Skill:    name,
			Message:  "skill has no description",
		})
	case maxLen > 0 && len(desc) > maxLen:
		l.report(result, Finding{
			Rule:     RuleDescriptionLength,
			Severity: SeverityWarning,
			Path:     path,
			Skill:    name,
			Message:  fmt.Sprintf("description is %d characters, max is %d", len(desc), maxLen),
		})
	}

	seen := make(map[string]bool)
	for _, kw := range stringListField(fm, "keywords") {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if seen[k] {
			l.report(result, Finding{
				Rule:     RuleKeywordDuplicate,
				Severity: SeverityInfo,
				Path:     path,
				Skill:    name,
				Message:  fmt.Sprintf("keyword %q is listed more than once", k),
			})
		}
		seen[k] = true
	}

	doc.requires = stringListField(fm, "requires")

	// Listed supporting files must exist next to the document.
	dir := filepath.Dir(path)
	for _, field := range []string{"references", "scripts", "assets"} {
		for _, rel := range stringListField(fm, field) {
			if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
				l.report(result, Finding{
					Rule:     RuleReferenceMissing,
					Severity: SeverityError,
					Path:     path,
					Skill:    name,
					Message:  fmt.Sprintf("listed %s file %q not found", strings.TrimSuffix(field, "s"), rel),
				})
			}
		}
	}
}

// lintFences flags an odd number of ``` fences in the body. The line
// reported is the last fence seen, which is where the unclosed block
// usually starts.
func (l *Linter) lintFences(path, name, raw, body string, result *Result) {
	offset := strings.Count(raw, "\n") - strings.Count(body, "\n")
	fences := 0
	lastLine := 0
	for i, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences++
			lastLine = offset + i + 1
		}
	}
	if fences%2 == 1 {
		l.report(result, Finding{
			Rule:     RuleUnbalancedFences,
			Severity: SeverityWarning,
			Path:     path,
			Line:     lastLine,
			Skill:    name,
			Message:  "odd number of ``` fences, a code block is unclosed",
		})
	}
}

// lintLinks resolves relative Markdown links against the document's
// directory and flags targets that do not exist.
func (l *Linter) lintLinks(path, name string, raw []byte, result *Result) {
	dir := filepath.Dir(path)
	for _, link := range extractLinks(raw) {
		target := relativeTarget(link.Destination)
		if target == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(target))); err != nil {
			l.report(result, Finding{
				Rule:     RuleReferenceMissing,
				Severity: SeverityError,
				Path:     path,
				Line:     link.Line,
				Skill:    name,
				Message:  fmt.Sprintf("linked file %q not found", target),
			})
		}
	}
}

// checkDuplicateNames flags every document after the first to claim a
// name, ignoring case.
func (l *Linter) checkDuplicateNames(docs []document, result *Result) {
	byName := make(map[string][]document)
	for _, d := range docs {
		if d.name == "" {
			continue
		}
		k := strings.ToLower(d.name)
		byName[k] = append(byName[k], d)
	}

	keys := make([]string, 0, len(byName))
	for k := range byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		group := byName[k]
		for _, d := range group[1:] {
			l.report(result, Finding{
				Rule:     RuleDuplicateName,
				Severity: SeverityError,
				Path:     d.path,
				Skill:    d.name,
				Message:  fmt.Sprintf("skill name %q already used by %s", d.name, group[0].path),
			})
		}
	}
}

// checkRequires validates the requires graph over the linted documents
// plus any externally known names.
func (l *Linter) checkRequires(docs []document, known []string, result *Result) {
	skills := make([]model.Skill, 0, len(docs)+len(known))
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.name == "" {
			continue
		}
		skills = append(skills, model.Skill{Name: d.name, Requires: d.requires})
		present[strings.ToLower(d.name)] = true
	}
	for _, name := range known {
		if name == "" || present[strings.ToLower(name)] {
			continue
		}
		skills = append(skills, model.Skill{Name: name})
		present[strings.ToLower(name)] = true
	}

	for _, issue := range dependency.ValidateGraph(skills) {
		if len(issue.Skills) == 0 {
			continue
		}
		owner := issue.Skills[0]
		switch issue.Type {
		case "missing":
			l.report(result, Finding{
				Rule:     RuleRequiresUnknown,
				Severity: SeverityWarning,
				Path:     pathOf(docs, owner),
				Skill:    owner,
				Message:  issue.Message,
			})
		case "circular":
			l.report(result, Finding{
				Rule:     RuleRequiresCycle,
				Severity: SeverityError,
				Path:     pathOf(docs, owner),
				Skill:    owner,
				Message:  issue.Message,
			})
		}
	}
}

func pathOf(docs []document, name string) string {
	for _, d := range docs {
		if strings.EqualFold(d.name, name) {
			return d.path
		}
	}
	return ""
}

// report appends the finding unless its rule is disabled in config.
func (l *Linter) report(result *Result, f Finding) {
	if l.cfg.RuleDisabled(f.Rule) {
		return
	}
	result.Findings = append(result.Findings, f)
}

func (l *Linter) ignoreGlobs() []string {
	if len(l.cfg.Library.IgnoreGlobs) > 0 {
		return l.cfg.Library.IgnoreGlobs
	}
	return parser.DefaultIgnoreGlobs
}

// stringField reads a scalar frontmatter value as a string.
func stringField(fm map[string]any, key string) string {
	if fm == nil {
		return ""
	}
	if v, ok := fm[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// stringListField reads a frontmatter value that may be a single
// string or a list of strings.
func stringListField(fm map[string]any, key string) []string {
	if fm == nil {
		return nil
	}
	switch v := fm[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}
