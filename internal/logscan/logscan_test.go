package logscan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devskills/skillkit/internal/scan"
	"github.com/devskills/skillkit/internal/util"
)

func TestExtractStatement(t *testing.T) {
	cases := map[string]struct {
		content string
		prefix  string
		want    string
	}{
		"simple":       {"logger.info(patient.name)", "logger.info(", "patient.name"},
		"nested calls": {"print(get(a), b)", "print(", "get(a), b"},
		"multiline":    {"log.info(\n\ta,\n\tb,\n)", "log.info(", "\n\ta,\n\tb,\n"},
		"unbalanced":   {"print(oops", "print(", "oops"},
		"empty args":   {"print()", "print(", ""},
		"puts line":    {"puts patient.name\nnext", "puts ", "patient.name"},
		"puts at eof":  {"puts x", "puts ", "x"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if !strings.HasPrefix(tc.content, tc.prefix) {
				t.Fatalf("fixture %q does not start with %q", tc.content, tc.prefix)
			}
			got := extractStatement(tc.content, len(tc.prefix))
			if got != tc.want {
				t.Errorf("extractStatement = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLineText(t *testing.T) {
	content := "a\n  log.info(x)\nb"
	got := lineText(content, strings.Index(content, "log"))
	if got != "log.info(x)" {
		t.Errorf("lineText = %q, want %q", got, "log.info(x)")
	}
}

func TestLineText_Truncates(t *testing.T) {
	long := strings.Repeat("x", 160)
	got := lineText(long, 0)
	if len(got) != 153 {
		t.Errorf("truncated length = %d, want 153", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated line %q does not end with ellipsis", got)
	}
}

func TestRedactContext(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"ssn":   {"sent 123-45-6789", "sent [SSN-REDACTED]"},
		"email": {"notify bob@example.com now", "notify [EMAIL-REDACTED] now"},
		"both":  {"123-45-6789 to a@b.io", "[SSN-REDACTED] to [EMAIL-REDACTED]"},
		"clean": {"request completed", "request completed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := redactContext(tc.in); got != tc.want {
				t.Errorf("redactContext(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Options{})
	if s.opts.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d, want %d", s.opts.MaxFileSize, 1<<20)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "app.js"),
		`console.log("member = " + JSON.stringify(member));`+"\n")
	util.WriteFile(t, filepath.Join(dir, "app.py"),
		"import logging\n"+
			"\n"+
			"logger.info(f\"Patient {patient.name} admitted\")\n"+
			"print(\"hello world\")\n"+
			"logger.debug(\"patient_id = %s\", patient.id)\n")

	res, err := New(Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if res.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", res.FilesScanned)
	}
	if res.StatementsAnalyzed != 4 {
		t.Errorf("StatementsAnalyzed = %d, want 4", res.StatementsAnalyzed)
	}
	if len(res.Findings) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(res.Findings), res.Findings)
	}

	js := res.Findings[0]
	if !strings.HasPrefix(js.ID, "LOG-") || !strings.HasSuffix(js.ID, "-0001") {
		t.Errorf("first ID = %q, want LOG-<date>-0001", js.ID)
	}
	if js.File != filepath.Join(dir, "app.js") || js.Line != 1 {
		t.Errorf("first finding at %s:%d, want app.js:1", js.File, js.Line)
	}
	if js.Type != "object_dump" || js.Severity != scan.SeverityCritical || js.RiskScore != 95 {
		t.Errorf("first finding = %s/%s/%d, want object_dump/critical/95", js.Type, js.Severity, js.RiskScore)
	}
	if js.Language != "javascript" || js.LogCall != "console.log" {
		t.Errorf("first finding call = %s/%s, want javascript/console.log", js.Language, js.LogCall)
	}
	if !strings.Contains(js.Context, "JSON.stringify(member)") {
		t.Errorf("context %q missing statement text", js.Context)
	}
	if len(js.Remediation) == 0 || js.Remediation[0] != typeRemediation["object_dump"][0] {
		t.Errorf("object_dump remediation = %v", js.Remediation)
	}

	py := res.Findings[1]
	if !strings.HasSuffix(py.ID, "-0002") {
		t.Errorf("second ID = %q, want suffix -0002", py.ID)
	}
	if py.File != filepath.Join(dir, "app.py") || py.Line != 3 {
		t.Errorf("second finding at %s:%d, want app.py:3", py.File, py.Line)
	}
	if py.Type != "patient_name" || py.Severity != scan.SeverityHigh || py.RiskScore != 80 {
		t.Errorf("second finding = %s/%s/%d, want patient_name/high/80", py.Type, py.Severity, py.RiskScore)
	}
	if py.Language != "python" || py.LogCall != "logger.info" {
		t.Errorf("second finding call = %s/%s, want python/logger.info", py.Language, py.LogCall)
	}

	if got := res.ExitCode(); got != 2 {
		t.Errorf("ExitCode = %d, want 2", got)
	}
}

func TestScan_ContextRedaction(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "notify.py"),
		`logger.error("SSN: 123-45-6789 for bob@example.com")`+"\n")

	res, err := New(Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(res.Findings))
	}

	ctxLine := res.Findings[0].Context
	if strings.Contains(ctxLine, "123-45-6789") || strings.Contains(ctxLine, "bob@example.com") {
		t.Errorf("context %q leaks raw values", ctxLine)
	}
	if !strings.Contains(ctxLine, "[SSN-REDACTED]") || !strings.Contains(ctxLine, "[EMAIL-REDACTED]") {
		t.Errorf("context %q missing redaction markers", ctxLine)
	}
}

func TestScan_OneFindingPerStatement(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "intake.py"),
		`logger.warning("ssn and dob missing for patient")`+"\n")

	res, err := New(Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(res.Findings), res.Findings)
	}
	if res.Findings[0].Type != "ssn" {
		t.Errorf("finding type = %q, want the first matching type ssn", res.Findings[0].Type)
	}
}

func TestScan_CleanTree(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "job.go"),
		"package main\n\nfunc run() {\n\tlog.Printf(\"done in %s\", elapsed)\n}\n")

	res, err := New(Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Findings) != 0 {
		t.Errorf("got %d findings, want 0: %+v", len(res.Findings), res.Findings)
	}
	if res.StatementsAnalyzed != 1 {
		t.Errorf("StatementsAnalyzed = %d, want 1", res.StatementsAnalyzed)
	}
	if got := res.ExitCode(); got != 0 {
		t.Errorf("ExitCode = %d, want 0", got)
	}
}

func TestScan_SkipsUnknownLanguages(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "notes.txt"), "logger.info(ssn)\n")
	util.WriteFile(t, filepath.Join(dir, "node_modules", "lib.js"), "console.log(patient_name)\n")

	res, err := New(Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.FilesScanned != 0 {
		t.Errorf("FilesScanned = %d, want 0", res.FilesScanned)
	}
	if len(res.Findings) != 0 {
		t.Errorf("got %d findings, want 0", len(res.Findings))
	}
}

func TestScan_SingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charts.py")
	util.WriteFile(t, path, `print(chart.mrn)`+"\n")

	res, err := New(Options{}).Scan(context.Background(), path)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", res.FilesScanned)
	}
	if len(res.Findings) != 1 || res.Findings[0].Type != "mrn" {
		t.Fatalf("findings = %+v, want one mrn finding", res.Findings)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := New(Options{}).Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("Scan on a missing root did not fail")
	}
}

func TestScan_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	util.WriteFile(t, filepath.Join(dir, "app.py"), "print(x)\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Scan(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResult_ExitCode(t *testing.T) {
	cases := []struct {
		name string
		sevs []scan.Severity
		want int
	}{
		{"critical", []scan.Severity{scan.SeverityCritical}, 2},
		{"high beats medium", []scan.Severity{scan.SeverityMedium, scan.SeverityHigh}, 1},
		{"medium only", []scan.Severity{scan.SeverityMedium, scan.SeverityLow}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := &Result{}
			for _, sev := range tc.sevs {
				res.Findings = append(res.Findings, Finding{Severity: sev})
			}
			if got := res.ExitCode(); got != tc.want {
				t.Errorf("ExitCode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestResult_Breakdowns(t *testing.T) {
	res := &Result{Findings: []Finding{
		{Type: "ssn", Severity: scan.SeverityCritical},
		{Type: "ssn", Severity: scan.SeverityCritical},
		{Type: "email", Severity: scan.SeverityMedium},
	}}

	bySev := res.BySeverity()
	if bySev[scan.SeverityCritical] != 2 || bySev[scan.SeverityMedium] != 1 {
		t.Errorf("BySeverity = %v", bySev)
	}
	byType := res.ByType()
	if byType["ssn"] != 2 || byType["email"] != 1 {
		t.Errorf("ByType = %v", byType)
	}
}
