package e2e_test

import (
	"encoding/json"
	"flag"
	"os"
	"strings"
	"testing"

	"github.com/devskills/skillkit/internal/e2e"
)

var updateGolden = flag.Bool("update", false, "update golden files")

func TestMain(m *testing.M) {
	flag.Parse()
	e2e.SetUpdateGolden(*updateGolden)
	os.Exit(m.Run())
}

// TestVersionCommand verifies the version command works correctly.
func TestVersionCommand(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("version")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "skillkit version")
}

// TestVersionCommandJSON verifies version emits machine-readable output.
func TestVersionCommandJSON(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("version", "--json")

	e2e.AssertSuccess(t, result)
	var info struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		t.Fatalf("failed to decode version output: %v", err)
	}
	if info.Version == "" || info.GoVersion == "" {
		t.Errorf("expected version and go_version to be set, got %+v", info)
	}
}

// TestListShowsBuiltinSkills verifies a fresh environment exposes the
// embedded skill set.
func TestListShowsBuiltinSkills(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("list")

	e2e.AssertSuccess(t, result)
	for _, name := range []string{"aws-cli", "github-actions", "jest-vitest", "nginx", "vim"} {
		e2e.AssertOutputContains(t, result, name)
	}
	e2e.AssertOutputContains(t, result, "Total: 5 skill(s)")
}

// TestListUserSource verifies source filtering against a golden table.
func TestListUserSource(t *testing.T) {
	h := e2e.NewHarness(t)
	h.UserSkillsFixture().WriteSkillDir("alpha-skill", "Alpha test skill", "# alpha-skill\n\nBody.\n")

	result := h.Run("list", "--source", "user")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputMatches(t, result, "testdata", "list_user")
}

// TestListJSON verifies the JSON listing shape.
func TestListJSON(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("list", "--json", "--source", "builtin")

	e2e.AssertSuccess(t, result)
	var listings []struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &listings); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(listings) != 5 {
		t.Fatalf("expected 5 builtin skills, got %d", len(listings))
	}
	for _, l := range listings {
		if l.Source != "builtin" {
			t.Errorf("expected builtin source for %s, got %q", l.Name, l.Source)
		}
	}
}

// TestListKindFilter verifies kind filtering; the embedded skills are
// all references, so filtering for tools leaves nothing.
func TestListKindFilter(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("list", "--kind", "tool")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "No skills found.")
}

// TestListInvalidSource verifies source validation.
func TestListInvalidSource(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("list", "--source", "bogus")

	e2e.AssertError(t, result)
	e2e.AssertErrorContains(t, result, "invalid source")
}

// TestShowPipesMarkdown verifies show prints the document body when
// stdout is not a terminal.
func TestShowPipesMarkdown(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("show", "nginx")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "# Nginx")
}

// TestShowRawPrintsStoredDocument verifies --raw reproduces the file
// byte for byte, frontmatter included.
func TestShowRawPrintsStoredDocument(t *testing.T) {
	h := e2e.NewHarness(t)
	doc := e2e.SkillDocument("epsilon-notes", "Epsilon notes", "# epsilon-notes\n\nBody text.\n")
	h.UserSkillsFixture().WriteFile("epsilon-notes/SKILL.md", doc)

	result := h.Run("show", "epsilon-notes", "--raw")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputEquals(t, result, doc)
}

// TestShowUnknownSkill verifies the not-found error suggests search.
func TestShowUnknownSkill(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("show", "no-such-skill")

	e2e.AssertError(t, result)
	e2e.AssertErrorContains(t, result, "not found")
}

// TestSearchFindsBuiltinSkill verifies search ranks a name match.
func TestSearchFindsBuiltinSkill(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("search", "nginx")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "nginx")
	e2e.AssertOutputContains(t, result, "match(es) for")
}

// TestSearchNoMatches verifies the empty-result message.
func TestSearchNoMatches(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("search", "qqplumbus")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, `No skills match "qqplumbus".`)
}

// TestLintCleanSkill verifies a well-formed skill passes lint.
func TestLintCleanSkill(t *testing.T) {
	h := e2e.NewHarness(t)
	path := h.TempFixture().WriteSkillDir("clean-skill", "A clean skill", "# clean-skill\n\nBody.\n")

	result := h.Run("lint", path)

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "no problems")
}

// TestLintFailsOnBrokenSkill verifies lint reports problems and exits
// nonzero.
func TestLintFailsOnBrokenSkill(t *testing.T) {
	h := e2e.NewHarness(t)
	path := h.TempFixture().WriteFile("broken.md", "# No frontmatter\n\nJust text.\n")

	result := h.Run("lint", path)

	e2e.AssertError(t, result)
	e2e.AssertExitCode(t, result, 1)
	e2e.AssertOutputContains(t, result, "frontmatter-missing")
	e2e.AssertErrorContains(t, result, "lint failed")
}

// TestStatsCommand verifies the stats overview renders.
func TestStatsCommand(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("stats")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "skillkit Statistics")
	e2e.AssertOutputContains(t, result, "builtin")
	e2e.AssertOutputContains(t, result, "Totals:")
}

// TestDupesCleanLibrary verifies the builtin set has no near-duplicates.
func TestDupesCleanLibrary(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("dupes", "--threshold", "0.95")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "No near-duplicate skills found.")
}

// TestBackupsListEmpty verifies a fresh environment has no backups.
func TestBackupsListEmpty(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("backups", "list")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "No backups found.")
}

// TestHelpListsCommands verifies urfave/cli wires every command into
// the generated help.
func TestHelpListsCommands(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("help")

	e2e.AssertSuccess(t, result)
	for _, cmd := range []string{"list", "show", "search", "lint", "dupes", "new", "install", "uninstall", "bundle", "export", "stats", "browse", "backups", "scan", "version"} {
		if !strings.Contains(result.Stdout, cmd) {
			t.Errorf("expected help to mention %q", cmd)
		}
	}
}
