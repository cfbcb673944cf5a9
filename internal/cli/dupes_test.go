package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSkillVariant writes a skill whose body is shared between tests so
// pairs of variants score 1.0 on content similarity.
func writeSkillVariant(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create skill dir: %v", err)
	}
	content := "---\nname: " + name + "\ndescription: Compose stack notes\n---\n\n" +
		"# Compose\n\nRun docker compose up, then docker compose logs -f.\n"
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write skill file: %v", err)
	}
}

func TestDupesCommand_NoDuplicates(t *testing.T) {
	useSkillsRoot(t)

	output, err := runCommand(t, "dupes", "--threshold", "0.95")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "No near-duplicate skills found.") {
		t.Errorf("expected no duplicates, got:\n%s", output)
	}
}

func TestDupesCommand_FindsPair(t *testing.T) {
	root := useSkillsRoot(t)
	writeSkillVariant(t, root, "docker-compose-v1")
	writeSkillVariant(t, root, "docker-compose-v2")

	output, err := runCommand(t, "dupes", "--threshold", "0.9")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{
		"docker-compose-v1",
		"docker-compose-v2",
		"content similarity 1.00",
		"1 duplicate pair(s) found",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestDupesCommand_JSON(t *testing.T) {
	root := useSkillsRoot(t)
	writeSkillVariant(t, root, "docker-compose-v1")
	writeSkillVariant(t, root, "docker-compose-v2")

	output, err := runCommand(t, "dupes", "--threshold", "0.9", "--json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var pairs []dupeOutput
	if err := json.Unmarshal([]byte(output), &pairs); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}

	pair := pairs[0]
	names := map[string]bool{pair.Skill1: true, pair.Skill2: true}
	if !names["docker-compose-v1"] || !names["docker-compose-v2"] {
		t.Errorf("unexpected pair %q / %q", pair.Skill1, pair.Skill2)
	}
	if pair.Source1 != "user" || pair.Source2 != "user" {
		t.Errorf("sources = %q / %q, want user", pair.Source1, pair.Source2)
	}
	if pair.ContentScore != 1.0 {
		t.Errorf("content score = %v, want 1.0", pair.ContentScore)
	}
	if pair.NameScore < 0.9 {
		t.Errorf("name score = %v, want >= 0.9", pair.NameScore)
	}
}
