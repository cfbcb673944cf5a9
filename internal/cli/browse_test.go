package cli

import (
	"strings"
	"testing"
)

func TestBrowseCommand_RequiresTerminal(t *testing.T) {
	useSkillsRoot(t)

	// Stdout is a pipe while output is captured, so the interactive
	// browser must refuse to start.
	_, err := runCommand(t, "browse")
	if err == nil {
		t.Fatal("expected an error without a terminal")
	}
	if !strings.Contains(err.Error(), "browse requires an interactive terminal") {
		t.Errorf("unexpected error: %v", err)
	}
}
