// Package template scaffolds new skill documents from built-in
// text/template definitions, one per skill kind.
package template

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"
	"time"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/parser"
)

// TemplateData holds the values substituted into a skill template.
type TemplateData struct {
	Name        string
	Description string
	Keywords    []string
	Kind        string
	Date        string
}

// Generator renders skill scaffolds from registered templates.
type Generator struct {
	templates map[model.Kind]*template.Template
}

// New creates a Generator with the built-in templates registered.
func New() (*Generator, error) {
	g := &Generator{templates: make(map[model.Kind]*template.Template)}

	builtin := map[model.Kind]string{
		model.KindReference: referenceTemplate,
		model.KindTool:      toolTemplate,
	}
	for kind, content := range builtin {
		tmpl, err := template.New(string(kind)).Parse(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		g.templates[kind] = tmpl
	}
	return g, nil
}

// LoadCustomTemplate registers a template from a file, replacing the
// built-in one for that kind.
func (g *Generator) LoadCustomTemplate(kind model.Kind, path string) error {
	content, err := os.ReadFile(path) // #nosec G304 -- the user names their own template file
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}
	tmpl, err := template.New(string(kind)).Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	g.templates[kind] = tmpl
	return nil
}

// Generate renders the template for kind with the given data. Kind and
// Date default to the template kind and today.
func (g *Generator) Generate(kind model.Kind, data TemplateData) (string, error) {
	tmpl, exists := g.templates[kind]
	if !exists {
		return "", fmt.Errorf("no template for kind %s", kind)
	}

	if data.Kind == "" {
		data.Kind = string(kind)
	}
	if data.Date == "" {
		data.Date = time.Now().Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// ValidateGenerated re-parses generated content as a skill document so
// a broken template never reaches disk.
func (g *Generator) ValidateGenerated(content string) error {
	skill, err := parser.ParseSkillContent([]byte(content), parser.SkillFileName)
	if err != nil {
		return fmt.Errorf("generated content does not parse as a skill: %w", err)
	}
	if skill.Name == "" {
		return fmt.Errorf("generated content has no skill name")
	}
	return nil
}

// Scaffold renders, validates, and writes a new skill under
// dir/<name>/SKILL.md. Tool skills also get a scripts/ directory with a
// stub script. Returns the path of the written SKILL.md.
func (g *Generator) Scaffold(dir string, kind model.Kind, data TemplateData, force bool) (string, error) {
	if err := parser.ValidateSkillName(data.Name); err != nil {
		return "", err
	}

	content, err := g.Generate(kind, data)
	if err != nil {
		return "", err
	}
	if err := g.ValidateGenerated(content); err != nil {
		return "", err
	}

	skillDir := filepath.Join(dir, data.Name)
	skillPath := filepath.Join(skillDir, parser.SkillFileName)
	if !force {
		if _, err := os.Stat(skillPath); err == nil {
			return "", fmt.Errorf("skill %s already exists at %s (use --force to overwrite)", data.Name, skillPath)
		}
	}

	if err := os.MkdirAll(skillDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, []byte(content), 0o644); err != nil { // #nosec G306 -- skill documents are sharable
		return "", fmt.Errorf("failed to write skill file: %w", err)
	}

	if kind == model.KindTool {
		scriptsDir := filepath.Join(skillDir, "scripts")
		if err := os.MkdirAll(scriptsDir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create scripts directory: %w", err)
		}
		script, err := renderStubScript(data)
		if err != nil {
			return "", err
		}
		scriptPath := filepath.Join(scriptsDir, "run.sh")
		if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil { // #nosec G306 -- stub script must be executable
			return "", fmt.Errorf("failed to write stub script: %w", err)
		}
	}

	return skillPath, nil
}

// ListTemplates returns the registered template kinds, sorted.
func (g *Generator) ListTemplates() []string {
	kinds := make([]string, 0, len(g.templates))
	for kind := range g.templates {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	return kinds
}

func renderStubScript(data TemplateData) (string, error) {
	tmpl, err := template.New("stub").Parse(stubScriptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse stub script template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render stub script: %w", err)
	}
	return buf.String(), nil
}
