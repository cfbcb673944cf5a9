// Package export serializes the library index as JSON, YAML, or
// Markdown for consumption outside skillkit.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
)

// Format represents the output format for exported skills.
type Format string

const (
	// FormatJSON exports skills as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports skills as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown exports skills as Markdown.
	FormatMarkdown Format = "markdown"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns all supported export formats.
func AllFormats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported format %q (valid: json, yaml, markdown)", s)
	}
	return format, nil
}

// Options configures export behavior.
type Options struct {
	// Format specifies the output format.
	Format Format
	// Pretty enables pretty-printing for JSON/YAML.
	Pretty bool
	// IncludeMetadata includes path, keywords, and timestamps.
	IncludeMetadata bool
	// Source filters skills by source (empty means all).
	Source model.Source
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{
		Format:          FormatJSON,
		Pretty:          true,
		IncludeMetadata: true,
	}
}

// Exporter handles exporting skills to different formats.
type Exporter struct {
	opts Options
}

// New creates a new Exporter with the given options.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes the given skills to the writer in the configured format.
func (e *Exporter) Export(skills []model.Skill, w io.Writer) error {
	defer logging.Timer("export")()

	logging.Debug("starting export",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(skills)),
		logging.Operation("export"),
	)

	filtered := e.filterBySource(skills)
	if len(filtered) != len(skills) {
		logging.Debug("skills filtered by source",
			logging.Source(string(e.opts.Source)),
			logging.Count(len(filtered)),
			slog.Int("original", len(skills)),
		)
	}

	var err error
	switch e.opts.Format {
	case FormatJSON:
		err = e.exportJSON(filtered, w)
	case FormatYAML:
		err = e.exportYAML(filtered, w)
	case FormatMarkdown:
		err = e.exportMarkdown(filtered, w)
	default:
		err = fmt.Errorf("unsupported format: %s", e.opts.Format)
	}
	if err != nil {
		logging.Error("export failed",
			slog.String("format", string(e.opts.Format)),
			logging.Err(err),
		)
		return err
	}

	logging.Info("export completed",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(filtered)),
	)
	return nil
}

// ExportSingle exports a single skill to the writer.
func (e *Exporter) ExportSingle(skill model.Skill, w io.Writer) error {
	return e.Export([]model.Skill{skill}, w)
}

func (e *Exporter) filterBySource(skills []model.Skill) []model.Skill {
	if e.opts.Source == "" {
		return skills
	}
	var filtered []model.Skill
	for _, skill := range skills {
		if skill.Source == e.opts.Source {
			filtered = append(filtered, skill)
		}
	}
	return filtered
}

// exportSkill is the wire representation for export.
type exportSkill struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string            `json:"kind" yaml:"kind"`
	Source      string            `json:"source" yaml:"source"`
	Path        string            `json:"path,omitempty" yaml:"path,omitempty"`
	Keywords    []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Content     string            `json:"content" yaml:"content"`
	ModifiedAt  string            `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
}

func (e *Exporter) toExportSkill(skill model.Skill) exportSkill {
	es := exportSkill{
		Name:        skill.Name,
		Description: skill.Description,
		Kind:        string(skill.Kind),
		Source:      string(skill.Source),
		Content:     skill.Content,
	}
	if e.opts.IncludeMetadata {
		es.Path = skill.Path
		es.Keywords = skill.Keywords
		es.Metadata = skill.Metadata
		if !skill.ModifiedAt.IsZero() {
			es.ModifiedAt = skill.ModifiedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}
	return es
}

func (e *Exporter) exportJSON(skills []model.Skill, w io.Writer) error {
	exported := make([]exportSkill, len(skills))
	for i, skill := range skills {
		exported[i] = e.toExportSkill(skill)
	}
	encoder := json.NewEncoder(w)
	if e.opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(exported)
}

func (e *Exporter) exportYAML(skills []model.Skill, w io.Writer) error {
	exported := make([]exportSkill, len(skills))
	for i, skill := range skills {
		exported[i] = e.toExportSkill(skill)
	}
	encoder := yaml.NewEncoder(w)
	if e.opts.Pretty {
		encoder.SetIndent(2)
	}
	if err := encoder.Encode(exported); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

func (e *Exporter) exportMarkdown(skills []model.Skill, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# Skill Library Export\n\n")
	sb.WriteString(fmt.Sprintf("Total: %d skill(s)\n\n", len(skills)))

	if len(skills) > 0 {
		sb.WriteString("| Name | Kind | Source | Description |\n")
		sb.WriteString("|------|------|--------|-------------|\n")
		for _, skill := range skills {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				skill.Name, skill.Kind, skill.Source, tableCell(skill.Description)))
		}
		sb.WriteString("\n")
	}

	for i, skill := range skills {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(e.formatMarkdownSkill(skill))
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

func (e *Exporter) formatMarkdownSkill(skill model.Skill) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s\n\n", skill.Name))
	if skill.Description != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", skill.Description))
	}

	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Kind | %s |\n", skill.Kind))
	sb.WriteString(fmt.Sprintf("| Source | %s |\n", skill.Source))
	if e.opts.IncludeMetadata {
		if skill.Path != "" {
			sb.WriteString(fmt.Sprintf("| Path | `%s` |\n", skill.Path))
		}
		if len(skill.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("| Keywords | %s |\n", strings.Join(skill.Keywords, ", ")))
		}
		if !skill.ModifiedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("| Modified | %s |\n", skill.ModifiedAt.Format("2006-01-02 15:04:05")))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("### Content\n\n")
	if strings.TrimSpace(skill.Content) != "" {
		sb.WriteString("```\n")
		sb.WriteString(skill.Content)
		if !strings.HasSuffix(skill.Content, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	} else {
		sb.WriteString("*No content*\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// tableCell keeps multi-line descriptions from breaking the index table.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
