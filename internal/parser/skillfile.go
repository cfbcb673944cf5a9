package parser

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
)

// SkillFileName is the manifest file name for directory-style skills.
const SkillFileName = "SKILL.md"

// knownFields are frontmatter keys mapped onto model.Skill fields.
// Everything else lands in Skill.Metadata.
var knownFields = map[string]bool{
	"name": true, "description": true, "keywords": true,
	"kind": true, "requires": true,
	"references": true, "scripts": true, "assets": true,
}

// ParseSkillFile parses a skill document from disk. The document is
// either a flat <name>.md file or a SKILL.md inside its own directory;
// for the latter the scripts/, references/ and assets/ subdirectories
// are inventoried as well.
func ParseSkillFile(filePath string) (model.Skill, error) {
	// #nosec G304 - filePath comes from directory traversal of a skill root
	content, err := os.ReadFile(filePath)
	if err != nil {
		return model.Skill{}, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}

	skill, kindExplicit, err := parseSkill(content, filePath)
	if err != nil {
		return model.Skill{}, err
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return model.Skill{}, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	skill.ModifiedAt = fileInfo.ModTime()

	if filepath.Base(filePath) == SkillFileName {
		skill.Dir = filepath.Dir(filePath)
		detectSkillDirectoryLayout(&skill)
		if !kindExplicit && len(skill.Scripts) > 0 {
			skill.Kind = model.KindTool
		}
	}

	return skill, nil
}

// ParseSkillContent parses skill content from bytes. The path is used
// for error messages and name derivation; nothing is read from disk.
func ParseSkillContent(content []byte, filePath string) (model.Skill, error) {
	skill, _, err := parseSkill(content, filePath)
	return skill, err
}

// ParseSkillFS parses a skill document from an fs.FS, such as the
// embedded builtin library. Paths use forward slashes regardless of
// platform.
func ParseSkillFS(fsys fs.FS, filePath string) (model.Skill, error) {
	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return model.Skill{}, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}

	skill, kindExplicit, err := parseSkill(content, filePath)
	if err != nil {
		return model.Skill{}, err
	}

	if info, err := fs.Stat(fsys, filePath); err == nil {
		skill.ModifiedAt = info.ModTime()
	}

	if path.Base(filePath) == SkillFileName {
		skill.Dir = path.Dir(filePath)
		detectSkillDirectoryLayoutFS(fsys, &skill)
		if !kindExplicit && len(skill.Scripts) > 0 {
			skill.Kind = model.KindTool
		}
	}

	return skill, nil
}

// parseSkill fills a model.Skill from raw document bytes. The second
// return reports whether the kind was set explicitly in frontmatter,
// so directory detection knows not to override it.
func parseSkill(content []byte, filePath string) (model.Skill, bool, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return model.Skill{}, false, fmt.Errorf("skill file %q is empty", filePath)
	}

	result := SplitFrontmatter(content)

	skill := model.Skill{
		Kind:     model.KindReference,
		Path:     filePath,
		Metadata: make(map[string]string),
	}
	kindExplicit := false

	if result.HasFrontmatter {
		fm, err := ParseFrontmatter(result)
		if err != nil {
			return model.Skill{}, false, fmt.Errorf("failed to parse frontmatter in %q: %w", filePath, err)
		}

		skill.Name = extractString(fm, "name")
		skill.Description = extractString(fm, "description")
		skill.Keywords = extractStringList(fm, "keywords")
		skill.Requires = extractStringList(fm, "requires")
		skill.References = extractStringList(fm, "references")
		skill.Scripts = extractStringList(fm, "scripts")
		skill.Assets = extractStringList(fm, "assets")

		if kindStr := extractString(fm, "kind"); kindStr != "" {
			kind, err := model.ParseKind(kindStr)
			if err != nil {
				logging.Warn("invalid kind in skill frontmatter",
					logging.Path(filePath),
					logging.Err(err),
				)
			} else {
				skill.Kind = kind
				kindExplicit = true
			}
		}

		// Store remaining frontmatter fields in metadata
		for key, val := range fm {
			if !knownFields[key] {
				if strVal, ok := val.(string); ok {
					skill.Metadata[key] = strVal
				} else {
					skill.Metadata[key] = fmt.Sprintf("%v", val)
				}
			}
		}
	}

	// If no name in frontmatter, derive it from the file path
	if skill.Name == "" {
		skill.Name = DeriveNameFromPath(filePath)
	}

	if err := ValidateSkillName(skill.Name); err != nil {
		return model.Skill{}, false, fmt.Errorf("invalid skill name %q in %q: %w", skill.Name, filePath, err)
	}

	skill.Content = NormalizeContent(result.Content)

	return skill, kindExplicit, nil
}

// DeriveNameFromPath extracts a skill name from a document path.
// SKILL.md files are named after their parent directory, flat files
// after the file stem.
func DeriveNameFromPath(filePath string) string {
	base := filepath.Base(filePath)
	if base == SkillFileName {
		return filepath.Base(filepath.Dir(filePath))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// detectSkillDirectoryLayout checks for standard skill subdirectories
// and appends any files found to the skill's Scripts, References and
// Assets lists.
func detectSkillDirectoryLayout(skill *model.Skill) {
	for _, sub := range layoutDirs(skill) {
		entries := listFiles(filepath.Join(skill.Dir, sub.dir))
		for _, entry := range entries {
			relPath := filepath.Join(sub.dir, entry)
			if !slices.Contains(*sub.target, relPath) {
				*sub.target = append(*sub.target, relPath)
			}
		}
	}
}

// detectSkillDirectoryLayoutFS is the fs.FS variant of
// detectSkillDirectoryLayout; relative paths keep forward slashes.
func detectSkillDirectoryLayoutFS(fsys fs.FS, skill *model.Skill) {
	for _, sub := range layoutDirs(skill) {
		entries := listFilesFS(fsys, path.Join(skill.Dir, sub.dir))
		for _, entry := range entries {
			relPath := path.Join(sub.dir, entry)
			if !slices.Contains(*sub.target, relPath) {
				*sub.target = append(*sub.target, relPath)
			}
		}
	}
}

type layoutDir struct {
	dir    string
	target *[]string
}

// layoutDirs maps the standard skill subdirectories onto the skill
// fields they populate.
func layoutDirs(skill *model.Skill) []layoutDir {
	return []layoutDir{
		{"scripts", &skill.Scripts},
		{"references", &skill.References},
		{"assets", &skill.Assets},
	}
}

// listFiles returns the file names in a directory, or nil if the
// directory doesn't exist or can't be read.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	return fileNames(entries)
}

// listFilesFS is the fs.FS variant of listFiles.
func listFilesFS(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	return fileNames(entries)
}

func fileNames(entries []fs.DirEntry) []string {
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files
}

// ValidateSkillName checks if a skill name is valid.
// Valid names contain only letters, digits, hyphens and underscores;
// path separators are never allowed.
func ValidateSkillName(name string) error {
	if name == "" {
		return fmt.Errorf("skill name cannot be empty")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed != name {
		return fmt.Errorf("skill name cannot have leading/trailing whitespace: %q", name)
	}

	for _, r := range name {
		if !isValidNameChar(r) {
			return fmt.Errorf("skill name contains invalid character %q: %q", r, name)
		}
	}

	return nil
}

// isValidNameChar returns true if the rune is valid in a skill name.
func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}

// extractString extracts a string value from a frontmatter map.
func extractString(fm map[string]any, key string) string {
	if val, ok := fm[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return ""
}

// extractStringList extracts a list of strings from a frontmatter map.
// Accepts a YAML/TOML list or a single comma-separated string.
func extractStringList(fm map[string]any, key string) []string {
	val, ok := fm[key]
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case string:
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) == 0 {
			return nil
		}
		return result
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if strVal, ok := item.(string); ok {
				result = append(result, strVal)
			}
		}
		if len(result) == 0 {
			return nil
		}
		return result
	default:
		return nil
	}
}
