package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the frontmatter syntax used by a skill document.
type Format string

const (
	// FormatNone indicates the document has no frontmatter block.
	FormatNone Format = "none"
	// FormatYAML indicates a --- delimited YAML frontmatter block.
	FormatYAML Format = "yaml"
	// FormatTOML indicates a +++ delimited TOML frontmatter block.
	FormatTOML Format = "toml"
)

// FrontmatterResult contains the split frontmatter and remaining content.
type FrontmatterResult struct {
	// Frontmatter contains the raw frontmatter bytes (YAML or TOML)
	Frontmatter []byte
	// Content contains the remaining content after frontmatter
	Content string
	// Format records which delimiter introduced the frontmatter
	Format Format
	// HasFrontmatter indicates whether frontmatter was found
	HasFrontmatter bool
}

// utf8BOM is stripped before delimiter detection so editors that
// prepend a byte order mark don't hide the frontmatter.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SplitFrontmatter extracts YAML or TOML frontmatter from content.
// Supports --- (YAML) and +++ (TOML) delimiters, tolerates CRLF line
// endings and a leading UTF-8 BOM. An unterminated fence is treated as
// plain content rather than an error.
func SplitFrontmatter(content []byte) FrontmatterResult {
	content = bytes.TrimPrefix(content, utf8BOM)

	// Check for YAML frontmatter (---)
	if bytes.HasPrefix(content, []byte("---\n")) || bytes.HasPrefix(content, []byte("---\r\n")) {
		return extractFrontmatter(content, []byte("---"), FormatYAML)
	}

	// Check for TOML frontmatter (+++)
	if bytes.HasPrefix(content, []byte("+++\n")) || bytes.HasPrefix(content, []byte("+++\r\n")) {
		return extractFrontmatter(content, []byte("+++"), FormatTOML)
	}

	// No frontmatter found
	return FrontmatterResult{
		Frontmatter:    nil,
		Content:        string(content),
		Format:         FormatNone,
		HasFrontmatter: false,
	}
}

// extractFrontmatter extracts frontmatter between delimiters.
func extractFrontmatter(content, delimiter []byte, format Format) FrontmatterResult {
	// Skip opening delimiter
	remaining := content[len(delimiter):]

	// Handle both \n and \r\n line endings
	if bytes.HasPrefix(remaining, []byte("\r\n")) {
		remaining = remaining[2:]
	} else if bytes.HasPrefix(remaining, []byte("\n")) {
		remaining = remaining[1:]
	}

	// Find closing delimiter
	// First check if it's right at the start (empty frontmatter case)
	var frontmatter []byte
	var bodyStart int
	delimFound := false

	if bytes.HasPrefix(remaining, delimiter) {
		// Empty frontmatter case: ---\n---\n
		frontmatter = []byte{}
		bodyStart = len(delimiter)
		delimFound = true
	} else {
		// Closing delimiter must be preceded by a newline
		closingDelim := append([]byte("\n"), delimiter...)
		idx := bytes.Index(remaining, closingDelim)
		if idx != -1 {
			frontmatter = remaining[:idx]
			bodyStart = idx + len(closingDelim)
			delimFound = true
		} else {
			closingDelim = append([]byte("\r\n"), delimiter...)
			idx = bytes.Index(remaining, closingDelim)
			if idx != -1 {
				frontmatter = remaining[:idx]
				bodyStart = idx + len(closingDelim)
				delimFound = true
			}
		}
	}

	if !delimFound {
		// No closing delimiter found, treat entire content as no frontmatter
		return FrontmatterResult{
			Frontmatter:    nil,
			Content:        string(content),
			Format:         FormatNone,
			HasFrontmatter: false,
		}
	}

	// Normalize frontmatter by removing \r from Windows line endings
	cleanFrontmatter := bytes.ReplaceAll(frontmatter, []byte("\r\n"), []byte("\n"))
	cleanFrontmatter = bytes.TrimRight(cleanFrontmatter, "\r")

	// Skip trailing newline after closing delimiter
	if bodyStart < len(remaining) {
		if bytes.HasPrefix(remaining[bodyStart:], []byte("\r\n")) {
			bodyStart += 2
		} else if bytes.HasPrefix(remaining[bodyStart:], []byte("\n")) {
			bodyStart++
		}
	}

	var body string
	if bodyStart < len(remaining) {
		body = string(remaining[bodyStart:])
	}

	return FrontmatterResult{
		Frontmatter:    cleanFrontmatter,
		Content:        body,
		Format:         format,
		HasFrontmatter: true,
	}
}

// ParseFrontmatter decodes a split frontmatter block into a map,
// choosing the decoder from the delimiter that introduced it.
func ParseFrontmatter(res FrontmatterResult) (map[string]any, error) {
	if !res.HasFrontmatter || len(res.Frontmatter) == 0 {
		return make(map[string]any), nil
	}

	switch res.Format {
	case FormatTOML:
		var result map[string]any
		if err := toml.Unmarshal(res.Frontmatter, &result); err != nil {
			return nil, fmt.Errorf("failed to parse TOML frontmatter: %w", err)
		}
		if result == nil {
			result = make(map[string]any)
		}
		return result, nil
	default:
		var result map[string]any
		if err := yaml.Unmarshal(res.Frontmatter, &result); err != nil {
			return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
		}
		if result == nil {
			result = make(map[string]any)
		}
		return result, nil
	}
}

// NormalizeContent trims excessive whitespace from content.
func NormalizeContent(content string) string {
	// Trim leading/trailing whitespace
	trimmed := strings.TrimSpace(content)

	// Normalize line endings to \n
	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")

	return normalized
}
