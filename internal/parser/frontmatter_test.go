package parser

import (
	"testing"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := map[string]struct {
		input              string
		wantHasFrontmatter bool
		wantFormat         Format
		wantFrontmatter    string
		wantContent        string
	}{
		"yaml frontmatter": {
			input: `---
name: test-skill
description: A test skill
---
This is the content`,
			wantHasFrontmatter: true,
			wantFormat:         FormatYAML,
			wantFrontmatter:    "name: test-skill\ndescription: A test skill",
			wantContent:        "This is the content",
		},
		"yaml frontmatter with windows line endings": {
			input:              "---\r\nname: test\r\n---\r\nContent",
			wantHasFrontmatter: true,
			wantFormat:         FormatYAML,
			wantFrontmatter:    "name: test",
			wantContent:        "Content",
		},
		"toml frontmatter": {
			input: `+++
name = "test"
+++
Content here`,
			wantHasFrontmatter: true,
			wantFormat:         FormatTOML,
			wantFrontmatter:    `name = "test"`,
			wantContent:        "Content here",
		},
		"no frontmatter": {
			input:              "Just plain content",
			wantHasFrontmatter: false,
			wantFormat:         FormatNone,
			wantFrontmatter:    "",
			wantContent:        "Just plain content",
		},
		"no closing delimiter": {
			input: `---
name: test
This looks like frontmatter but has no closing delimiter`,
			wantHasFrontmatter: false,
			wantFormat:         FormatNone,
			wantFrontmatter:    "",
			wantContent:        "---\nname: test\nThis looks like frontmatter but has no closing delimiter",
		},
		"empty frontmatter": {
			input: `---
---
Content only`,
			wantHasFrontmatter: true,
			wantFormat:         FormatYAML,
			wantFrontmatter:    "",
			wantContent:        "Content only",
		},
		"empty content": {
			input: `---
name: test
---`,
			wantHasFrontmatter: true,
			wantFormat:         FormatYAML,
			wantFrontmatter:    "name: test",
			wantContent:        "",
		},
		"empty file": {
			input:              "",
			wantHasFrontmatter: false,
			wantFormat:         FormatNone,
			wantFrontmatter:    "",
			wantContent:        "",
		},
		"utf-8 bom before frontmatter": {
			input:              "\xEF\xBB\xBF---\nname: test\n---\nContent",
			wantHasFrontmatter: true,
			wantFormat:         FormatYAML,
			wantFrontmatter:    "name: test",
			wantContent:        "Content",
		},
		"delimiter mid-document is content": {
			input:              "Heading\n---\nname: test\n---\n",
			wantHasFrontmatter: false,
			wantFormat:         FormatNone,
			wantFrontmatter:    "",
			wantContent:        "Heading\n---\nname: test\n---\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := SplitFrontmatter([]byte(tt.input))

			if result.HasFrontmatter != tt.wantHasFrontmatter {
				t.Errorf("HasFrontmatter = %v, want %v", result.HasFrontmatter, tt.wantHasFrontmatter)
			}

			if result.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", result.Format, tt.wantFormat)
			}

			gotFrontmatter := string(result.Frontmatter)
			if gotFrontmatter != tt.wantFrontmatter {
				t.Errorf("Frontmatter = %q, want %q", gotFrontmatter, tt.wantFrontmatter)
			}

			if result.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", result.Content, tt.wantContent)
			}
		})
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    map[string]any
		wantErr bool
	}{
		"valid yaml": {
			input: "---\nname: test-skill\ndescription: A test\n---\n",
			want: map[string]any{
				"name":        "test-skill",
				"description": "A test",
			},
		},
		"yaml with list": {
			input: "---\nname: skill\nkeywords:\n  - aws\n  - s3\n---\n",
			want: map[string]any{
				"name":     "skill",
				"keywords": []any{"aws", "s3"},
			},
		},
		"valid toml": {
			input: "+++\nname = \"test-skill\"\ndescription = \"A test\"\n+++\n",
			want: map[string]any{
				"name":        "test-skill",
				"description": "A test",
			},
		},
		"empty frontmatter": {
			input: "---\n---\nbody",
			want:  map[string]any{},
		},
		"no frontmatter": {
			input: "body only",
			want:  map[string]any{},
		},
		"invalid yaml": {
			input:   "---\nname: test\n  invalid: indentation\n---\n",
			wantErr: true,
		},
		"invalid toml": {
			input:   "+++\nname = unquoted value\n+++\n",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseFrontmatter(SplitFrontmatter([]byte(tt.input)))

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFrontmatter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				return
			}

			if len(got) != len(tt.want) {
				t.Errorf("ParseFrontmatter() returned %d keys, want %d", len(got), len(tt.want))
			}

			for key, wantVal := range tt.want {
				gotVal, ok := got[key]
				if !ok {
					t.Errorf("ParseFrontmatter() missing key %q", key)
					continue
				}

				if wantStr, ok := wantVal.(string); ok {
					if gotStr, ok := gotVal.(string); ok {
						if gotStr != wantStr {
							t.Errorf("ParseFrontmatter()[%q] = %q, want %q", key, gotStr, wantStr)
						}
					} else {
						t.Errorf("ParseFrontmatter()[%q] = %T, want string", key, gotVal)
					}
				}
			}
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"trims surrounding whitespace": {
			input: "\n\n# Heading\n\nBody\n\n",
			want:  "# Heading\n\nBody",
		},
		"normalizes windows line endings": {
			input: "line one\r\nline two",
			want:  "line one\nline two",
		},
		"empty input": {
			input: "",
			want:  "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := NormalizeContent(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
