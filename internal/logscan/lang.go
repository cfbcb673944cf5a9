// Package logscan finds sensitive data reaching log statements: it
// locates logging calls per source language, extracts each call's
// argument text, and flags identifier terms, object dumps, and
// interpolation forms that leak personal data into logs.
package logscan

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Language describes how logging calls look in one source language.
type Language struct {
	Name       string
	Extensions []string
	Calls      []*regexp.Regexp
}

func mustAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

var languages = []Language{
	{
		Name:       "python",
		Extensions: []string{".py"},
		Calls: mustAll(
			`(?:logger|logging|log)\.(?:debug|info|warning|warn|error|critical|exception)\s*\(`,
			`print\s*\(`,
		),
	},
	{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".mjs"},
		Calls: mustAll(
			`console\.(?:log|debug|info|warn|error)\s*\(`,
			`(?:logger|log)\.(?:debug|info|warn|error|trace)\s*\(`,
			`winston\.(?:debug|info|warn|error)\s*\(`,
			`bunyan\.(?:debug|info|warn|error)\s*\(`,
		),
	},
	{
		Name:       "java",
		Extensions: []string{".java"},
		Calls: mustAll(
			`(?:logger|log)\.(?:debug|info|warn|error|trace)\s*\(`,
			`System\.(?:out|err)\.print(?:ln)?\s*\(`,
		),
	},
	{
		Name:       "csharp",
		Extensions: []string{".cs"},
		Calls: mustAll(
			`_?logger\.(?:Log|Debug|Info|Warning|Error)\s*\(`,
			`Console\.Write(?:Line)?\s*\(`,
			`Debug\.Write(?:Line)?\s*\(`,
		),
	},
	{
		Name:       "go",
		Extensions: []string{".go"},
		Calls: mustAll(
			`(?:log|logger)\.(?:Print|Printf|Println|Debug|Info|Warn|Error|Fatal)\s*\(`,
			`fmt\.(?:Print|Printf|Println)\s*\(`,
		),
	},
	{
		Name:       "ruby",
		Extensions: []string{".rb"},
		Calls: mustAll(
			`(?:logger|Rails\.logger)\.(?:debug|info|warn|error|fatal)\s*[(\s]`,
			`puts\s+`,
		),
	},
}

// Languages returns the registry of scannable languages.
func Languages() []Language {
	return languages
}

// languageFor matches a file to its language by extension.
func languageFor(path string) *Language {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}
	for i := range languages {
		for _, e := range languages[i].Extensions {
			if e == ext {
				return &languages[i]
			}
		}
	}
	return nil
}
