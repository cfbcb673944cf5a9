// Package parser reads skill documents. It splits YAML or TOML
// frontmatter from Markdown content, decodes the metadata header into
// model.Skill fields, and discovers skill files beneath a library root.
package parser
