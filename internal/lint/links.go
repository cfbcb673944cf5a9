package lint

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// linkRef is a link or image destination found in a document, with the
// 1-based source line it appears on (0 when the position is unknown).
type linkRef struct {
	Destination string
	Line        int
}

// extractLinks walks the Markdown AST and collects link and image
// destinations in document order. The meta extension keeps YAML
// frontmatter out of the document body.
func extractLinks(source []byte) []linkRef {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	doc := md.Parser().Parse(text.NewReader(source))

	var links []linkRef
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, linkRef{
				Destination: string(node.Destination),
				Line:        nodeLine(node, source),
			})
		case *ast.Image:
			links = append(links, linkRef{
				Destination: string(node.Destination),
				Line:        nodeLine(node, source),
			})
		}
		return ast.WalkContinue, nil
	})

	return links
}

// nodeLine locates a node by its first text segment and returns the
// 1-based line number in source.
func nodeLine(n ast.Node, source []byte) int {
	line := 0
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			line = 1 + bytes.Count(source[:t.Segment.Start], []byte("\n"))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return line
}

// relativeTarget returns the local file path a link points at, or ""
// when the link is external, absolute, or an anchor. Fragments and
// query strings are stripped.
func relativeTarget(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" ||
		strings.HasPrefix(dest, "#") ||
		strings.HasPrefix(dest, "/") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.Contains(dest, "://") {
		return ""
	}
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		dest = dest[:i]
	}
	return dest
}
