// Package render turns skill Markdown into styled terminal output
// using glamour, with a plain passthrough for pipes and --raw.
package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	minWidth     = 40
	defaultWidth = 80
	maxWidth     = 120
)

// Options configures a Renderer.
type Options struct {
	// Width is the target terminal width. Zero means autodetect from
	// stdout, falling back to 80.
	Width int
	// Plain skips styling entirely and passes Markdown through.
	Plain bool
}

// Renderer renders Markdown for terminal display. The zero value is a
// plain passthrough.
type Renderer struct {
	tr    *glamour.TermRenderer
	width int
}

// New builds a renderer for the given options. Styling failures
// degrade to passthrough rather than erroring; a skill should always
// print.
func New(opts Options) *Renderer {
	if opts.Plain {
		return &Renderer{}
	}

	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	if width < minWidth {
		width = defaultWidth
	}
	if width > maxWidth {
		width = maxWidth
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4), // small margin for safety
	)
	if err != nil {
		return &Renderer{width: width}
	}
	return &Renderer{tr: tr, width: width}
}

// Render converts Markdown to styled ANSI output. The raw text comes
// back unchanged when no styled renderer is available or glamour
// fails.
func (r *Renderer) Render(markdown string) string {
	if r.tr == nil {
		return markdown
	}
	out, err := r.tr.Render(markdown)
	if err != nil {
		return markdown
	}
	// glamour pads with trailing newlines; keep exactly one.
	return strings.TrimRight(out, "\n") + "\n"
}

// Width returns the wrap width the renderer was built with, or zero
// for a plain passthrough built from the zero value.
func (r *Renderer) Width() int {
	return r.width
}

// Styled reports whether output will be glamour-styled.
func (r *Renderer) Styled() bool {
	return r.tr != nil
}

// TerminalWidth returns the current stdout width, or 80 when stdout is
// not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
