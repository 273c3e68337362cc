// Package goldmark turns markdown answer units into terminal output and
// into plain text for speech, using goldmark for parsing and lipgloss for
// styling.
package goldmark

import (
	"github.com/fwojciec/murmur"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow; tables are drawn with borders.
func Render(source string, width int, theme murmur.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

// PlainText strips markdown syntax and returns what should be spoken:
// emphasis, code spans and links reduce to their text, code blocks to their
// lines, tables to their cells separated by spaces.
func PlainText(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	return plainText(parse(src), src)
}

func parse(source []byte) ast.Node {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	return md.Parser().Parse(text.NewReader(source))
}
