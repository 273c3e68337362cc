package goldmark

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

func plainText(doc ast.Node, source []byte) string {
	var lines []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		lines = appendPlainBlock(lines, c, source)
	}
	return strings.Join(lines, "\n")
}

func appendPlainBlock(lines []string, node ast.Node, source []byte) []string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		return append(lines, plainInline(n, source))
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		l := n.Lines()
		for i := 0; i < l.Len(); i++ {
			seg := l.At(i)
			lines = append(lines, strings.TrimRight(string(seg.Value(source)), "\n"))
		}
		return lines
	case *east.Table:
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, plainInline(cell, source))
			}
			lines = append(lines, strings.Join(cells, " "))
		}
		return lines
	case *ast.ThematicBreak:
		return lines
	case *ast.HTMLBlock:
		l := n.Lines()
		for i := 0; i < l.Len(); i++ {
			seg := l.At(i)
			lines = append(lines, strings.TrimRight(string(seg.Value(source)), "\n"))
		}
		return lines
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			lines = appendPlainBlock(lines, c, source)
		}
		return lines
	}
}

func plainInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	writePlainInline(&buf, node, source)
	return buf.String()
}

func writePlainInline(buf *bytes.Buffer, node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			buf.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(n.Value)
		case *ast.AutoLink:
			buf.Write(n.URL(source))
		case *ast.RawHTML:
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				buf.Write(seg.Value(source))
			}
		default:
			// Emphasis, code spans, links and images speak their text.
			writePlainInline(buf, n, source)
		}
	}
}
