package main

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes backend or stored text safe to print on a terminal: escape
// sequences are stripped, CRLF becomes LF and control characters other
// than tab and newline are dropped.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			return r
		}
		return -1
	}, s)
}
