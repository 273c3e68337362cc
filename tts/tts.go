// Package tts cleans answer text before it is handed to a speech engine.
// Filtering only affects what is spoken; displayed text and stored history
// keep the original.
package tts

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/murmur/goldmark"
	"golang.org/x/text/unicode/norm"
)

// Options selects the filter stages.
type Options struct {
	RemoveSpecialChars  bool
	IgnoreBrackets      bool
	IgnoreParentheses   bool
	IgnoreAsterisks     bool
	IgnoreAngleBrackets bool
}

// DefaultOptions enables every stage.
func DefaultOptions() Options {
	return Options{
		RemoveSpecialChars:  true,
		IgnoreBrackets:      true,
		IgnoreParentheses:   true,
		IgnoreAsterisks:     true,
		IgnoreAngleBrackets: true,
	}
}

// Filter applies the enabled stages in order: asterisks, brackets,
// parentheses, angle brackets, special characters.
func Filter(text string, opts Options) string {
	if opts.IgnoreAsterisks {
		text = FilterAsterisks(text)
	}
	if opts.IgnoreBrackets {
		text = FilterBrackets(text)
	}
	if opts.IgnoreParentheses {
		text = FilterParentheses(text)
	}
	if opts.IgnoreAngleBrackets {
		text = FilterAngleBrackets(text)
	}
	if opts.RemoveSpecialChars {
		text = RemoveSpecialCharacters(text)
	}
	return text
}

var asteriskSpan = regexp.MustCompile(`\*+[^*\n]*?\*+`)

// FilterAsterisks removes text enclosed in asterisks of any count, such as
// *action* or **aside**.
func FilterAsterisks(text string) string {
	return collapseSpace(asteriskSpan.ReplaceAllString(text, ""))
}

// FilterBrackets removes text within square brackets, nested or not.
func FilterBrackets(text string) string { return filterNested(text, '[', ']') }

// FilterParentheses removes text within parentheses, nested or not.
func FilterParentheses(text string) string { return filterNested(text, '(', ')') }

// FilterAngleBrackets removes text within angle brackets, nested or not.
func FilterAngleBrackets(text string) string { return filterNested(text, '<', '>') }

// filterNested drops delimited content with depth tracking. Unmatched
// closers are dropped; an unclosed opener drops the rest of the text.
func filterNested(text string, left, right rune) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == left:
			depth++
		case r == right:
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return collapseSpace(b.String())
}

var (
	latexText     = regexp.MustCompile(`\\text\{([^}]*)\}`)
	latexBrackets = regexp.MustCompile(`\\\[|\\\]`)
	latexDisplay  = regexp.MustCompile(`\$\$.*?\$\$`)
	latexInline   = regexp.MustCompile(`\$.*?\$`)
	latexCommand  = regexp.MustCompile(`\\[a-zA-Z]+(?:\{[^}]*\})?`)
	tableRule     = regexp.MustCompile(`\|[\s-]*\|`)
)

var allowedSymbols = map[rune]bool{
	'+': true, '-': true, '×': true, '÷': true, '/': true, '=': true, '%': true,
	'.': true, '。': true, '，': true, ',': true, '：': true, ':': true,
	'！': true, '!': true, '？': true, '?': true,
}

// RemoveSpecialCharacters keeps letters, digits, whitespace and basic
// punctuation and maths symbols. LaTeX is dropped (\text{} keeps its
// content), markdown reduces to plain text, and tables to their cells.
func RemoveSpecialCharacters(text string) string {
	text = latexText.ReplaceAllString(text, "$1")
	text = latexBrackets.ReplaceAllString(text, "")
	text = latexDisplay.ReplaceAllString(text, "")
	text = latexInline.ReplaceAllString(text, "")
	text = latexCommand.ReplaceAllString(text, "")

	text = goldmark.PlainText(text)
	text = tableRule.ReplaceAllString(text, "||")

	normalized := norm.NFKC.String(text)
	dropDash := strings.Contains(normalized, "---")

	var b strings.Builder
	for _, r := range normalized {
		switch {
		case r == '-' && dropDash:
		case unicode.In(r, unicode.Lo, unicode.Ll, unicode.Lu, unicode.Nd),
			unicode.IsSpace(r),
			allowedSymbols[r]:
			b.WriteRune(r)
		}
	}
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
