package murmur

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Default segmentation limits, counted in grapheme clusters.
const (
	DefaultThreshold = 50
	DefaultWindow    = 100
)

const fence = "```"

// Segmenter accumulates streamed text and cuts it into units suitable for
// speech: sentences, whole fenced code blocks and whole tables.
//
// A Segmenter belongs to exactly one turn. It is not safe for concurrent use.
type Segmenter struct {
	buf       string
	threshold int
	window    int

	// closedFence is set when a fence was emitted with a newline appended,
	// so a newline opening the next delta is already accounted for.
	closedFence bool
}

// SegmenterOption configures a [Segmenter].
type SegmenterOption func(*Segmenter)

// WithThreshold sets the length after which secondary boundaries
// (commas, closing brackets) may end a unit.
func WithThreshold(n int) SegmenterOption {
	return func(s *Segmenter) { s.threshold = n }
}

// WithWindow sets how far past the threshold to look for a boundary before
// falling back to a space or a hard cut.
func WithWindow(n int) SegmenterOption {
	return func(s *Segmenter) { s.window = n }
}

// NewSegmenter creates an empty [Segmenter].
func NewSegmenter(opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{threshold: DefaultThreshold, window: DefaultWindow}
	for _, o := range opts {
		o(s)
	}
	if s.threshold < 0 {
		s.threshold = 0
	}
	if s.window < 1 {
		s.window = 1
	}
	return s
}

// Write appends a delta to the buffer.
func (s *Segmenter) Write(delta string) {
	if s.closedFence && delta != "" {
		s.closedFence = false
		delta = strings.TrimPrefix(delta, "\n")
	}
	s.buf += delta
}

// Next removes and returns the next complete unit, if one is buffered.
func (s *Segmenter) Next() (string, bool) {
	unit, rest, ok := Cut(s.buf, s.threshold, s.window)
	if !ok {
		return "", false
	}
	s.closedFence = rest == "" && len(unit) > len(s.buf)
	s.buf = rest
	return unit, true
}

// Feed writes delta and returns every unit that became complete.
func (s *Segmenter) Feed(delta string) []string {
	s.Write(delta)
	var units []string
	for {
		unit, ok := s.Next()
		if !ok {
			return units
		}
		units = append(units, unit)
	}
}

// Flush returns whatever remains regardless of boundaries and clears the
// buffer. A whitespace-only remainder is discarded.
func (s *Segmenter) Flush() (string, bool) {
	rest := s.buf
	s.buf = ""
	s.closedFence = false
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

// Reset discards the buffer.
func (s *Segmenter) Reset() {
	s.buf = ""
	s.closedFence = false
}

// Buffered returns the text received but not yet emitted.
func (s *Segmenter) Buffered() string {
	return s.buf
}

// Cut extracts at most one complete unit from the front of buf.
//
// Tables and fenced code blocks are atomic: nothing is cut from them until
// they are closed. Plain text ahead of a table or fence is cut first so a
// block always starts a unit. Plain text ends at a full-width terminator or
// a newline. Past threshold clusters it ends at the first secondary
// punctuation mark within the window, failing that at the first space, and
// is cut hard once threshold+window clusters are buffered. Clusters are
// counted from the first non-space character.
//
// A closed fence is emitted as soon as its closing backticks arrive, with a
// newline appended when none follows yet.
func Cut(buf string, threshold, window int) (unit, rest string, ok bool) {
	if strings.TrimSpace(buf) == "" {
		return "", buf, false
	}

	table := tableStart(buf)
	code := strings.Index(buf, fence)

	marker := -1
	switch {
	case table >= 0 && (code < 0 || table < code):
		marker = table
		code = -1
	case code >= 0:
		marker = code
		table = -1
	default:
		return cutPlain(buf, threshold, window)
	}

	if prefix := buf[:marker]; strings.TrimSpace(prefix) != "" {
		if unit, rest, ok := cutPlain(prefix, threshold, window); ok {
			return unit, rest + buf[marker:], true
		}
		if !strings.HasSuffix(prefix, "\n") {
			return prefix + "\n", buf[marker:], true
		}
		return prefix, buf[marker:], true
	}

	if table >= 0 {
		return cutTable(buf, table)
	}
	return cutFence(buf, code)
}

// tableStart returns the offset of the first line whose trimmed form begins
// with a pipe, or -1.
func tableStart(buf string) int {
	for pos := 0; pos < len(buf); {
		end := strings.IndexByte(buf[pos:], '\n')
		line := buf[pos:]
		if end >= 0 {
			line = buf[pos : pos+end]
		}
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "|") {
			return pos
		}
		if end < 0 {
			break
		}
		pos += end + 1
	}
	return -1
}

func cutTable(buf string, start int) (string, string, bool) {
	pos := start
	for {
		end := strings.IndexByte(buf[pos:], '\n')
		if end < 0 {
			// The last line is still arriving: it ends the table only once it
			// is known not to be another row.
			trimmed := strings.TrimSpace(buf[pos:])
			if trimmed == "" || strings.HasPrefix(trimmed, "|") {
				return "", buf, false
			}
			return buf[:pos], buf[pos:], true
		}
		if !strings.HasPrefix(strings.TrimSpace(buf[pos:pos+end]), "|") {
			return buf[:pos], buf[pos:], true
		}
		pos += end + 1
	}
}

func cutFence(buf string, start int) (string, string, bool) {
	closing := strings.Index(buf[start+len(fence):], fence)
	if closing < 0 {
		return "", buf, false
	}
	end := start + len(fence) + closing + len(fence)
	rest := buf[end:]
	switch {
	case rest == "":
		return buf[:end] + "\n", "", true
	case rest[0] == '\n':
		return buf[:end+1], rest[1:], true
	default:
		return buf[:end] + "\n", rest, true
	}
}

func cutPlain(buf string, threshold, window int) (string, string, bool) {
	limit := threshold + window
	start := len(buf) - len(strings.TrimLeftFunc(buf, unicode.IsSpace))
	if start == len(buf) {
		return "", buf, false
	}
	var (
		idx       int
		pos       = start
		secondary = -1
		space     = -1
		state     = -1
		rest      = buf[start:]
		cluster   string
	)
	for len(rest) > 0 && idx < limit {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		end := pos + len(cluster)
		r, _ := utf8.DecodeRuneInString(cluster)
		switch {
		case isPrimaryBoundary(r) || strings.ContainsRune(cluster, '\n'):
			return buf[:end], buf[end:], true
		case idx < threshold || secondary >= 0:
		case isSecondaryBoundary(r):
			secondary = end
		case isSpacedBoundary(r) && rest != "":
			if next, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(next) {
				secondary = end
			}
		case unicode.IsSpace(r) && space < 0:
			space = end
		}
		pos = end
		idx++
	}
	switch {
	case secondary >= 0:
		return buf[:secondary], buf[secondary:], true
	case space >= 0:
		return buf[:space], buf[space:], true
	case idx >= limit:
		return buf[:pos], buf[pos:], true
	}
	return "", buf, false
}

func isPrimaryBoundary(r rune) bool {
	switch r {
	case '。', '？', '！', '；':
		return true
	}
	return false
}

func isSecondaryBoundary(r rune) bool {
	switch r {
	case '，', '、', '：', '）', '】', '」', '』', '”', '’', '》', '…', ')', ']':
		return true
	}
	return false
}

// isSpacedBoundary reports ASCII punctuation that ends a unit only when
// followed by whitespace, so numbers and URLs stay whole.
func isSpacedBoundary(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ',', ':':
		return true
	}
	return false
}
