// Package sse decodes Server-Sent Event streams whose data lines carry JSON
// payloads.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/murmur"
)

const maxLineSize = 1 << 20

var dataPrefix = []byte("data: ")

// Decoder reads JSON payloads from an SSE stream one at a time.
type Decoder struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
}

// NewDecoder returns a [Decoder] reading from r. Malformed payloads are
// reported to logger and skipped; a nil logger discards.
func NewDecoder(r io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: s, logger: logger}
}

// Next returns the next valid JSON payload. It returns io.EOF when the
// stream ends and an error wrapping [murmur.ErrTransport] when reading
// fails.
func (d *Decoder) Next() (json.RawMessage, error) {
	for d.scanner.Scan() {
		line := bytes.TrimSpace(d.scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			// Blank separators, comments, and event/id/retry fields.
			continue
		}
		payload := line[len(dataPrefix):]
		if !json.Valid(payload) {
			d.logger.Warn("skipping malformed event payload",
				"error", murmur.ErrDecode, "payload", truncate(payload, 200))
			continue
		}
		out := make(json.RawMessage, len(payload))
		copy(out, payload)
		return out, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("sse: %w: %w", murmur.ErrTransport, err)
	}
	return nil, io.EOF
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
