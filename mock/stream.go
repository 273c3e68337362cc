package mock

import (
	"io"

	"github.com/fwojciec/murmur"
)

// Interface compliance check.
var _ murmur.Stream = (*Stream)(nil)

// Stream is a test double for murmur.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe: test code commonly calls defer stream.Close() without caring
// about the result.
type Stream struct {
	NextFn  func() (murmur.Event, error)
	StateFn func() murmur.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (murmur.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() murmur.StreamState {
	if s.StateFn == nil {
		return murmur.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Replay returns a Stream that yields events in order and then io.EOF.
func Replay(events ...murmur.Event) *Stream {
	i := 0
	state := murmur.StreamStateNew
	return &Stream{
		NextFn: func() (murmur.Event, error) {
			if i >= len(events) {
				state = murmur.StreamStateComplete
				return nil, io.EOF
			}
			state = murmur.StreamStateStreaming
			evt := events[i]
			i++
			return evt, nil
		},
		StateFn: func() murmur.StreamState { return state },
	}
}
