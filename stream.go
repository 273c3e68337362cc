package murmur

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next returns io.EOF once the backend finished (after message_end or an
// in-stream error event). Any other error is a transport failure and is
// terminal. Close releases the underlying connection and is safe to call in
// any state.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}
