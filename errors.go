package murmur

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrTransport indicates the connection to the backend failed: the
	// request could not be sent, the response was not 2xx, or the body
	// could not be read to the end.
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a stream payload was not valid JSON or did not
	// match the expected event shape. Decode errors are logged and the
	// offending line is skipped.
	ErrDecode = errors.New("decode error")

	// ErrBackend indicates the backend reported an error event in-stream.
	ErrBackend = errors.New("backend error")

	// ErrPersistence indicates a history file could not be read or written.
	ErrPersistence = errors.New("persistence error")

	// ErrInvalidID indicates a user or history identifier failed sanitisation.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrNotFound indicates the requested history does not exist.
	ErrNotFound = errors.New("not found")
)
