package murmur

// Event is a sealed interface representing one decoded backend event.
// Transport failures come from Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventMessage carries one answer delta. Answer may be empty.
type EventMessage struct {
	Answer         string
	MessageID      string
	ConversationID string
}

func (EventMessage) event() {}

// EventMessageEnd signals the backend finished the answer.
type EventMessageEnd struct {
	MessageID      string
	ConversationID string
}

func (EventMessageEnd) event() {}

// EventError is an error reported by the backend inside the stream.
type EventError struct {
	Message        string
	ConversationID string
}

func (EventError) event() {}

// Interface compliance checks.
var (
	_ Event = EventMessage{}
	_ Event = EventMessageEnd{}
	_ Event = EventError{}
)
