package murmur

import (
	"errors"
	"strings"
)

// Output is a sealed interface for what a turn yields to its consumer:
// speakable text units, control markers and a terminal error.
type Output interface {
	output()
}

// Text is one complete unit: a sentence, a fenced code block or a table.
type Text struct {
	Text string
}

func (Text) output() {}

// ConversationID announces the id the backend assigned to a new
// conversation. Emitted at most once per turn.
type ConversationID struct {
	ID string
}

func (ConversationID) output() {}

// MessageID announces the id of the assistant message being streamed.
type MessageID struct {
	ID string
}

func (MessageID) output() {}

// Error ends a turn. Err wraps ErrBackend or ErrTransport.
type Error struct {
	Err error
}

func (Error) output() {}

// Message returns the human-readable error text.
func (e Error) Message() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// Interface compliance checks.
var (
	_ Output = Text{}
	_ Output = ConversationID{}
	_ Output = MessageID{}
	_ Output = Error{}
)

// Reserved prefixes of the single-string output encoding.
const (
	ConversationIDPrefix = "__conversation_id:"
	MessageIDPrefix      = "__message_id:"
	ErrorPrefix          = "Error: "
)

// Encode renders an output in the single-string encoding used by consumers
// that carry text and control markers on one channel.
func Encode(o Output) string {
	switch o := o.(type) {
	case Text:
		return o.Text
	case ConversationID:
		return ConversationIDPrefix + o.ID
	case MessageID:
		return MessageIDPrefix + o.ID
	case Error:
		return ErrorPrefix + o.Message()
	default:
		return ""
	}
}

// Decode is the inverse of Encode. Error outputs decode with an error that
// carries only the message text.
//
// The encoding is not lossless for text: a Text whose content begins with
// one of the reserved prefixes, such as "Error: ", decodes as that control
// output. Consumers that must keep such text use the typed outputs instead.
func Decode(s string) Output {
	switch {
	case strings.HasPrefix(s, ConversationIDPrefix):
		return ConversationID{ID: strings.TrimPrefix(s, ConversationIDPrefix)}
	case strings.HasPrefix(s, MessageIDPrefix):
		return MessageID{ID: strings.TrimPrefix(s, MessageIDPrefix)}
	case strings.HasPrefix(s, ErrorPrefix):
		return Error{Err: errors.New(strings.TrimPrefix(s, ErrorPrefix))}
	default:
		return Text{Text: s}
	}
}
