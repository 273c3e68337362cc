package murmur

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
)

// TurnState indicates the current state of a Turn.
type TurnState int

const (
	TurnStateNew       TurnState = iota // Before Outputs() is ranged over.
	TurnStateStreaming                  // Receiving events.
	TurnStateDone                       // Backend finished; remainder flushed.
	TurnStateErrored                    // An Error output was emitted.
	TurnStateClosed                     // Consumer stopped early or context cancelled.
)

func (s TurnState) String() string {
	switch s {
	case TurnStateNew:
		return "new"
	case TurnStateStreaming:
		return "streaming"
	case TurnStateDone:
		return "done"
	case TurnStateErrored:
		return "errored"
	case TurnStateClosed:
		return "closed"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

// Responder turns backend event streams into segmented outputs.
type Responder struct {
	provider Provider
	logger   *slog.Logger
	segOpts  []SegmenterOption
}

// ResponderOption configures a [Responder].
type ResponderOption func(*Responder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) ResponderOption {
	return func(r *Responder) { r.logger = l }
}

// WithSegmenterOptions sets the options of the per-turn [Segmenter].
func WithSegmenterOptions(opts ...SegmenterOption) ResponderOption {
	return func(r *Responder) { r.segOpts = opts }
}

// NewResponder creates a [Responder] that streams from p.
func NewResponder(p Provider, opts ...ResponderOption) *Responder {
	r := &Responder{
		provider: p,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start prepares a turn. No request is sent until Outputs is ranged over.
func (r *Responder) Start(ctx context.Context, req Request) *Turn {
	return &Turn{
		ctx:      ctx,
		req:      req,
		provider: r.provider,
		logger:   r.logger,
		seg:      NewSegmenter(r.segOpts...),
	}
}

// Respond is shorthand for Start(ctx, req).Outputs().
func (r *Responder) Respond(ctx context.Context, req Request) iter.Seq[Output] {
	return r.Start(ctx, req).Outputs()
}

// Turn is one request/response exchange with the backend. It owns its
// segmenter and the backend stream; both are released on every exit path,
// including when the consumer stops ranging early.
type Turn struct {
	ctx      context.Context
	req      Request
	provider Provider
	logger   *slog.Logger
	seg      *Segmenter

	state          TurnState
	text           strings.Builder
	conversationID string
	announced      bool
	messageID      string
	err            error
}

// State returns the current turn state.
func (t *Turn) State() TurnState { return t.state }

// Text returns the concatenation of all text units emitted so far.
func (t *Turn) Text() string { return t.text.String() }

// MessageID returns the last assistant message id seen.
func (t *Turn) MessageID() string { return t.messageID }

// ConversationID returns the conversation id, either the one supplied with
// the request or the one the backend assigned.
func (t *Turn) ConversationID() string {
	if t.conversationID != "" {
		return t.conversationID
	}
	return t.req.ConversationID
}

// Err returns the error carried by the terminal Error output, if any.
func (t *Turn) Err() error { return t.err }

// Outputs streams the turn. It can be ranged over once; later calls yield
// nothing.
func (t *Turn) Outputs() iter.Seq[Output] {
	return func(yield func(Output) bool) {
		if t.state != TurnStateNew {
			return
		}
		t.state = TurnStateStreaming
		defer t.seg.Reset()

		stream, err := t.provider.Stream(t.ctx, t.req)
		if err != nil {
			t.fail(yield, err)
			return
		}
		defer func() {
			if err := stream.Close(); err != nil {
				t.logger.Debug("closing stream", "error", err)
			}
		}()

		for {
			evt, err := stream.Next()
			if errors.Is(err, io.EOF) {
				t.logger.Warn("stream ended without message_end")
				t.finish(yield)
				return
			}
			if err != nil {
				t.fail(yield, err)
				return
			}
			if !t.handle(yield, evt) || t.state != TurnStateStreaming {
				return
			}
		}
	}
}

// handle processes one event. It returns false when the consumer stopped.
func (t *Turn) handle(yield func(Output) bool, evt Event) bool {
	switch e := evt.(type) {
	case EventMessage:
		if !t.announce(yield, e.ConversationID) {
			return false
		}
		if e.MessageID != "" && e.MessageID != t.messageID {
			t.messageID = e.MessageID
			if !t.emit(yield, MessageID{ID: e.MessageID}) {
				return false
			}
		}
		t.seg.Write(e.Answer)
		for {
			unit, ok := t.seg.Next()
			if !ok {
				return true
			}
			if !t.emitText(yield, unit) {
				return false
			}
		}
	case EventMessageEnd:
		if !t.announce(yield, e.ConversationID) {
			return false
		}
		if e.MessageID != "" {
			t.messageID = e.MessageID
		}
		t.finish(yield)
		return t.state != TurnStateClosed
	case EventError:
		if !t.announce(yield, e.ConversationID) {
			return false
		}
		if !t.flush(yield) {
			return false
		}
		t.err = fmt.Errorf("%w: %s", ErrBackend, e.Message)
		t.state = TurnStateErrored
		t.logger.Error("backend reported error", "error", e.Message)
		return t.emit(yield, Error{Err: t.err})
	default:
		t.logger.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", evt))
		return true
	}
}

// announce emits the backend-assigned conversation id once, and only when
// the request did not carry one.
func (t *Turn) announce(yield func(Output) bool, id string) bool {
	if id == "" || t.req.ConversationID != "" || t.announced {
		return true
	}
	t.announced = true
	t.conversationID = id
	return t.emit(yield, ConversationID{ID: id})
}

func (t *Turn) finish(yield func(Output) bool) {
	if !t.flush(yield) {
		return
	}
	t.state = TurnStateDone
}

func (t *Turn) flush(yield func(Output) bool) bool {
	if unit, ok := t.seg.Flush(); ok {
		return t.emitText(yield, unit)
	}
	return true
}

// fail ends the turn after a transport failure. Cancellation is not a
// failure: the turn closes without output.
func (t *Turn) fail(yield func(Output) bool, err error) {
	if t.ctx.Err() != nil {
		t.state = TurnStateClosed
		return
	}
	if !t.flush(yield) {
		return
	}
	if !errors.Is(err, ErrTransport) {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
	}
	t.err = err
	t.state = TurnStateErrored
	t.logger.Error("stream failed", "error", err)
	t.emit(yield, Error{Err: err})
}

func (t *Turn) emitText(yield func(Output) bool, unit string) bool {
	t.text.WriteString(unit)
	return t.emit(yield, Text{Text: unit})
}

func (t *Turn) emit(yield func(Output) bool, o Output) bool {
	if !yield(o) {
		if t.state == TurnStateStreaming {
			t.state = TurnStateClosed
		}
		return false
	}
	return true
}
