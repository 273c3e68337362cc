package dify

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/sse"
)

// stream implements [murmur.Stream] over a chat-messages SSE body.
type stream struct {
	body    io.ReadCloser
	decoder *sse.Decoder
	logger  *slog.Logger
	state   murmur.StreamState
	err     error // terminal error, if any
}

// Interface compliance check.
var _ murmur.Stream = (*stream)(nil)

func newStream(body io.ReadCloser, logger *slog.Logger) *stream {
	return &stream{
		body:    body,
		decoder: sse.NewDecoder(body, logger),
		logger:  logger,
		state:   murmur.StreamStateNew,
	}
}

// Next returns the next answer event. After message_end or an error event
// it returns io.EOF.
func (s *stream) Next() (murmur.Event, error) {
	switch s.state {
	case murmur.StreamStateComplete:
		return nil, io.EOF
	case murmur.StreamStateError:
		return nil, s.err
	case murmur.StreamStateClosed:
		return nil, fmt.Errorf("dify: %w", murmur.ErrStreamClosed)
	}

	for {
		payload, err := s.decoder.Next()
		if err == io.EOF {
			// The body ended without message_end; report a normal end and
			// let the consumer decide.
			s.state = murmur.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			s.state = murmur.StreamStateError
			s.err = fmt.Errorf("dify: %w", err)
			return nil, s.err
		}
		s.state = murmur.StreamStateStreaming

		if evt := s.processEvent(payload); evt != nil {
			return evt, nil
		}
	}
}

// State returns the current stream state.
func (s *stream) State() murmur.StreamState {
	return s.state
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != murmur.StreamStateComplete && s.state != murmur.StreamStateError {
		s.state = murmur.StreamStateClosed
	}
	return s.body.Close()
}

// processEvent maps a payload to a semantic event. It returns nil for
// payloads that carry nothing for the answer.
func (s *stream) processEvent(payload json.RawMessage) murmur.Event {
	var evt apiEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		s.logger.Warn("skipping undecodable event",
			"error", fmt.Errorf("%w: %w", murmur.ErrDecode, err))
		return nil
	}

	switch evt.Event {
	case "message", "agent_message":
		return murmur.EventMessage{
			Answer:         evt.Answer,
			MessageID:      evt.MessageID,
			ConversationID: evt.ConversationID,
		}
	case "message_end":
		s.state = murmur.StreamStateComplete
		return murmur.EventMessageEnd{
			MessageID:      evt.MessageID,
			ConversationID: evt.ConversationID,
		}
	case "error":
		s.state = murmur.StreamStateComplete
		msg := evt.Message
		if msg == "" {
			msg = "unknown error"
		}
		if evt.Code != "" {
			msg = evt.Code + ": " + msg
		}
		return murmur.EventError{
			Message:        msg,
			ConversationID: evt.ConversationID,
		}
	default:
		if informational[evt.Event] {
			s.logger.Debug("skipping event", "event", evt.Event)
		} else {
			s.logger.Warn("skipping unknown event", "event", evt.Event)
		}
		return nil
	}
}
