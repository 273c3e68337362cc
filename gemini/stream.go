package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/murmur"
	"google.golang.org/genai"
)

// stream implements [murmur.Stream] by wrapping the genai SDK's streaming
// iterator. Each chunk's text parts become one EventMessage; thought parts
// are skipped. Exhausting the iterator yields EventMessageEnd, then io.EOF.
type stream struct {
	ctx       context.Context
	pull      func() (*genai.GenerateContentResponse, error, bool)
	stop      func()
	state     murmur.StreamState
	messageID string
	ended     bool
	err       error
}

// Interface compliance check.
var _ murmur.Stream = (*stream)(nil)

// NewStreamFromIter creates a [murmur.Stream] from a genai-style iterator.
// Exported for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) murmur.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: murmur.StreamStateNew,
	}
}

func (s *stream) Next() (murmur.Event, error) {
	switch s.state {
	case murmur.StreamStateComplete:
		return nil, io.EOF
	case murmur.StreamStateError:
		return nil, s.err
	case murmur.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", murmur.ErrStreamClosed)
	}
	for {
		if s.ended {
			s.state = murmur.StreamStateComplete
			return nil, io.EOF
		}
		resp, err, ok := s.pull()
		if !ok {
			s.ended = true
			s.state = murmur.StreamStateStreaming
			return murmur.EventMessageEnd{MessageID: s.messageID}, nil
		}
		if err != nil {
			return nil, s.fail(err)
		}
		s.state = murmur.StreamStateStreaming
		if resp == nil {
			continue
		}
		if resp.ResponseID != "" {
			s.messageID = resp.ResponseID
		}
		if text := chunkText(resp); text != "" {
			return murmur.EventMessage{Answer: text, MessageID: s.messageID}, nil
		}
	}
}

func (s *stream) fail(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		s.err = fmt.Errorf("gemini: %w", err)
	} else {
		s.err = fmt.Errorf("gemini: %w: %w", murmur.ErrTransport, err)
	}
	s.state = murmur.StreamStateError
	return s.err
}

// chunkText concatenates the non-thought text parts of the first candidate.
func chunkText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var text string
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		text += p.Text
	}
	return text
}

func (s *stream) State() murmur.StreamState {
	return s.state
}

func (s *stream) Close() error {
	if s.state != murmur.StreamStateComplete && s.state != murmur.StreamStateError {
		s.state = murmur.StreamStateClosed
	}
	s.stop()
	return nil
}
