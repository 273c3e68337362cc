package gemini_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse, tail error) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if tail != nil {
			yield(nil, tail)
		}
	}
}

func textChunk(id string, parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		ResponseID: id,
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: parts},
		}},
	}
}

func collectStreamEvents(t *testing.T, s murmur.Stream) []murmur.Event {
	t.Helper()
	var events []murmur.Event
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestStream_TextDeltas(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("r1", &genai.Part{Text: "你好"}),
		textChunk("r1", &genai.Part{Text: "，世界。"}),
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks, nil))

	events := collectStreamEvents(t, s)

	assert.Equal(t, []murmur.Event{
		murmur.EventMessage{Answer: "你好", MessageID: "r1"},
		murmur.EventMessage{Answer: "，世界。", MessageID: "r1"},
		murmur.EventMessageEnd{MessageID: "r1"},
	}, events)
	assert.Equal(t, murmur.StreamStateComplete, s.State())
}

func TestStream_SkipsThoughtsAndEmptyChunks(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("", &genai.Part{Text: "thinking", Thought: true}),
		{},
		textChunk("", &genai.Part{Text: "a"}, &genai.Part{Text: "b"}),
	}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks, nil))

	events := collectStreamEvents(t, s)

	assert.Equal(t, []murmur.Event{
		murmur.EventMessage{Answer: "ab"},
		murmur.EventMessageEnd{},
	}, events)
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{textChunk("", &genai.Part{Text: "partial"})}
	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks, errors.New("quota exceeded")))

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, murmur.EventMessage{Answer: "partial"}, evt)

	_, err = s.Next()
	require.ErrorIs(t, err, murmur.ErrTransport)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, murmur.StreamStateError, s.State())

	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	t.Run("before completion", func(t *testing.T) {
		t.Parallel()
		chunks := []*genai.GenerateContentResponse{textChunk("", &genai.Part{Text: "x"})}
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks, nil))
		_, err := s.Next()
		require.NoError(t, err)

		require.NoError(t, s.Close())
		assert.Equal(t, murmur.StreamStateClosed, s.State())
		_, err = s.Next()
		assert.ErrorIs(t, err, murmur.ErrStreamClosed)
	})

	t.Run("after completion keeps state", func(t *testing.T) {
		t.Parallel()
		s := gemini.NewStreamFromIter(context.Background(), mockChunks(nil, nil))
		collectStreamEvents(t, s)
		require.NoError(t, s.Close())
		assert.Equal(t, murmur.StreamStateComplete, s.State())
	})
}
