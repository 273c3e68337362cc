package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Next(t *testing.T) {
	t.Parallel()
	t.Run("delegates to NextFn", func(t *testing.T) {
		t.Parallel()
		want := murmur.EventMessage{Answer: "hello"}
		s := mock.Stream{
			NextFn: func() (murmur.Event, error) {
				return want, nil
			},
		}
		got, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when NextFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Next()
		})
	})
}

func TestStream_State(t *testing.T) {
	t.Parallel()
	t.Run("delegates to StateFn", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{
			StateFn: func() murmur.StreamState {
				return murmur.StreamStateComplete
			},
		}
		assert.Equal(t, murmur.StreamStateComplete, s.State())
	})

	t.Run("returns StreamStateNew when StateFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Equal(t, murmur.StreamStateNew, s.State())
	})
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("close error")
		s := mock.Stream{
			CloseFn: func() error {
				return wantErr
			},
		}
		assert.ErrorIs(t, s.Close(), wantErr)
	})

	t.Run("returns nil when CloseFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.NoError(t, s.Close())
	})
}

func TestReplay(t *testing.T) {
	t.Parallel()
	s := mock.Replay(
		murmur.EventMessage{Answer: "a"},
		murmur.EventMessageEnd{MessageID: "m1"},
	)
	assert.Equal(t, murmur.StreamStateNew, s.State())

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, murmur.EventMessage{Answer: "a"}, evt)
	assert.Equal(t, murmur.StreamStateStreaming, s.State())

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, murmur.EventMessageEnd{MessageID: "m1"}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, murmur.StreamStateComplete, s.State())
}

func TestEvents(t *testing.T) {
	t.Parallel()
	p := mock.Events(murmur.EventMessage{Answer: "x"})
	for range 2 {
		s, err := p.Stream(context.Background(), murmur.Request{})
		require.NoError(t, err)
		evt, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, murmur.EventMessage{Answer: "x"}, evt)
	}
}
