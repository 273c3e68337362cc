package murmur_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore returns a HistoryStore double backed by a single history.
func memoryStore(meta *murmur.HistoryMetadata, entries *[]murmur.HistoryEntry) *mock.HistoryStore {
	return &mock.HistoryStore{
		AppendFn: func(_, _ string, e murmur.HistoryEntry) error {
			*entries = append(*entries, e)
			return nil
		},
		EntriesFn: func(_, _ string) ([]murmur.HistoryEntry, error) {
			return *entries, nil
		},
		MetadataFn: func(_, _ string) (murmur.HistoryMetadata, error) {
			if meta.ConversationID == "" && meta.UserID == "" {
				return murmur.HistoryMetadata{}, murmur.ErrNotFound
			}
			return *meta, nil
		},
		SetMetadataFn: func(_, _ string, patch murmur.HistoryMetadata) error {
			if patch.ConversationID != "" {
				meta.ConversationID = patch.ConversationID
			}
			if patch.UserID != "" {
				meta.UserID = patch.UserID
			}
			return nil
		},
	}
}

func TestConversation_Ask(t *testing.T) {
	t.Parallel()
	var (
		meta     murmur.HistoryMetadata
		entries  []murmur.HistoryEntry
		requests []murmur.Request
	)
	p := &mock.Provider{
		StreamFn: func(_ context.Context, req murmur.Request) (murmur.Stream, error) {
			requests = append(requests, req)
			return mock.Replay(
				murmur.EventMessage{Answer: "答案。", MessageID: "m1", ConversationID: "c1"},
				murmur.EventMessageEnd{MessageID: "m1", ConversationID: "c1"},
			), nil
		},
	}
	transcript := murmur.NewTranscript(memoryStore(&meta, &entries), nil)
	conv := murmur.NewConversation(murmur.NewResponder(p), transcript, "alice", "h1",
		murmur.WithSelection("beginner"),
		murmur.WithHumanName("Alice"),
		murmur.WithAssistant("Murmur", "bot.png"),
	)
	require.Empty(t, conv.ConversationID())

	outs := collect(conv.Ask(context.Background(), "问题"))

	assert.Equal(t, []murmur.Output{
		murmur.ConversationID{ID: "c1"},
		murmur.MessageID{ID: "m1"},
		murmur.Text{Text: "答案。"},
	}, outs)
	assert.Equal(t, "c1", conv.ConversationID())
	assert.Equal(t, "c1", meta.ConversationID)

	require.Len(t, entries, 2)
	assert.Equal(t, murmur.HistoryRoleHuman, entries[0].Role)
	assert.Equal(t, "问题", entries[0].Content)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.Equal(t, murmur.HistoryEntry{
		Role:      murmur.HistoryRoleAI,
		Timestamp: entries[1].Timestamp,
		Content:   "答案。",
		Name:      "Murmur",
		Avatar:    "bot.png",
		MessageID: "m1",
	}, entries[1])

	collect(conv.Ask(context.Background(), "再问"))

	require.Len(t, requests, 2)
	assert.Empty(t, requests[0].ConversationID)
	assert.Equal(t, "c1", requests[1].ConversationID)
	assert.Equal(t, "alice", requests[1].UserID)
	assert.Equal(t, "beginner", requests[1].Selection)
	assert.Equal(t, "再问", requests[1].LastContent())
}

func TestConversation_ResumesConversationID(t *testing.T) {
	t.Parallel()
	meta := murmur.HistoryMetadata{ConversationID: "c9", UserID: "alice"}
	var entries []murmur.HistoryEntry
	transcript := murmur.NewTranscript(memoryStore(&meta, &entries), nil)
	conv := murmur.NewConversation(murmur.NewResponder(mock.Events()), transcript, "alice", "h1")
	assert.Equal(t, "c9", conv.ConversationID())
	assert.Equal(t, "h1", conv.HistoryUID())
}

func TestConversation_StoreFailuresDoNotInterrupt(t *testing.T) {
	t.Parallel()
	failing := &mock.HistoryStore{
		AppendFn: func(string, string, murmur.HistoryEntry) error {
			return murmur.ErrPersistence
		},
		MetadataFn: func(string, string) (murmur.HistoryMetadata, error) {
			return murmur.HistoryMetadata{}, errors.New("disk gone")
		},
		SetMetadataFn: func(string, string, murmur.HistoryMetadata) error {
			return murmur.ErrPersistence
		},
	}
	p := mock.Events(
		murmur.EventMessage{Answer: "still here。", ConversationID: "c1"},
		murmur.EventMessageEnd{},
	)
	conv := murmur.NewConversation(murmur.NewResponder(p), murmur.NewTranscript(failing, nil), "alice", "h1")

	outs := collect(conv.Ask(context.Background(), "hello"))

	assert.Equal(t, []murmur.Output{
		murmur.ConversationID{ID: "c1"},
		murmur.Text{Text: "still here。"},
	}, outs)
	assert.Equal(t, "c1", conv.ConversationID())
}

func TestConversation_EarlyStopSkipsAnswer(t *testing.T) {
	t.Parallel()
	var (
		meta    murmur.HistoryMetadata
		entries []murmur.HistoryEntry
	)
	p := mock.Events(
		murmur.EventMessage{Answer: "one。two。"},
		murmur.EventMessageEnd{},
	)
	conv := murmur.NewConversation(murmur.NewResponder(p), murmur.NewTranscript(memoryStore(&meta, &entries), nil), "alice", "h1")

	for range conv.Ask(context.Background(), "hi") {
		break
	}

	require.Len(t, entries, 1)
	assert.Equal(t, murmur.HistoryRoleHuman, entries[0].Role)
}

func TestTranscript_Entries(t *testing.T) {
	t.Parallel()
	t.Run("returns stored entries", func(t *testing.T) {
		t.Parallel()
		var meta murmur.HistoryMetadata
		entries := []murmur.HistoryEntry{{Role: murmur.HistoryRoleHuman, Content: "x"}}
		tr := murmur.NewTranscript(memoryStore(&meta, &entries), nil)
		assert.Equal(t, entries, tr.Entries("alice", "h1"))
	})

	t.Run("read errors yield nil", func(t *testing.T) {
		t.Parallel()
		store := &mock.HistoryStore{
			EntriesFn: func(string, string) ([]murmur.HistoryEntry, error) {
				return nil, murmur.ErrNotFound
			},
		}
		tr := murmur.NewTranscript(store, nil)
		assert.Nil(t, tr.Entries("alice", "missing"))
	})
}
