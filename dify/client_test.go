package dify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/dify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat-messages", r.URL.Path)
		assert.Equal(t, "Bearer app-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		sseHandler(`{"event":"message_end"}`)(w, r)
	}))
	defer srv.Close()

	client := dify.New("app-key", dify.WithBaseURL(srv.URL+"/"))
	s, err := client.Stream(context.Background(), murmur.Request{
		Messages: []murmur.ChatMessage{
			murmur.UserText("first"),
			{Role: murmur.RoleAssistant, Content: "reply"},
			murmur.UserText("second"),
		},
		UserID:         "alice",
		ConversationID: "c-42",
		Selection:      "poetry",
	})
	require.NoError(t, err)
	defer s.Close()

	assert.JSONEq(t, `{
		"inputs": {"selection": "poetry"},
		"query": "second",
		"response_mode": "streaming",
		"user": "alice",
		"conversation_id": "c-42"
	}`, string(captured))
}

func TestBuildChatRequest(t *testing.T) {
	t.Parallel()

	t.Run("empty messages give empty query", func(t *testing.T) {
		t.Parallel()
		got := dify.BuildChatRequest(murmur.Request{UserID: "u"})
		assert.Equal(t, "", got.Query)
		assert.Equal(t, "streaming", got.ResponseMode)
		assert.Equal(t, "u", got.User)
	})

	t.Run("selection omitted when empty", func(t *testing.T) {
		t.Parallel()
		got := dify.BuildChatRequest(murmur.Request{Messages: []murmur.ChatMessage{murmur.UserText("q")}})
		data, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `{"inputs":{},"query":"q","response_mode":"streaming","user":"","conversation_id":""}`, string(data))
	})
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	t.Run("dify error body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"Conversation Not Exists.","status":404}`))
		}))
		defer srv.Close()

		_, err := dify.New("k", dify.WithBaseURL(srv.URL)).Stream(context.Background(), murmur.Request{})
		require.Error(t, err)
		assert.ErrorIs(t, err, murmur.ErrTransport)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "Conversation Not Exists.")
	})

	t.Run("plain body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := dify.New("k", dify.WithBaseURL(srv.URL)).Stream(context.Background(), murmur.Request{})
		require.Error(t, err)
		assert.ErrorIs(t, err, murmur.ErrTransport)
		assert.Contains(t, err.Error(), "upstream down")
	})
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := dify.New("k", dify.WithBaseURL(url)).Stream(context.Background(), murmur.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, murmur.ErrTransport)
}
