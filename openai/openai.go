// Package openai implements [murmur.Provider] for OpenAI-compatible chat
// completion endpoints (OpenAI, DeepSeek, local servers).
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/murmur"
	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// Interface compliance checks.
var (
	_ murmur.Provider = (*Client)(nil)
	_ murmur.Stream   = (*stream)(nil)
)

// Client streams chat completions.
type Client struct {
	config openai.ClientConfig
	client *openai.Client
	model  string
	logger *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.config.BaseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.config.HTTPClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		config: openai.DefaultConfig(apiKey),
		model:  defaultModel,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	c.client = openai.NewClientWithConfig(c.config)
	return c
}

// Stream starts a streaming chat completion. The completion id is reported
// as the message id; there are no server-side conversations.
func (c *Client) Stream(ctx context.Context, req murmur.Request) (murmur.Stream, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("openai: %w: no messages", murmur.ErrValidation)
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	s, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   true,
		User:     req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w: %w", murmur.ErrTransport, err)
	}
	return &stream{inner: s, logger: c.logger}, nil
}

type stream struct {
	inner     *openai.ChatCompletionStream
	logger    *slog.Logger
	state     murmur.StreamState
	messageID string
	err       error
}

func (s *stream) Next() (murmur.Event, error) {
	switch s.state {
	case murmur.StreamStateComplete:
		return nil, io.EOF
	case murmur.StreamStateError:
		return nil, s.err
	case murmur.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", murmur.ErrStreamClosed)
	}
	for {
		resp, err := s.inner.Recv()
		if errors.Is(err, io.EOF) {
			s.state = murmur.StreamStateComplete
			return murmur.EventMessageEnd{MessageID: s.messageID}, nil
		}
		if err != nil {
			s.state = murmur.StreamStateError
			s.err = fmt.Errorf("openai: %w: %w", murmur.ErrTransport, err)
			return nil, s.err
		}
		s.state = murmur.StreamStateStreaming
		if resp.ID != "" {
			s.messageID = resp.ID
		}
		var text strings.Builder
		for _, choice := range resp.Choices {
			text.WriteString(choice.Delta.Content)
			if choice.FinishReason != "" {
				s.logger.Debug("completion finished", "reason", choice.FinishReason, "id", resp.ID)
			}
		}
		if text.Len() > 0 {
			return murmur.EventMessage{Answer: text.String(), MessageID: s.messageID}, nil
		}
	}
}

func (s *stream) State() murmur.StreamState {
	return s.state
}

func (s *stream) Close() error {
	if s.state != murmur.StreamStateComplete && s.state != murmur.StreamStateError {
		s.state = murmur.StreamStateClosed
	}
	s.inner.Close()
	return nil
}
