package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/murmur"
)

// Interface compliance checks.
var (
	_ murmur.Provider        = (*Client)(nil)
	_ murmur.FeedbackSender  = (*Client)(nil)
	_ murmur.ParameterSource = (*Client)(nil)
)

// Client talks to one Dify app identified by its API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for self-hosted Dify and for
// testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. Streams are long-lived, so the
// client should not carry an overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for skipped events and failed side calls.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] with the given app API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends the request in streaming mode and returns a [murmur.Stream]
// of answer events.
func (c *Client) Stream(ctx context.Context, req murmur.Request) (murmur.Stream, error) {
	body, err := json.Marshal(BuildChatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("dify: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, chatMessagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dify: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dify: %w: %w", murmur.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(resp.Body, c.logger), nil
}

// BuildChatRequest maps a request onto the chat-messages body. Only the
// last message is sent: the backend keeps the conversation context.
func BuildChatRequest(req murmur.Request) ChatRequest {
	inputs := map[string]string{}
	if req.Selection != "" {
		inputs["selection"] = req.Selection
	}
	return ChatRequest{
		Inputs:         inputs,
		Query:          req.LastContent(),
		ResponseMode:   responseMode,
		User:           req.UserID,
		ConversationID: req.ConversationID,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("dify: %w: HTTP %d (failed to read body: %w)", murmur.ErrTransport, resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("dify: %w: HTTP %d: %s", murmur.ErrTransport, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("dify: %w: HTTP %d: %s: %s", murmur.ErrTransport, resp.StatusCode, apiErr.Code, apiErr.Message)
}
