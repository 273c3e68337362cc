package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/murmur"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ murmur.Provider = (*Client)(nil)

// Client implements [murmur.Provider] for the Google Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens caps the answer length.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = int32(n) }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", murmur.ErrTransport, err)
	}
	c := &Client{
		client:    gc,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [murmur.Stream] of answer deltas.
func (c *Client) Stream(ctx context.Context, req murmur.Request) (murmur.Stream, error) {
	contents, system := ConvertMessages(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: %w: no messages", murmur.ErrValidation)
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:   c.maxTokens,
		SystemInstruction: system,
	}
	seq := c.client.Models.GenerateContentStream(ctx, c.model, contents, config)
	return NewStreamFromIter(ctx, seq), nil
}

// ConvertMessages converts chat messages to genai Contents. System messages
// are joined into the returned system instruction, nil when there are none.
func ConvertMessages(msgs []murmur.ChatMessage) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   *genai.Content
	)
	for _, m := range msgs {
		switch m.Role {
		case murmur.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})
		case murmur.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	return contents, system
}
