// Package mock provides test doubles for murmur interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/murmur"
)

// Interface compliance checks.
var (
	_ murmur.Provider        = (*Provider)(nil)
	_ murmur.FeedbackSender  = (*Provider)(nil)
	_ murmur.ParameterSource = (*Provider)(nil)
)

// Provider is a test double for murmur.Provider. It also implements
// FeedbackSender and ParameterSource for command tests.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn       func(ctx context.Context, req murmur.Request) (murmur.Stream, error)
	SendFeedbackFn func(ctx context.Context, fb murmur.Feedback) bool
	ParametersFn   func(ctx context.Context) murmur.Parameters
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req murmur.Request) (murmur.Stream, error) {
	return p.StreamFn(ctx, req)
}

// SendFeedback delegates to SendFeedbackFn.
func (p *Provider) SendFeedback(ctx context.Context, fb murmur.Feedback) bool {
	return p.SendFeedbackFn(ctx, fb)
}

// Parameters delegates to ParametersFn.
func (p *Provider) Parameters(ctx context.Context) murmur.Parameters {
	return p.ParametersFn(ctx)
}

// Events returns a Provider whose streams replay events and then return
// io.EOF. Each call to Stream starts a fresh replay.
func Events(events ...murmur.Event) *Provider {
	return &Provider{
		StreamFn: func(context.Context, murmur.Request) (murmur.Stream, error) {
			return Replay(events...), nil
		},
	}
}
