// Package gobreaker guards a [murmur.Provider] with a circuit breaker.
//
// Only stream start-up goes through the breaker. Once a stream is open,
// failures mid-stream are reported by the stream itself and do not count
// against the circuit.
package gobreaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/murmur"
	"github.com/sony/gobreaker/v2"
)

// Default breaker settings.
const (
	DefaultMaxFailures uint32 = 5
	DefaultTimeout            = 30 * time.Second
	DefaultInterval           = 60 * time.Second
)

// Settings configures the breaker. Zero fields take the defaults.
type Settings struct {
	// Name identifies the breaker in log records.
	Name string `yaml:"name"`
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
	// Interval clears failure counts while closed.
	Interval time.Duration `yaml:"interval"`
}

// Interface compliance checks.
var (
	_ murmur.Provider        = (*Provider)(nil)
	_ murmur.FeedbackSender  = (*Provider)(nil)
	_ murmur.ParameterSource = (*Provider)(nil)
)

// Provider wraps another provider with a circuit breaker.
type Provider struct {
	inner   murmur.Provider
	breaker *gobreaker.CircuitBreaker[murmur.Stream]
}

// New wraps inner. A nil logger discards state changes.
func New(inner murmur.Provider, s Settings, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = DefaultMaxFailures
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Interval == 0 {
		s.Interval = DefaultInterval
	}
	if s.Name == "" {
		s.Name = "provider"
	}
	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker[murmur.Stream](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, murmur.ErrValidation)
		},
	})
	return &Provider{inner: inner, breaker: cb}
}

// Stream opens a stream through the breaker. An open circuit fails fast
// with an error wrapping ErrTransport.
func (p *Provider) Stream(ctx context.Context, req murmur.Request) (murmur.Stream, error) {
	s, err := p.breaker.Execute(func() (murmur.Stream, error) {
		return p.inner.Stream(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("gobreaker: %w: %w", murmur.ErrTransport, err)
	}
	return s, err
}

// SendFeedback forwards to the wrapped provider when it accepts feedback.
func (p *Provider) SendFeedback(ctx context.Context, fb murmur.Feedback) bool {
	fs, ok := p.inner.(murmur.FeedbackSender)
	if !ok {
		return false
	}
	return fs.SendFeedback(ctx, fb)
}

// Parameters forwards to the wrapped provider when it has parameters.
func (p *Provider) Parameters(ctx context.Context) murmur.Parameters {
	ps, ok := p.inner.(murmur.ParameterSource)
	if !ok {
		return murmur.Parameters{}
	}
	return ps.Parameters(ctx)
}

// State returns the current circuit state.
func (p *Provider) State() gobreaker.State {
	return p.breaker.State()
}
