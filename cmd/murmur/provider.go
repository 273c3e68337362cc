package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/dify"
	"github.com/fwojciec/murmur/gemini"
	"github.com/fwojciec/murmur/gobreaker"
	"github.com/fwojciec/murmur/openai"
)

// resolveProvider constructs the configured backend behind a circuit
// breaker. Keys come from the config, which already carries env overrides.
func resolveProvider(ctx context.Context, cfg *Config, logger *slog.Logger) (murmur.Provider, error) {
	var inner murmur.Provider
	switch cfg.Backend {
	case backendDify:
		if cfg.Dify.APIKey == "" {
			return nil, fmt.Errorf("dify.api_key not set (use the config file or MURMUR_DIFY_API_KEY)")
		}
		opts := []dify.Option{dify.WithLogger(logger)}
		if cfg.Dify.BaseURL != "" {
			opts = append(opts, dify.WithBaseURL(cfg.Dify.BaseURL))
		}
		inner = dify.New(cfg.Dify.APIKey, opts...)
	case backendGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini.api_key not set (use the config file or MURMUR_GEMINI_API_KEY)")
		}
		var opts []gemini.Option
		if cfg.Gemini.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Gemini.Model))
		}
		client, err := gemini.New(ctx, cfg.Gemini.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		inner = client
	case backendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai.api_key not set (use the config file or MURMUR_OPENAI_API_KEY)")
		}
		opts := []openai.Option{openai.WithLogger(logger)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAI.Model))
		}
		inner = openai.New(cfg.OpenAI.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	settings := cfg.Breaker
	if settings.Name == "" {
		settings.Name = cfg.Backend
	}
	return gobreaker.New(inner, settings, logger), nil
}
