package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/gobreaker"
	"github.com/fwojciec/murmur/tts"
	"gopkg.in/yaml.v3"
)

// Backends accepted by the backend key.
const (
	backendDify   = "dify"
	backendGemini = "gemini"
	backendOpenAI = "openai"
)

// Config is the murmur configuration file.
type Config struct {
	Backend   string             `yaml:"backend"`
	Dify      DifyConfig         `yaml:"dify"`
	Gemini    GeminiConfig       `yaml:"gemini"`
	OpenAI    OpenAIConfig       `yaml:"openai"`
	Breaker   gobreaker.Settings `yaml:"breaker"`
	Segmenter SegmenterConfig    `yaml:"segmenter"`
	History   HistoryConfig      `yaml:"history"`
	User      UserConfig         `yaml:"user"`
	Assistant AssistantConfig    `yaml:"assistant"`
	TTS       TTSConfig          `yaml:"tts"`
	Logger    LoggerConfig       `yaml:"logger"`
}

type DifyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SegmenterConfig holds the segmentation limits in grapheme clusters.
type SegmenterConfig struct {
	Threshold int `yaml:"threshold"`
	Window    int `yaml:"window"`
}

type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

type UserConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type AssistantConfig struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar"`
}

// TTSConfig selects the speech filter stages used by ask --speech.
type TTSConfig struct {
	RemoveSpecialChars  bool `yaml:"remove_special_chars"`
	IgnoreBrackets      bool `yaml:"ignore_brackets"`
	IgnoreParentheses   bool `yaml:"ignore_parentheses"`
	IgnoreAsterisks     bool `yaml:"ignore_asterisks"`
	IgnoreAngleBrackets bool `yaml:"ignore_angle_brackets"`
}

// Options converts the config to filter options.
func (c TTSConfig) Options() tts.Options {
	return tts.Options{
		RemoveSpecialChars:  c.RemoveSpecialChars,
		IgnoreBrackets:      c.IgnoreBrackets,
		IgnoreParentheses:   c.IgnoreParentheses,
		IgnoreAsterisks:     c.IgnoreAsterisks,
		IgnoreAngleBrackets: c.IgnoreAngleBrackets,
	}
}

// LoggerConfig selects the slog handler.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	opts := tts.DefaultOptions()
	return &Config{
		Backend: backendDify,
		Dify:    DifyConfig{BaseURL: "https://api.dify.ai"},
		Breaker: gobreaker.Settings{
			Name:        "backend",
			MaxFailures: gobreaker.DefaultMaxFailures,
			Timeout:     gobreaker.DefaultTimeout,
			Interval:    gobreaker.DefaultInterval,
		},
		Segmenter: SegmenterConfig{
			Threshold: murmur.DefaultThreshold,
			Window:    murmur.DefaultWindow,
		},
		History:   HistoryConfig{Dir: defaultDataDir()},
		User:      UserConfig{ID: "default", Name: "user"},
		Assistant: AssistantConfig{Name: "assistant"},
		TTS: TTSConfig{
			RemoveSpecialChars:  opts.RemoveSpecialChars,
			IgnoreBrackets:      opts.IgnoreBrackets,
			IgnoreParentheses:   opts.IgnoreParentheses,
			IgnoreAsterisks:     opts.IgnoreAsterisks,
			IgnoreAngleBrackets: opts.IgnoreAngleBrackets,
		},
		Logger: LoggerConfig{Level: "warn", Format: "text", Output: "stderr"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".murmur")
}

// DefaultConfigPath is where the config file is looked up when --config is
// not given.
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load builds the configuration: defaults, then the file at path (a missing
// file is fine), then environment overrides looked up with getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := ApplyEnvOverrides(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overwrites config values with MURMUR_* variables.
func ApplyEnvOverrides(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"MURMUR_BACKEND", &cfg.Backend},
		{"MURMUR_DIFY_BASE_URL", &cfg.Dify.BaseURL},
		{"MURMUR_DIFY_API_KEY", &cfg.Dify.APIKey},
		{"MURMUR_GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"MURMUR_GEMINI_MODEL", &cfg.Gemini.Model},
		{"MURMUR_OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"MURMUR_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"MURMUR_OPENAI_MODEL", &cfg.OpenAI.Model},
		{"MURMUR_HISTORY_DIR", &cfg.History.Dir},
		{"MURMUR_USER_ID", &cfg.User.ID},
		{"MURMUR_USER_NAME", &cfg.User.Name},
		{"MURMUR_LOGGER_LEVEL", &cfg.Logger.Level},
		{"MURMUR_LOGGER_FORMAT", &cfg.Logger.Format},
		{"MURMUR_LOGGER_OUTPUT", &cfg.Logger.Output},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MURMUR_SEGMENTER_THRESHOLD", &cfg.Segmenter.Threshold},
		{"MURMUR_SEGMENTER_WINDOW", &cfg.Segmenter.Window},
	}
	for _, s := range ints {
		v := getenv(s.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = n
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case backendDify, backendGemini, backendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q: must be %q, %q or %q",
			c.Backend, backendDify, backendGemini, backendOpenAI))
	}
	if c.Segmenter.Threshold < 0 {
		errs = append(errs, errors.New("segmenter.threshold must not be negative"))
	}
	if c.Segmenter.Window < 1 {
		errs = append(errs, errors.New("segmenter.window must be positive"))
	}
	if strings.TrimSpace(c.History.Dir) == "" {
		errs = append(errs, errors.New("history.dir is required"))
	}
	if err := murmur.ValidateID(c.User.ID); err != nil {
		errs = append(errs, fmt.Errorf("user.id: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", murmur.ErrValidation, err)
	}
	return nil
}
