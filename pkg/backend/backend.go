// Package backend constructs the text-generation backends that feed the
// normalizer.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/papercomputeco/agentui/pkg/backend/gemini"
	"github.com/papercomputeco/agentui/pkg/backend/openai"
	"github.com/papercomputeco/agentui/pkg/backend/replay"
	"github.com/papercomputeco/agentui/pkg/normalizer"
)

var (
	// ErrNoBackend is returned when the selected provider has no credential
	// or input to work from. Callers keep serving and report it per request.
	ErrNoBackend = errors.New("no text-generation backend configured")

	// ErrUnknownBackend is returned for an unrecognized provider name.
	ErrUnknownBackend = errors.New("unknown backend provider")
)

// Supported provider names.
const (
	Gemini = "gemini"
	OpenAI = "openai"
	Replay = "replay"
)

// SupportedProviders returns the list of all supported provider names.
func SupportedProviders() []string {
	return []string{Gemini, OpenAI, Replay}
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	ReplayPath      string
	ReplayChunkSize int
}

// New creates the backend described by cfg. When the provider lacks its
// credential (or replay file) New returns a nil backend and ErrNoBackend.
func New(ctx context.Context, cfg Config) (normalizer.Backend, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = Gemini
	}

	switch provider {
	case Gemini:
		key := firstNonEmpty(cfg.APIKey, os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: set GEMINI_API_KEY", ErrNoBackend)
		}
		b, err := gemini.New(ctx, gemini.Config{
			APIKey:  key,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case OpenAI:
		key := firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrNoBackend)
		}
		return openai.New(openai.Config{
			APIKey:  key,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}), nil
	case Replay:
		if cfg.ReplayPath == "" {
			return nil, fmt.Errorf("%w: backend.replay_path is empty", ErrNoBackend)
		}
		return replay.New(cfg.ReplayPath, cfg.ReplayChunkSize), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownBackend, provider, SupportedProviders())
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
