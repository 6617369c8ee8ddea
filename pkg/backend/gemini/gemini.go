// Package gemini streams completions from the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/papercomputeco/agentui/pkg/normalizer"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config configures the Gemini backend.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// Backend generates text with a Gemini model.
type Backend struct {
	client *genai.Client
	model  string
}

// New creates a Gemini backend.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Backend{client: client, model: model}, nil
}

func (b *Backend) Name() string {
	return "gemini/" + b.model
}

// Stream starts a streaming generation. The request is sent on the first
// call to Next.
func (b *Backend) Stream(ctx context.Context, prompt string) (normalizer.Source, error) {
	seq := b.client.Models.GenerateContentStream(ctx, b.model, genai.Text(prompt), nil)
	next, stop := iter.Pull2(seq)
	return &source{next: next, stop: stop}, nil
}

type source struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *source) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}

		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

func (s *source) Close() error {
	s.stop()
	return nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
