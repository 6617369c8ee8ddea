// Package openai streams chat completions from OpenAI-compatible APIs.
package openai

import (
	"context"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/papercomputeco/agentui/pkg/normalizer"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Config configures the OpenAI backend.
type Config struct {
	APIKey string
	Model  string

	// BaseURL points the client at any OpenAI-compatible server.
	BaseURL string
}

// Backend generates text with an OpenAI chat model.
type Backend struct {
	client openai.Client
	model  string
}

// New creates an OpenAI backend.
func New(cfg Config) *Backend {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Backend{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (b *Backend) Name() string {
	return "openai/" + b.model
}

// Stream sends prompt as a single user message.
func (b *Backend) Stream(ctx context.Context, prompt string) (normalizer.Source, error) {
	stream := b.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	return &source{stream: stream}, nil
}

type source struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *source) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.stream.Next() {
			if err := s.stream.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
}

func (s *source) Close() error {
	return s.stream.Close()
}
