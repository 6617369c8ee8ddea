// Package api provides the HTTP server that streams normalized AG-UI events
// to clients and exposes recorded transcripts.
package api

import (
	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/metrics"
	"github.com/papercomputeco/agentui/pkg/normalizer"
	"github.com/papercomputeco/agentui/pkg/prompt"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// TranscriptQueue accepts finished transcripts for asynchronous persistence.
// *worker.Pool satisfies it.
type TranscriptQueue interface {
	Enqueue(rec *transcript.Record) bool
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Backend generates responses. Nil means no backend is configured and
	// every /agent request answers with a single explanatory message.
	Backend normalizer.Backend

	// Registry lists the UI components offered to the model. Defaults to
	// the built-in components.
	Registry *event.Registry

	// Prompt assembles the prompt sent to the backend. Defaults to a
	// builder over Registry.
	Prompt *prompt.Builder

	// Transcripts receives a record of every /agent request. Optional.
	Transcripts TranscriptQueue

	// Metrics collects stream metrics and serves /metrics. Optional.
	Metrics *metrics.Collector
}
