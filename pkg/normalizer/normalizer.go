// Package normalizer turns the raw, arbitrarily chunked text of a model
// response into a sequence of well-formed AG-UI protocol events.
//
// Lines are resolved in three tiers: a line that is already an event is
// passed through byte-identical, an event embedded in prose is cut out with
// the surrounding text kept as messages, and anything else is wrapped as a
// message. Nothing the model wrote is dropped except code-fence markers and
// surrounding whitespace.
package normalizer

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/logger"
)

// NoBackendContent is the message emitted when no backend is configured.
const NoBackendContent = "Error: no text-generation backend configured. " +
	"Set GEMINI_API_KEY or configure backend.provider and backend.api_key."

// ErrorContent formats the message emitted when the upstream stream fails.
func ErrorContent(err error) string {
	return "Error generating response: " + err.Error()
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for per-line debug output.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = l
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(n *Normalizer) {
		if o != nil {
			n.observers = append(n.observers, o)
		}
	}
}

// Normalizer normalizes backend responses. Runs share no buffers, but they
// do share observers, so per-request observation needs a Normalizer per
// request.
type Normalizer struct {
	backend   Backend
	logger    *slog.Logger
	observers observers
}

// New creates a Normalizer over backend. A nil backend is allowed: every
// run then reports the missing configuration as its only event.
func New(backend Backend, opts ...Option) *Normalizer {
	n := &Normalizer{
		backend: backend,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run asks the backend to answer prompt and returns the normalized event
// sequence. The backend is not called until the sequence is iterated.
func (n *Normalizer) Run(ctx context.Context, prompt string) iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		if n.backend == nil {
			n.emit(yield, event.NewMessage(NoBackendContent))
			return
		}

		src, err := n.backend.Stream(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.fail(yield, err)
			return
		}

		n.stream(ctx, src, yield)
	}
}

// Normalize returns the event sequence for an already opened source. The
// source is closed when the sequence ends or the consumer stops early.
func Normalize(ctx context.Context, src Source, opts ...Option) iter.Seq[event.Event] {
	n := New(nil, opts...)
	return func(yield func(event.Event) bool) {
		n.stream(ctx, src, yield)
	}
}

func (n *Normalizer) stream(ctx context.Context, src Source, yield func(event.Event) bool) {
	defer func() {
		if err := src.Close(); err != nil {
			n.logger.Debug("closing chunk source", "error", err)
		}
	}()

	// pending holds the text after the last newline seen so far.
	var pending string

	for {
		if ctx.Err() != nil {
			return
		}

		chunk, err := src.Next(ctx)
		if chunk != "" {
			pending += chunk
			for {
				i := strings.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				line := pending[:i]
				pending = pending[i+1:]
				if !n.resolve(yield, line) {
					return
				}
			}
		}

		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			n.logger.Debug("stream cancelled", "error", ctx.Err())
			return
		}

		// Residue is flushed before any failure message.
		if !n.resolve(yield, pending) {
			return
		}
		pending = ""

		if !errors.Is(err, io.EOF) {
			n.fail(yield, err)
		}
		return
	}
}

// resolve runs the line resolver on one raw line. It reports false when the
// consumer stopped iterating.
func (n *Normalizer) resolve(yield func(event.Event) bool, raw string) bool {
	line := strings.TrimSpace(StripFences(raw))
	if line == "" {
		return true
	}

	res := ResolveLine(line)
	n.observers.LineResolved(res)
	if res.Tier != TierDirect {
		n.logger.Debug("line normalized",
			"tier", res.Tier.String(),
			"reason", res.Reason,
			"events", len(res.Events),
		)
	}

	for _, e := range res.Events {
		if !n.emit(yield, e) {
			return false
		}
	}
	return true
}

func (n *Normalizer) fail(yield func(event.Event) bool, err error) {
	n.logger.Warn("upstream stream failed", "error", err)
	n.observers.UpstreamFailed(err)
	n.emit(yield, event.NewMessage(ErrorContent(err)))
}

func (n *Normalizer) emit(yield func(event.Event) bool, e event.Event) bool {
	n.observers.Emitted(e)
	return yield(e)
}
