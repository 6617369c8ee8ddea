package normalizer

import (
	"context"
	"io"
)

// Source is a sequential stream of raw text chunks produced by a
// text-generation backend. Chunk boundaries carry no meaning.
//
// Next returns the next chunk, io.EOF once the stream is exhausted, or any
// other error when the upstream fails. Close releases the underlying stream
// and is safe to call more than once.
type Source interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Backend opens a chunk source for a fully assembled prompt.
type Backend interface {
	// Name identifies the backend in logs and transcripts.
	Name() string

	// Stream starts generating a response to prompt.
	Stream(ctx context.Context, prompt string) (Source, error)
}

// SliceSource replays a fixed list of chunks and then ends with err, or
// io.EOF when err is nil.
type SliceSource struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

// NewSliceSource returns a source yielding chunks in order.
func NewSliceSource(chunks []string, err error) *SliceSource {
	return &SliceSource{chunks: chunks, err: err}
}

func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SliceSource) Closed() bool {
	return s.closed
}

// Consumed reports how many chunks have been handed out.
func (s *SliceSource) Consumed() int {
	return s.pos
}
