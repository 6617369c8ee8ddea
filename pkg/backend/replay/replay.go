// Package replay serves a recorded model response from a file, cut into
// fixed-size chunks. It stands in for a live model in demos and tests.
package replay

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/papercomputeco/agentui/pkg/normalizer"
)

// DefaultChunkSize is the chunk size in bytes when none is configured.
const DefaultChunkSize = 16

// Backend replays the contents of a file regardless of the prompt.
type Backend struct {
	path      string
	chunkSize int
}

// New creates a replay backend for path.
func New(path string, chunkSize int) *Backend {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Backend{path: path, chunkSize: chunkSize}
}

func (b *Backend) Name() string {
	return "replay"
}

// Stream reads the file and returns it in chunks. The file is read on every
// call so it can be edited while serving.
func (b *Backend) Stream(_ context.Context, _ string) (normalizer.Source, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}
	return normalizer.NewSliceSource(Split(string(data), b.chunkSize), nil), nil
}

// Split cuts s into chunks of at most size bytes without splitting a UTF-8
// sequence. A chunk holding a single rune wider than size is allowed.
func Split(s string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks []string
	for len(s) > 0 {
		n := min(size, len(s))
		for n < len(s) && n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		if n == 0 {
			_, n = utf8.DecodeRuneInString(s)
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}
