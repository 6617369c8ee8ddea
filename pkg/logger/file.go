package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// OpenFile appends JSON records to the file at path, creating it when
// missing. opts may adjust the level; the output format is always JSON.
// The returned closer releases the file.
func OpenFile(path string, opts ...Option) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	opts = append(opts, WithJSON(true), WithPretty(false), WithWriter(f))
	return New(opts...), f, nil
}
