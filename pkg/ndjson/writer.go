package ndjson

import (
	"io"
	"iter"

	"github.com/papercomputeco/agentui/pkg/event"
)

type flusher interface {
	Flush() error
}

// Writer writes one event per line. When the destination buffers (it has a
// Flush() error method, like *bufio.Writer) every record is flushed so the
// client sees it as soon as it is produced.
type Writer struct {
	w       io.Writer
	flusher flusher
	count   int
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	f, _ := w.(flusher)
	return &Writer{w: w, flusher: f}
}

// Write frames e and writes it.
func (w *Writer) Write(e event.Event) error {
	line := make([]byte, 0, len(e.Bytes())+1)
	line = append(line, e.Bytes()...)
	line = append(line, '\n')

	if _, err := w.w.Write(line); err != nil {
		return err
	}
	w.count++

	if w.flusher != nil {
		return w.flusher.Flush()
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Copy writes every event of seq to w. It stops pulling from seq at the
// first write error, which is returned.
func Copy(w *Writer, seq iter.Seq[event.Event]) error {
	for e := range seq {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
