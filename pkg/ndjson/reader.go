package ndjson

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/papercomputeco/agentui/pkg/event"
)

// MaxLineSize is the longest line TeeReader parses. Longer lines are still
// copied to the destination and reported as an InvalidLineError.
const MaxLineSize = 1024 * 1024

// ErrLineTooLong is wrapped by the InvalidLineError of an oversized line.
var ErrLineTooLong = errors.New("line exceeds maximum size")

// TeeReader reads events from a source io.Reader while writing every raw
// byte verbatim to a destination io.Writer. The caller inspects parsed
// events while the destination keeps an exact copy of the stream.
type TeeReader struct {
	src  *bufio.Reader
	dest io.Writer
	line int
}

// NewTeeReader returns a TeeReader parsing src. A nil dest discards the copy.
func NewTeeReader(src io.Reader, dest io.Writer) *TeeReader {
	if dest == nil {
		dest = io.Discard
	}

	return &TeeReader{
		src:  bufio.NewReaderSize(src, 64*1024),
		dest: dest,
	}
}

// Next returns the next event. It blocks until a complete line is available
// and returns nil, nil when the source is exhausted. A line that is not a
// protocol event, or is longer than MaxLineSize, is reported as an
// InvalidLineError; reading may continue after it.
func (r *TeeReader) Next() (*event.Event, error) {
	for {
		raw, tooLong, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		r.line++

		if tooLong {
			return nil, &InvalidLineError{Line: r.line, Err: ErrLineTooLong}
		}

		text := strings.TrimSpace(string(raw))
		if text == "" {
			continue
		}

		var e event.Event
		if err := e.UnmarshalJSON([]byte(text)); err != nil {
			return nil, &InvalidLineError{Line: r.line, Err: err}
		}
		return &e, nil
	}
}

// readLine returns the next line including its '\n'. Bytes past MaxLineSize
// are copied but not kept, and tooLong is set. io.EOF is returned only when
// nothing was left to read.
func (r *TeeReader) readLine() (line []byte, tooLong bool, err error) {
	read := false

	for {
		chunk, err := r.src.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
			if _, werr := r.dest.Write(chunk); werr != nil {
				return nil, false, werr
			}
			if !tooLong {
				line = append(line, chunk...)
				if len(line) > MaxLineSize {
					line, tooLong = nil, true
				}
			}
		}

		switch {
		case err == nil:
			return line, tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read:
			return line, tooLong, nil
		default:
			return nil, false, err
		}
	}
}
