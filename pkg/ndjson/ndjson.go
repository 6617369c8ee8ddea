// Package ndjson frames protocol events as newline-delimited JSON and reads
// them back.
//
// Each record is the compact JSON of one event.Event followed by a single
// '\n'. Blank lines are tolerated on read.
package ndjson

import "fmt"

// ContentType is the media type of an NDJSON event stream.
const ContentType = "application/x-ndjson"

// InvalidLineError reports a line that is not a protocol event. The stream
// itself is still readable.
type InvalidLineError struct {
	Line int
	Err  error
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *InvalidLineError) Unwrap() error {
	return e.Err
}
