// Package transcript records what the server streamed back for one request.
package transcript

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/normalizer"
)

// ErrNilRecord is returned when a nil record is stored or published.
var ErrNilRecord = errors.New("transcript record is nil")

// TierCounts counts resolved lines by resolver tier.
type TierCounts struct {
	Direct    int `json:"direct"`
	Recovered int `json:"recovered"`
	Fallback  int `json:"fallback"`
}

// Total returns the number of resolved lines.
func (t TierCounts) Total() int {
	return t.Direct + t.Recovered + t.Fallback
}

// Record is the persisted account of one /agent request.
type Record struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	Backend     string        `json:"backend"`
	Events      []event.Event `json:"events"`
	Tiers       TierCounts    `json:"tiers"`
	Error       string        `json:"error,omitempty"`
	Cancelled   bool          `json:"cancelled"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Duration is the time between start and completion.
func (r *Record) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Outcome values reported by Record.Outcome.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Outcome summarizes how the stream ended. Cancellation wins over an
// upstream error.
func (r *Record) Outcome() string {
	switch {
	case r.Cancelled:
		return OutcomeCancelled
	case r.Error != "":
		return OutcomeError
	default:
		return OutcomeOK
	}
}

// Recorder builds a Record while a stream is normalized. It is a
// normalizer.Observer and, like every observer, is only called from the
// goroutine consuming the stream.
type Recorder struct {
	record Record
	now    func() time.Time
}

var _ normalizer.Observer = (*Recorder)(nil)

// NewRecorder starts a record for message answered by backend.
func NewRecorder(message, backend string) *Recorder {
	r := &Recorder{now: time.Now}
	r.record = Record{
		ID:        uuid.NewString(),
		Message:   message,
		Backend:   backend,
		StartedAt: r.now().UTC(),
	}
	return r
}

// ID returns the id of the record being built.
func (r *Recorder) ID() string {
	return r.record.ID
}

func (r *Recorder) LineResolved(res normalizer.Resolution) {
	switch res.Tier {
	case normalizer.TierDirect:
		r.record.Tiers.Direct++
	case normalizer.TierRecovered:
		r.record.Tiers.Recovered++
	case normalizer.TierFallback:
		r.record.Tiers.Fallback++
	}
}

func (r *Recorder) Emitted(e event.Event) {
	r.record.Events = append(r.record.Events, e)
}

func (r *Recorder) UpstreamFailed(err error) {
	r.record.Error = err.Error()
}

// Finish stamps the completion time and returns the record. cancelled marks
// a stream that ended because the client went away.
func (r *Recorder) Finish(cancelled bool) *Record {
	rec := r.record
	rec.Cancelled = cancelled
	rec.CompletedAt = r.now().UTC()
	return &rec
}
