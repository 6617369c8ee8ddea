// Package eventstream defines the events published after a transcript is
// recorded and the publishers that deliver them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTranscriptRecorded is emitted after a transcript is persisted.
	EventTypeTranscriptRecorded = "agentui.transcript.recorded"
)

// TranscriptRecordedEvent is a transport-neutral event payload for a
// persisted transcript. It carries a summary, not the events themselves.
type TranscriptRecordedEvent struct {
	SchemaVersion int               `json:"schema_version"`
	EventType     string            `json:"event_type"`
	EventID       string            `json:"event_id"`
	EmittedAt     time.Time         `json:"emitted_at"`
	Source        EventSource       `json:"source"`
	Transcript    TranscriptSummary `json:"transcript"`
}

// EventSource identifies where the transcript originated.
type EventSource struct {
	Service string `json:"service"`
	Backend string `json:"backend"`
}

// TranscriptSummary describes one recorded stream.
type TranscriptSummary struct {
	ID          string                `json:"id"`
	Message     string                `json:"message"`
	Messages    int                   `json:"messages"`
	UpdateUIs   int                   `json:"update_uis"`
	Components  []string              `json:"components,omitempty"`
	Tiers       transcript.TierCounts `json:"tiers"`
	Error       string                `json:"error,omitempty"`
	Cancelled   bool                  `json:"cancelled"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt time.Time             `json:"completed_at"`
	DurationMs  int64                 `json:"duration_ms"`
}

// NewTranscriptRecordedEvent summarizes rec as an event emitted at now.
func NewTranscriptRecordedEvent(rec *transcript.Record, now time.Time) *TranscriptRecordedEvent {
	summary := TranscriptSummary{
		ID:          rec.ID,
		Message:     rec.Message,
		Tiers:       rec.Tiers,
		Error:       rec.Error,
		Cancelled:   rec.Cancelled,
		StartedAt:   rec.StartedAt,
		CompletedAt: rec.CompletedAt,
		DurationMs:  rec.Duration().Milliseconds(),
	}

	for _, e := range rec.Events {
		switch e.Type() {
		case event.TypeMessage:
			summary.Messages++
		case event.TypeUpdateUI:
			summary.UpdateUIs++
			if c := gjson.GetBytes(e.Bytes(), "component"); c.Type == gjson.String {
				summary.Components = append(summary.Components, c.Str)
			}
		}
	}

	return &TranscriptRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTranscriptRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source: EventSource{
			Service: "agentui",
			Backend: rec.Backend,
		},
		Transcript: summary,
	}
}
