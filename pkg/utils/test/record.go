package testutils

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// NewTestRecord creates a simple transcript record for testing.
func NewTestRecord(message string, startedAt time.Time) *transcript.Record {
	return &transcript.Record{
		ID:      uuid.NewString(),
		Message: message,
		Backend: "test-backend",
		Events: []event.Event{
			event.NewMessage("Sure!"),
			event.FromRaw(event.TypeUpdateUI, []byte(`{"type":"update_ui","component":"card","props":{"title":"A"}}`)),
		},
		Tiers:       transcript.TierCounts{Direct: 1, Recovered: 1},
		StartedAt:   startedAt.UTC(),
		CompletedAt: startedAt.Add(1500 * time.Millisecond).UTC(),
	}
}
