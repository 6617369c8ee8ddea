package normalizer

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/agentui/pkg/event"
)

// Tier identifies which rule of the line resolver produced a Resolution.
type Tier int

const (
	// TierDirect means the whole line was already a protocol event.
	TierDirect Tier = iota + 1

	// TierRecovered means an event object was cut out of surrounding text.
	TierRecovered

	// TierFallback means the line was wrapped verbatim as a message.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierRecovered:
		return "recovered"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one line.
type Resolution struct {
	Tier   Tier
	Events []event.Event

	// Reason says why the line was not a direct event. Empty for TierDirect.
	Reason string
}

// MaxRecoverLen bounds the lines searched for embedded events. Longer lines
// are still passed through when they are a single event, otherwise they are
// wrapped as one message.
const MaxRecoverLen = 64 << 10

// ResolveLine converts one trimmed, non-empty line into events. It never
// fails: text that holds no recognizable event becomes a message.
func ResolveLine(line string) Resolution {
	kind, reason := classify(line)
	if reason == "" {
		return Resolution{
			Tier:   TierDirect,
			Events: []event.Event{event.FromRaw(kind, []byte(line))},
		}
	}

	if len(line) > MaxRecoverLen {
		reason += ", line too long to search for embedded events"
	} else if events, ok := extract(line); ok {
		return Resolution{Tier: TierRecovered, Events: events, Reason: reason}
	}

	return Resolution{
		Tier:   TierFallback,
		Events: []event.Event{event.NewMessage(line)},
		Reason: reason,
	}
}

// classify reports the event type of s when s is exactly one JSON object
// with a single recognized "type". Otherwise reason describes the mismatch.
func classify(s string) (event.Type, string) {
	if !strings.HasPrefix(s, "{") {
		return "", "not a JSON object"
	}
	if !utf8.ValidString(s) {
		return "", "invalid UTF-8"
	}
	if !gjson.Valid(s) {
		return "", "invalid JSON"
	}

	var (
		t     gjson.Result
		count int
	)
	gjson.Parse(s).ForEach(func(key, value gjson.Result) bool {
		if key.String() == "type" {
			t = value
			count++
		}
		return true
	})

	switch {
	case count > 1:
		return "", "duplicate type field"
	case count == 0 || t.Type != gjson.String:
		return "", "missing string type field"
	}

	kind, ok := event.ParseType(t.Str)
	if !ok {
		return "", "unrecognized type " + t.Str
	}
	return kind, ""
}

// extract cuts every protocol event out of line, left to right. The text
// between events, when not blank, becomes a message. ok is false when the
// line holds no event.
func extract(line string) ([]event.Event, bool) {
	braces := newBraceIndex(line)

	var events []event.Event
	prose := 0

	for from := 0; from < len(line); {
		idx := strings.IndexByte(line[from:], '{')
		if idx < 0 {
			break
		}
		start := from + idx

		end, balanced := braces.match(start)
		if !balanced {
			from = start + 1
			continue
		}

		span := line[start:end]
		kind, reason := classify(span)
		if reason != "" {
			if gjson.Valid(span) {
				// A complete JSON value that is not an event stays prose.
				from = end
			} else {
				from = start + 1
			}
			continue
		}

		if pre := strings.TrimSpace(line[prose:start]); pre != "" {
			events = append(events, event.NewMessage(pre))
		}
		events = append(events, event.FromRaw(kind, []byte(span)))
		prose, from = end, end
	}

	if len(events) == 0 {
		return nil, false
	}
	if post := strings.TrimSpace(line[prose:]); post != "" {
		events = append(events, event.NewMessage(post))
	}
	return events, true
}
