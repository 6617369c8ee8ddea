// Package prompt assembles the text sent to the text-generation backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/agentui/pkg/event"
)

const preamble = `You are an AI assistant capable of generating dynamic UI components.
You communicate using the AG-UI protocol.
Your response MUST be a stream of JSON objects, separated by newlines.
Each JSON object represents an event.

Supported Events:
1. Message: { "type": "message", "role": "assistant", "content": "text content" }
2. Update UI: { "type": "update_ui", "component": "component_name", "props": { ... } }
`

const rules = `Rules:
- If the user asks for data that fits a table, send a 'message' introducing it, then an 'update_ui' with component='table'.
- If the user needs to input data, send a 'message' then 'update_ui' with component='form'.
- If the user asks for a profile or summary, send 'update_ui' with component='card'.
- Use the other components only when the user asks for what they show.
- Otherwise, just send 'message' events.
- ALWAYS output valid JSON on each line. Do not wrap in markdown code blocks.
`

// Builder renders prompts from the current component registry.
type Builder struct {
	registry *event.Registry
}

// NewBuilder returns a Builder over registry. A nil registry uses the
// default components.
func NewBuilder(registry *event.Registry) *Builder {
	if registry == nil {
		registry = event.NewRegistry()
	}
	return &Builder{registry: registry}
}

// System renders the system prompt.
func (b *Builder) System() string {
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\nSupported Components:\n")
	for _, c := range b.registry.Components() {
		fmt.Fprintf(&sb, "- '%s'", c.Name)
		if c.Description != "" {
			fmt.Fprintf(&sb, " (%s)", c.Description)
		}
		if c.Props != "" {
			fmt.Fprintf(&sb, ": props %s", c.Props)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(rules)
	return sb.String()
}

// Build renders the full prompt for one user message.
func (b *Builder) Build(message string) string {
	return b.System() + "\n\nUser: " + message + "\nAssistant:"
}
