package event

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
)

// ErrEmptyRegistry is returned when a registry file declares no components.
var ErrEmptyRegistry = errors.New("component registry is empty")

// Component describes one UI component the client knows how to render.
// Props is a JSON-shaped sketch of the expected props, shown to the model.
type Component struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Props       string `toml:"props"`
}

// DefaultComponents are the components understood by the reference client.
func DefaultComponents() []Component {
	return []Component{
		{
			Name:        "table",
			Description: "Tabular data",
			Props:       `{"headers": ["Col1", "Col2"], "data": [["Val1", "Val2"]]}`,
		},
		{
			Name:        "form",
			Description: "Input form",
			Props:       `{"title": "Form Title", "fields": [{"name": "field1", "label": "Label", "type": "text"}]}`,
		},
		{
			Name:        "card",
			Description: "Information card with optional image",
			Props:       `{"title": "Card Title", "description": "Card description", "imageUrl": "optional url"}`,
		},
		{
			Name:        "chart",
			Description: "Bar, line or pie chart",
			Props:       `{"title": "Chart Title", "type": "bar", "data": [{"name": "A", "value": 10}], "dataKey": "value", "categoryKey": "name"}`,
		},
		{
			Name:        "stats",
			Description: "Key figures with optional change and trend",
			Props:       `{"items": [{"label": "Revenue", "value": "$10k", "change": "+5%", "trend": "up"}]}`,
		},
		{
			Name:        "steps",
			Description: "Ordered steps with a status of completed, current or pending",
			Props:       `{"items": [{"title": "Step 1", "description": "Details", "status": "completed"}]}`,
		},
	}
}

// Registry is the set of component names advertised to the model.
// It is safe for concurrent use and may be replaced while serving.
type Registry struct {
	mu         sync.RWMutex
	components []Component
}

// NewRegistry creates a registry holding components. With no components the
// defaults are used.
func NewRegistry(components ...Component) *Registry {
	if len(components) == 0 {
		components = DefaultComponents()
	}
	return &Registry{components: slices.Clone(components)}
}

// Components returns a snapshot of the registered components.
func (r *Registry) Components() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.components)
}

// Names returns the registered component names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.components))
	for i, c := range r.components {
		names[i] = c.Name
	}
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.ContainsFunc(r.components, func(c Component) bool {
		return c.Name == name
	})
}

// Replace swaps the registered components.
func (r *Registry) Replace(components []Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = slices.Clone(components)
}

type registryFile struct {
	Components []Component `toml:"component"`
}

// ParseRegistryTOML parses a registry document of [[component]] tables.
func ParseRegistryTOML(data []byte) ([]Component, error) {
	var f registryFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing component registry: %w", err)
	}
	if len(f.Components) == 0 {
		return nil, ErrEmptyRegistry
	}

	seen := make(map[string]struct{}, len(f.Components))
	for i, c := range f.Components {
		if c.Name == "" {
			return nil, fmt.Errorf("component %d has no name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("component %q declared twice", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	return f.Components, nil
}

// LoadRegistryFile reads a registry document from path.
func LoadRegistryFile(path string) ([]Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading component registry: %w", err)
	}
	return ParseRegistryTOML(data)
}
