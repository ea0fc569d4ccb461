package tool

import (
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Registry holds the tool set, populated once at startup and immutable
// thereafter. Lookup order for intent matching follows registration
// order, which keeps routing deterministic.
type Registry struct {
	tools   map[string]Tool
	ordered []Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are
// a configuration error.
func NewRegistry(tools []Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		ordered: make([]Tool, 0, len(tools)),
	}
	for _, t := range tools {
		name := t.Definition().Name
		if name == "" {
			return nil, goerr.New("tool name must not be empty")
		}
		if _, exists := r.tools[name]; exists {
			return nil, goerr.New("duplicate tool name", goerr.V("name", name))
		}
		r.tools[name] = t
		r.ordered = append(r.ordered, t)
	}
	return r, nil
}

// Get returns the tool registered under name
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// FindByIntent returns the tools mapped to the given intent category, in
// registration order
func (r *Registry) FindByIntent(category types.IntentCategory) []Tool {
	var matched []Tool
	for _, t := range r.ordered {
		if t.Definition().HandlesIntent(category) {
			matched = append(matched, t)
		}
	}
	return matched
}

// All returns every registered tool in registration order
func (r *Registry) All() []Tool {
	return r.ordered
}

// Definitions returns every registered tool definition in registration
// order, used for prompt building
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.ordered))
	for _, t := range r.ordered {
		defs = append(defs, t.Definition())
	}
	return defs
}
