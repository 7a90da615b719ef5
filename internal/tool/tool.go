package tool

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/harunnryd/tsuyaku/internal/model/contract"
)

// Tool is a locally executable function the model may call.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Registry holds all available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	name := NormalizeToolName(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[NormalizeToolName(name)]
	return t, ok
}

// Names returns registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions renders every tool as a canonical declaration, sorted by name.
func (r *Registry) Definitions() []contract.ToolDef {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
