package tool

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// BuiltinOptions carries runtime dependencies needed by built-in tool factories.
type BuiltinOptions struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o BuiltinOptions) withDefaults() BuiltinOptions {
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type BuiltinFactory func(options BuiltinOptions) (Tool, error)

var builtinCatalog = struct {
	mu        sync.RWMutex
	factories map[string]BuiltinFactory
}{
	factories: map[string]BuiltinFactory{},
}

// RegisterBuiltin registers a built-in tool factory under a tool name.
// Intended to be called in init() from built-in tool files.
func RegisterBuiltin(name string, factory BuiltinFactory) {
	normalized := NormalizeToolName(name)
	if normalized == "" {
		panic("tool: built-in name cannot be empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("tool: built-in factory cannot be nil (%s)", normalized))
	}

	builtinCatalog.mu.Lock()
	defer builtinCatalog.mu.Unlock()

	if _, exists := builtinCatalog.factories[normalized]; exists {
		panic(fmt.Sprintf("tool: built-in already registered: %s", normalized))
	}
	builtinCatalog.factories[normalized] = factory
}

// BuiltinNames returns all registered built-in names in deterministic order.
func BuiltinNames() []string {
	builtinCatalog.mu.RLock()
	defer builtinCatalog.mu.RUnlock()

	names := make([]string, 0, len(builtinCatalog.factories))
	for name := range builtinCatalog.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltinRegistry instantiates every registered built-in into a fresh
// registry. Only the named tools are included when names is non-empty.
func NewBuiltinRegistry(options BuiltinOptions, names ...string) (*Registry, error) {
	options = options.withDefaults()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[NormalizeToolName(n)] = true
	}

	builtinCatalog.mu.RLock()
	factories := make(map[string]BuiltinFactory, len(builtinCatalog.factories))
	for name, factory := range builtinCatalog.factories {
		factories[name] = factory
	}
	builtinCatalog.mu.RUnlock()

	for n := range wanted {
		if _, ok := factories[n]; !ok {
			return nil, fmt.Errorf("unknown built-in tool %q", n)
		}
	}

	registry := NewRegistry()
	for _, name := range BuiltinNames() {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		t, err := factories[name](options)
		if err != nil {
			return nil, fmt.Errorf("instantiate built-in %q: %w", name, err)
		}
		registry.Register(t)
	}
	return registry, nil
}
