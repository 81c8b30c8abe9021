// Package hook defines the named hook catalogue: each hook maps an endpoint
// name to a command template and its execution context. Hooks are loaded
// from configuration at startup and are immutable afterwards, so the
// registry needs no locking for concurrent lookups.
package hook

import "fmt"

// DefaultGroup is the runner group hooks are submitted to unless the
// configuration names another one.
const DefaultGroup = "webhook"

// Hook is a single named command template plus its execution context.
type Hook struct {
	// Name is the unique identifier and the HTTP path segment that
	// triggers this hook.
	Name string `yaml:"name"`
	// Command is the template rendered with caller parameters. Parameter
	// values are substituted verbatim, without shell escaping; the
	// operator's template design bounds what callers can inject.
	Command string `yaml:"command"`
	// Cwd is the working directory the command runs in.
	Cwd string `yaml:"cwd"`
	// Group is the runner group the task is submitted to.
	Group string `yaml:"group"`
}

// Registry resolves hook names to their definitions.
type Registry struct {
	hooks map[string]Hook
}

// NewRegistry builds a registry from configured hooks. Duplicate names are
// rejected; empty groups get DefaultGroup.
func NewRegistry(hooks []Hook) (*Registry, error) {
	m := make(map[string]Hook, len(hooks))
	for _, h := range hooks {
		if h.Name == "" {
			return nil, fmt.Errorf("hook with empty name")
		}
		if _, exists := m[h.Name]; exists {
			return nil, fmt.Errorf("duplicate hook name %q", h.Name)
		}
		if h.Group == "" {
			h.Group = DefaultGroup
		}
		m[h.Name] = h
	}
	return &Registry{hooks: m}, nil
}

// Resolve looks up a hook by exact, case-sensitive name.
func (r *Registry) Resolve(name string) (Hook, bool) {
	h, ok := r.hooks[name]
	return h, ok
}

// Names returns all registered hook names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}
