// Package registry holds the set of named tools a server exposes. The
// registry is built once at startup, frozen, and then shared read-only by
// every transport binding.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes a tool call. The returned value is the response content;
// a non-nil error means the tool ran but failed, which the dispatch layer
// converts into a failed result, never into a protocol error.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// ToolDefinition describes one invokable tool.
type ToolDefinition struct {
	Name        string
	Description string
	ParamSchema map[string]any // JSON Schema for params; nil skips validation
	Handler     Handler
	Enabled     bool
}

// Tool is a registered tool with its compiled parameter schema.
type Tool struct {
	def    ToolDefinition
	schema *jsonschema.Schema
}

// Name returns the tool's unique name.
func (t *Tool) Name() string { return t.def.Name }

// Enabled reports whether the tool accepts calls.
func (t *Tool) Enabled() bool { return t.def.Enabled }

// Invoke validates params against the tool's schema and runs the handler.
func (t *Tool) Invoke(ctx context.Context, params map[string]any) (any, error) {
	if t.schema != nil {
		if err := t.schema.Validate(normalizeParams(params)); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	return t.def.Handler(ctx, params)
}

// Registry maps tool names to tools. Mutable only until Freeze.
type Registry struct {
	mu     sync.Mutex
	frozen bool
	tools  map[string]*Tool
	order  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tools: map[string]*Tool{}}
}

// Register adds a tool. Duplicate names and registration after Freeze are
// rejected rather than silently overwriting.
func (r *Registry) Register(def ToolDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registry is frozen; cannot register %q", def.Name)
	}
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has no handler", def.Name)
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("duplicate tool name %q", def.Name)
	}

	t := &Tool{def: def}
	if def.ParamSchema != nil {
		sch, err := compileSchema(def.Name, def.ParamSchema)
		if err != nil {
			return fmt.Errorf("tool %q: %w", def.Name, err)
		}
		t.schema = sch
	}

	r.tools[def.Name] = t
	r.order = append(r.order, def.Name)
	return nil
}

// Freeze makes the registry read-only. Called once after startup wiring.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get returns the named tool. Disabled tools are not returned, so callers
// see them the same way as unregistered ones.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[name]
	if !ok || !t.def.Enabled {
		return nil, false
	}
	return t, true
}

// Names returns all registered tool names in registration order, including
// disabled ones.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// SetEnabled flips a tool's enabled flag. The only mutation allowed after
// Freeze.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	t.def.Enabled = enabled
	return nil
}

// compileSchema compiles a JSON Schema given as a generic map. The schema is
// marshaled through JSON first so Go-typed literals (ints, nested maps)
// normalize to the shapes the compiler expects.
func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("invalid param schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid param schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	url := name + ".schema.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema compile: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile: %w", err)
	}
	return sch, nil
}

// normalizeParams round-trips params through JSON so values decoded from
// different transports validate identically.
func normalizeParams(params map[string]any) any {
	if params == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return params
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return params
	}
	return doc
}
