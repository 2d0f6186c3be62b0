package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vagbhata/internal/types"
)

// Registry holds all available tools and provides lookup and dispatch.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at startup.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Execute dispatches a tool call by name. An unknown tool is reported as an
// error string result rather than a failure, so one bad invocation never
// aborts the surrounding turn.
func (r *Registry) Execute(ctx context.Context, call types.ToolCall) string {
	tool := r.Get(call.Name)
	if tool == nil {
		return fmt.Sprintf("Error: %v: %q", ErrToolNotFound, call.Name)
	}

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return result
}

// Declarations returns the tool declarations for the LLM boundary, sorted by
// name for a stable request shape.
func (r *Registry) Declarations() []types.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]types.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
