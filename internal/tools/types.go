// Package tools provides the callable capabilities exposed to the LLM.
// The assistant has exactly one tool, ayurvedic_source, which fetches
// grounding evidence from the classical text corpus; the registry keeps the
// declaration/dispatch plumbing generic anyway so the LLM boundary stays
// uniform.
package tools

import (
	"context"

	"vagbhata/internal/types"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema defines the JSON schema for tool arguments.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines an invocable capability declared to the LLM.
type Tool struct {
	// Name is the unique identifier the model calls the tool by.
	Name string

	// Description is the natural-language instruction shown to the model.
	Description string

	// Execute runs the tool with the model-supplied arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema Schema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Definition converts the tool to the declaration shape sent across the LLM
// boundary.
func (t *Tool) Definition() types.ToolDefinition {
	props := make(map[string]any, len(t.Schema.Properties))
	for name, p := range t.Schema.Properties {
		props[name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	return types.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   t.Schema.Required,
		},
	}
}
