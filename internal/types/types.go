// Package types provides shared type definitions used across vagbhata packages.
// This package exists to break import cycles between the controller, the LLM
// client, and the store. Types here are foundational data structures with no
// complex dependencies.
package types

import (
	"context"
	"fmt"
)

// Role identifies who produced a message in a conversation thread.
type Role string

const (
	// RoleUser marks a message typed by the end user.
	RoleUser Role = "user"

	// RoleAssistant marks a message produced by the model. An assistant
	// message either carries final text or requests one or more tool calls.
	RoleAssistant Role = "assistant"

	// RoleTool marks the result of executing a tool call, linked back to
	// its invocation by ToolCallID.
	RoleTool Role = "tool"
)

// Message is a single conversational event in a thread. Messages are
// immutable once appended; ordering within a thread is strictly by Seq.
type Message struct {
	// Seq is the zero-based position of the message within its thread.
	// Assigned by the controller before the message is persisted.
	Seq int `json:"seq"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls holds pending invocations requested by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result message back to its invocation.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolDefinition describes a tool that the LLM can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// LLMToolResponse contains both the text response and any tool calls the
// model requested for one decision round.
type LLMToolResponse struct {
	Text       string     `json:"text"`
	ToolCalls  []ToolCall `json:"tool_calls"`
	StopReason string     `json:"stop_reason"`
}

// HasToolCalls reports whether the model requested tool execution instead of
// (or before) a final answer. This is the tool-or-answer branching predicate.
func (r *LLMToolResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// LLMClient defines the interface for the model boundary. Chat sends the
// system instructions, the full ordered thread history, and the available
// tool declarations, and returns either final text or tool-call requests.
type LLMClient interface {
	Chat(ctx context.Context, systemPrompt string, history []Message, tools []ToolDefinition) (*LLMToolResponse, error)
}

// UserMessage builds a user message without a sequence number assigned.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant message carrying final text.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AssistantToolCallMessage builds an assistant message requesting tool calls.
func AssistantToolCallMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolResultMessage builds a tool-result message for the given invocation id.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Validate checks structural invariants before a message is persisted.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser:
		if len(m.ToolCalls) > 0 || m.ToolCallID != "" {
			return fmt.Errorf("user message must not carry tool call fields")
		}
	case RoleAssistant:
		if m.ToolCallID != "" {
			return fmt.Errorf("assistant message must not carry a tool_call_id")
		}
	case RoleTool:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool result message requires a tool_call_id")
		}
	default:
		return fmt.Errorf("unknown role %q", m.Role)
	}
	return nil
}
