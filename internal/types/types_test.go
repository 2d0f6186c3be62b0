package types

import "testing"

func TestHasToolCalls(t *testing.T) {
	var nilResp *LLMToolResponse
	if nilResp.HasToolCalls() {
		t.Error("nil response should not report tool calls")
	}

	resp := &LLMToolResponse{Text: "done"}
	if resp.HasToolCalls() {
		t.Error("response without tool calls should route to final answer")
	}

	resp.ToolCalls = []ToolCall{{ID: "call_0", Name: "ayurvedic_source"}}
	if !resp.HasToolCalls() {
		t.Error("response with tool calls should route to tool invocation")
	}
}

func TestMessageValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"user", UserMessage("hello"), false},
		{"assistant final", AssistantMessage("answer"), false},
		{"assistant with calls", AssistantToolCallMessage("", []ToolCall{{ID: "call_0", Name: "ayurvedic_source"}}), false},
		{"tool result", ToolResultMessage("call_0", "context"), false},
		{"tool result without id", Message{Role: RoleTool, Content: "context"}, true},
		{"user with call id", Message{Role: RoleUser, Content: "hi", ToolCallID: "call_0"}, true},
		{"unknown role", Message{Role: "system", Content: "x"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
