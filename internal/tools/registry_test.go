package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vagbhata/internal/types"
)

func testTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "A test tool",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "success", nil
		},
		Schema: Schema{Required: []string{}},
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(testTool("test_tool")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("test_tool")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "test_tool" {
		t.Errorf("got name %q, want %q", got.Name, "test_tool")
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(testTool("dupe")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := reg.Register(testTool("dupe"))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Errorf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&Tool{Name: ""}); err == nil {
		t.Error("expected error for tool without a name")
	}
	if err := reg.Register(&Tool{Name: "no_exec"}); err == nil {
		t.Error("expected error for tool without an execute function")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry()

	out := reg.Execute(context.Background(), types.ToolCall{ID: "call_0", Name: "missing"})
	if !strings.Contains(out, ErrToolNotFound.Error()) {
		t.Errorf("expected tool-not-found error string, got %q", out)
	}
}

func TestExecuteToolError(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name: "boom",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("exploded")
		},
	})

	out := reg.Execute(context.Background(), types.ToolCall{ID: "call_0", Name: "boom"})
	if !strings.Contains(out, "exploded") {
		t.Errorf("tool errors should be reported in the result string, got %q", out)
	}
}

func TestDeclarations(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:        "zz_tool",
		Description: "last",
		Execute:     func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	})
	reg.MustRegister(&Tool{
		Name:        "aa_tool",
		Description: "first",
		Schema: Schema{
			Required:   []string{"query"},
			Properties: map[string]Property{"query": {Type: "string", Description: "q"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	})

	defs := reg.Declarations()
	if len(defs) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(defs))
	}
	if defs[0].Name != "aa_tool" || defs[1].Name != "zz_tool" {
		t.Errorf("declarations not sorted by name: %v", defs)
	}

	schema := defs[0].InputSchema
	if schema["type"] != "object" {
		t.Errorf("expected object schema, got %v", schema["type"])
	}
}
