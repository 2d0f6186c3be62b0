package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"vagbhata/internal/types"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func turnMessages() []types.Message {
	user := types.UserMessage("When should I drink water?")
	user.Seq = 0

	call := types.ToolCall{ID: "call_0", Name: "ayurvedic_source", Args: map[string]any{"query": "drinking water"}}
	assistant := types.AssistantToolCallMessage("", []types.ToolCall{call})
	assistant.Seq = 1

	result := types.ToolResultMessage("call_0", "CONTEXT STARTS HERE\n...")
	result.Seq = 2

	final := types.AssistantMessage("Drink water before meals.")
	final.Seq = 3

	return []types.Message{user, assistant, result, final}
}

func TestAppendIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	msgs := turnMessages()

	if err := s.AppendMessages("alice|t1", msgs); err != nil {
		t.Fatalf("AppendMessages failed: %v", err)
	}
	// Retrying the same committed turn must not duplicate anything.
	if err := s.AppendMessages("alice|t1", msgs); err != nil {
		t.Fatalf("AppendMessages failed on retry: %v", err)
	}

	got, err := s.GetThread("alice|t1")
	if err != nil {
		t.Fatalf("GetThread failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 messages after duplicate append, got %d", len(got))
	}
}

func TestReplayFidelity(t *testing.T) {
	s := newTestStore(t)
	msgs := turnMessages()

	// Messages arrive one at a time during a turn.
	for _, m := range msgs {
		if err := s.AppendMessages("alice|t1", []types.Message{m}); err != nil {
			t.Fatalf("AppendMessages failed at seq %d: %v", m.Seq, err)
		}
	}

	got, err := s.GetThread("alice|t1")
	if err != nil {
		t.Fatalf("GetThread failed: %v", err)
	}

	if diff := cmp.Diff(msgs, got); diff != "" {
		t.Errorf("replayed thread differs from appended messages (-want +got):\n%s", diff)
	}
}

func TestGetThreadUnknownIsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetThread("nobody|missing")
	if err != nil {
		t.Fatalf("GetThread failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown thread should replay empty, got %d messages", len(got))
	}
}

func TestListThreads(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"alice|t1", "bob|t2"} {
		u := types.UserMessage("hello")
		if err := s.AppendMessages(id, []types.Message{u}); err != nil {
			t.Fatalf("AppendMessages failed: %v", err)
		}
	}

	threads, err := s.ListThreads()
	if err != nil {
		t.Fatalf("ListThreads failed: %v", err)
	}
	if len(threads) != 2 {
		t.Errorf("expected 2 threads, got %d", len(threads))
	}
}

func TestAppendRejectsInvalidMessage(t *testing.T) {
	s := newTestStore(t)

	bad := types.Message{Role: types.RoleTool, Content: "orphan result"}
	if err := s.AppendMessages("alice|t1", []types.Message{bad}); err == nil {
		t.Error("expected error for tool result without tool_call_id")
	}

	got, err := s.GetThread("alice|t1")
	if err != nil {
		t.Fatalf("GetThread failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rejected append must not leave partial state, got %d messages", len(got))
	}
}
