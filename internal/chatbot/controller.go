// Package chatbot implements the dialogue controller: the orchestration loop
// that takes a user message, lets the model decide between answering and
// consulting the evidence tool, executes tool calls, and persists every step
// of the turn keyed by thread id.
package chatbot

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vagbhata/internal/tools"
	"vagbhata/internal/types"
)

// DefaultMaxToolRounds bounds the model-deciding/tool-invocation cycle so a
// turn always terminates even if the model keeps requesting tools.
const DefaultMaxToolRounds = 5

// FallbackAnswer is returned (and persisted) when the tool round cap is hit.
const FallbackAnswer = "I could not determine an answer after repeatedly consulting the sources. Please try rephrasing your question."

// Store is the persistence slice the controller needs. The store is the
// single source of truth for thread content; the controller reloads the
// history from it at the start of every turn.
type Store interface {
	AppendMessages(threadID string, msgs []types.Message) error
	GetThread(threadID string) ([]types.Message, error)
	ListThreads() ([]string, error)
}

// Bot runs conversation turns. Turns on the same thread are serialized by a
// per-thread lock; turns on distinct threads may run concurrently.
type Bot struct {
	llm           types.LLMClient
	store         Store
	registry      *tools.Registry
	systemPrompt  string
	maxToolRounds int
	log           *zap.Logger

	mu          sync.Mutex
	threadLocks map[string]*sync.Mutex
}

// Option configures a Bot.
type Option func(*Bot)

// WithMaxToolRounds overrides the tool round cap.
func WithMaxToolRounds(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.maxToolRounds = n
		}
	}
}

// New creates a dialogue controller.
func New(client types.LLMClient, st Store, registry *tools.Registry, systemPrompt string, logger *zap.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		llm:           client,
		store:         st,
		registry:      registry,
		systemPrompt:  systemPrompt,
		maxToolRounds: DefaultMaxToolRounds,
		log:           logger.Named("chatbot"),
		threadLocks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SendMessage runs one full turn: append the user message, loop through model
// decisions and tool invocations, and return the final answer. Every message
// produced during the turn is durably appended before control returns. On
// failure the error is surfaced to the caller and everything committed up to
// that point stays intact; in particular, the user's input is persisted first
// so a partial turn never omits it.
func (b *Bot) SendMessage(ctx context.Context, threadID, text string) (string, error) {
	if threadID == "" {
		return "", fmt.Errorf("thread id must not be empty")
	}
	if text == "" {
		return "", fmt.Errorf("message must not be empty")
	}

	lock := b.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	history, err := b.store.GetThread(threadID)
	if err != nil {
		return "", fmt.Errorf("failed to load thread: %w", err)
	}

	user := types.UserMessage(text)
	user.Seq = len(history)
	if err := b.store.AppendMessages(threadID, []types.Message{user}); err != nil {
		return "", fmt.Errorf("failed to persist user message: %w", err)
	}
	history = append(history, user)

	declarations := b.registry.Declarations()

	for round := 0; round < b.maxToolRounds; round++ {
		resp, err := b.llm.Chat(ctx, b.systemPrompt, history, declarations)
		if err != nil {
			return "", fmt.Errorf("model invocation failed: %w", err)
		}

		if !resp.HasToolCalls() {
			final := types.AssistantMessage(resp.Text)
			final.Seq = len(history)
			if err := b.store.AppendMessages(threadID, []types.Message{final}); err != nil {
				return "", fmt.Errorf("failed to persist final answer: %w", err)
			}
			answer := Normalize(resp.Text)
			b.log.Info("turn completed",
				zap.String("thread_id", threadID),
				zap.Int("rounds", round+1),
				zap.Int("messages", len(history)+1))
			return answer, nil
		}

		// Remap response-local call ids to ids unique within the thread, so
		// tool results stay unambiguously linked after replay.
		calls := make([]types.ToolCall, len(resp.ToolCalls))
		for i, call := range resp.ToolCalls {
			call.ID = fmt.Sprintf("call_%d_%d", len(history), i)
			calls[i] = call
		}

		assistant := types.AssistantToolCallMessage(resp.Text, calls)
		assistant.Seq = len(history)
		if err := b.store.AppendMessages(threadID, []types.Message{assistant}); err != nil {
			return "", fmt.Errorf("failed to persist tool call request: %w", err)
		}
		history = append(history, assistant)

		// Tool calls run synchronously one after another; each result is
		// appended before the next so the replay log stays ordered.
		for _, call := range calls {
			b.log.Debug("invoking tool",
				zap.String("thread_id", threadID),
				zap.String("tool", call.Name),
				zap.String("call_id", call.ID))

			result := types.ToolResultMessage(call.ID, b.registry.Execute(ctx, call))
			result.Seq = len(history)
			if err := b.store.AppendMessages(threadID, []types.Message{result}); err != nil {
				return "", fmt.Errorf("failed to persist tool result: %w", err)
			}
			history = append(history, result)
		}
	}

	// Round cap hit: terminate with the fallback so the turn still ends in a
	// persisted final answer.
	b.log.Warn("tool round cap reached",
		zap.String("thread_id", threadID),
		zap.Int("max_rounds", b.maxToolRounds))

	final := types.AssistantMessage(FallbackAnswer)
	final.Seq = len(history)
	if err := b.store.AppendMessages(threadID, []types.Message{final}); err != nil {
		return "", fmt.Errorf("failed to persist fallback answer: %w", err)
	}
	return FallbackAnswer, nil
}

// History replays a thread from the store.
func (b *Bot) History(threadID string) ([]types.Message, error) {
	return b.store.GetThread(threadID)
}

func (b *Bot) threadLock(threadID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		b.threadLocks[threadID] = lock
	}
	return lock
}
