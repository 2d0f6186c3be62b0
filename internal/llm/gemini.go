// Package llm implements the model boundary over the Gemini REST API.
// One request carries the system instructions, the full ordered thread
// history (including prior tool calls and results), and the available tool
// declarations; the response is either final text or tool-call requests.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vagbhata/internal/types"
)

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash-lite",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// GeminiClient implements types.LLMClient for the Google Gemini API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	log             *zap.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg Config, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 8192
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &GeminiClient{
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		httpClient:      &http.Client{Timeout: timeout},
		log:             logger.Named("llm"),
	}
}

// Model returns the configured model.
func (c *GeminiClient) Model() string {
	return c.model
}

// Chat sends the system prompt, history, and tool declarations, and returns
// the model's decision for this round.
func (c *GeminiClient) Chat(ctx context.Context, systemPrompt string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("history must not be empty")
	}

	startTime := time.Now()
	c.log.Debug("sending chat request",
		zap.String("model", c.model),
		zap.Int("history", len(history)),
		zap.Int("tools", len(tools)))

	reqBody := geminiRequest{
		Contents: encodeHistory(history),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}

	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}

	if len(tools) > 0 {
		decls := make([]geminiFunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = geminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			}
		}
		reqBody.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("chat request failed", zap.Duration("elapsed", time.Since(startTime)), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("chat request rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	result := &types.LLMToolResponse{StopReason: apiResp.Candidates[0].FinishReason}
	var textBuilder strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		if part.Text != "" {
			textBuilder.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			result.ToolCalls = append(result.ToolCalls, types.ToolCall{
				ID:   fmt.Sprintf("call_%d", len(result.ToolCalls)),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	result.Text = strings.TrimSpace(textBuilder.String())

	c.log.Debug("chat round completed",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("text_len", len(result.Text)),
		zap.Int("tool_calls", len(result.ToolCalls)),
		zap.String("stop_reason", result.StopReason))

	return result, nil
}

// encodeHistory converts the thread's message log into Gemini contents.
// Consecutive tool results collapse into a single function-role content, and
// each result is matched to its function name via the pending calls of the
// assistant message that requested it.
func encodeHistory(history []types.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(history))
	callNames := make(map[string]string)

	for _, m := range history {
		switch m.Role {
		case types.RoleUser:
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})

		case types.RoleAssistant:
			var parts []geminiPart
			if m.Content != "" {
				parts = append(parts, geminiPart{Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				callNames[call.ID] = call.Name
				parts = append(parts, geminiPart{
					FunctionCall: &geminiFunctionCall{Name: call.Name, Args: call.Args},
				})
			}
			if len(parts) == 0 {
				parts = []geminiPart{{Text: ""}}
			}
			contents = append(contents, geminiContent{Role: "model", Parts: parts})

		case types.RoleTool:
			name := callNames[m.ToolCallID]
			part := geminiPart{
				FunctionResponse: &geminiFunctionResponse{
					Name:     name,
					Response: map[string]any{"content": m.Content},
				},
			}
			if n := len(contents); n > 0 && contents[n-1].Role == "function" {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
			} else {
				contents = append(contents, geminiContent{Role: "function", Parts: []geminiPart{part}})
			}
		}
	}

	return contents
}
