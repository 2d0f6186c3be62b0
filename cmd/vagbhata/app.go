package main

import (
	"fmt"

	"go.uber.org/zap"

	"vagbhata/internal/chatbot"
	"vagbhata/internal/config"
	"vagbhata/internal/embedding"
	"vagbhata/internal/llm"
	"vagbhata/internal/prompt"
	"vagbhata/internal/retrieval"
	"vagbhata/internal/store"
	"vagbhata/internal/tools"
)

// app wires the full pipeline: config -> store -> embeddings -> retrieval ->
// tool registry -> model client -> dialogue controller.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *store.LocalStore
	engine *embedding.GenAIEngine
	bot    *chatbot.Bot
}

// newApp loads configuration and constructs the pipeline. taskType selects
// the embedding optimization: RETRIEVAL_QUERY for chat, RETRIEVAL_DOCUMENT
// for ingest.
func newApp(taskType string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Memory.DatabasePath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.NewLocalStore(cfg.Memory.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	engine, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.Embedding.Model, taskType)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create embedding engine: %w", err)
	}

	retriever := retrieval.NewRetriever(st, engine, cfg.Retrieval.TopK, logger)

	registry := tools.NewRegistry()
	registry.MustRegister(tools.NewSourceTool(retriever))
	logger.Debug("tool registry ready", zap.Int("tools", registry.Count()))

	timeout, err := cfg.LLMTimeout()
	if err != nil {
		engine.Close()
		st.Close()
		return nil, err
	}
	client := llm.NewGeminiClient(llm.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Timeout:         timeout,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}, logger)

	bot := chatbot.New(client, st, registry, prompt.System, logger)

	return &app{
		cfg:    cfg,
		log:    logger,
		store:  st,
		engine: engine,
		bot:    bot,
	}, nil
}

func (a *app) Close() {
	if a.engine != nil {
		_ = a.engine.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}
