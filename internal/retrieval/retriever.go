// Package retrieval wraps the vector index behind a query-string interface.
// Retrieval failure never crashes a conversation turn: any provider or index
// error degrades to "no evidence found" and the model decides how to respond.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"vagbhata/internal/embedding"
	"vagbhata/internal/store"
)

// DefaultTopK is the passage count fetched per interactive query.
const DefaultTopK = 5

// Metadata keys present on every ingested passage.
const (
	MetaSutraName       = "sutra_name"
	MetaPrimaryCategory = "primary_category"
	MetaSafetyLevel     = "safety_level"
	MetaTargetDosha     = "target_dosha"
	MetaAdviceType      = "advice_type"
)

// SafetyCritical is the safety_level value that raises the guardrail signal.
const SafetyCritical = "CRITICAL"

// EvidenceItem is one retrieved passage with its similarity score and
// metadata. Ephemeral: it lives only within one tool invocation.
type EvidenceItem struct {
	Text     string
	Score    float64
	Metadata map[string]string
}

// Critical reports whether this item is flagged as safety-critical.
func (e EvidenceItem) Critical() bool {
	return e.Metadata[MetaSafetyLevel] == SafetyCritical
}

// Index is the slice of the store the retriever needs.
type Index interface {
	SearchPassages(queryVec []float32, k int) ([]store.Passage, error)
}

// Retriever embeds a query and searches the vector index.
type Retriever struct {
	index  Index
	engine embedding.Engine
	topK   int
	log    *zap.Logger
}

// NewRetriever creates a retriever over the given index and embedding engine.
// k <= 0 falls back to DefaultTopK.
func NewRetriever(index Index, engine embedding.Engine, k int, logger *zap.Logger) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{index: index, engine: engine, topK: k, log: logger.Named("retrieval")}
}

// TopK returns the configured result count.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns the top k most similar passages for the query, ordered by
// descending similarity. No matches is an empty slice, never an error; any
// failure is logged and likewise degrades to an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []EvidenceItem {
	if k <= 0 {
		k = r.topK
	}

	queryVec, err := r.engine.Embed(ctx, query)
	if err != nil {
		r.log.Error("query embedding failed, degrading to no evidence",
			zap.String("query", query), zap.Error(err))
		return nil
	}

	passages, err := r.index.SearchPassages(queryVec, k)
	if err != nil {
		r.log.Error("vector search failed, degrading to no evidence",
			zap.String("query", query), zap.Error(err))
		return nil
	}

	items := make([]EvidenceItem, 0, len(passages))
	for _, p := range passages {
		items = append(items, EvidenceItem{
			Text:     p.Content,
			Score:    p.Score,
			Metadata: p.Metadata,
		})
	}
	return items
}
