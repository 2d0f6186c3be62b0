package tools

import (
	"context"
	"fmt"
	"strings"

	"vagbhata/internal/retrieval"
)

// SourceToolName is the capability name declared to the model.
const SourceToolName = "ayurvedic_source"

// CriticalMarker is prepended to the formatted evidence whenever any
// retrieved passage is flagged safety-critical. The system prompt instructs
// the model to add a disclaimer when it sees this token. This is a soft
// guardrail: there is no programmatic enforcement beyond prompting, and the
// marker survives state restoration because it is part of the persisted
// tool-result content.
const CriticalMarker = "[CRITICAL ADVICE DETECTED] "

// NoSourceSentinel is returned when retrieval yields nothing, so the model
// always receives explicit feedback instead of an empty string.
const NoSourceSentinel = "No relevant ayurvedic source found for the given query."

// Searcher is the retrieval slice the evidence tool needs.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) []retrieval.EvidenceItem
	TopK() int
}

// NewSourceTool builds the ayurvedic_source tool over the given retriever.
// Purely read-only: its only side effect is the retrieval call.
func NewSourceTool(r Searcher) *Tool {
	return &Tool{
		Name:        SourceToolName,
		Description: "Retrieves information from the Ayurvedic classical texts/source based on the user's query. Always use this to verify facts before answering.",
		Schema: Schema{
			Required: []string{"query"},
			Properties: map[string]Property{
				"query": {Type: "string", Description: "The user's question to ground in the classical texts."},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return NoSourceSentinel, nil
			}
			return FormatEvidence(r.Retrieve(ctx, query, r.TopK())), nil
		},
	}
}

// FormatEvidence renders retrieved items into the delimited evidence block
// consumed by the model, in retrieval order. Any safety-critical item raises
// the guardrail marker as a prefix on the whole result.
func FormatEvidence(items []retrieval.EvidenceItem) string {
	if len(items) == 0 {
		return NoSourceSentinel
	}

	signal := ""
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		if item.Critical() {
			signal = CriticalMarker
		}

		var b strings.Builder
		b.WriteString("CONTEXT STARTS HERE\n")
		fmt.Fprintf(&b, "Sutra: %s\n", metaOr(item.Metadata, retrieval.MetaSutraName))
		fmt.Fprintf(&b, "Primary Category: %s\n", metaOr(item.Metadata, retrieval.MetaPrimaryCategory))
		fmt.Fprintf(&b, "Safety Level: %s\n", metaOr(item.Metadata, retrieval.MetaSafetyLevel))
		fmt.Fprintf(&b, "Target Dosha: %s\n", metaOr(item.Metadata, retrieval.MetaTargetDosha))
		fmt.Fprintf(&b, "Advice Type: %s\n", metaOr(item.Metadata, retrieval.MetaAdviceType))
		fmt.Fprintf(&b, "Content: %s\n", item.Text)
		b.WriteString("CONTEXT ENDS HERE\n-----\n")
		blocks = append(blocks, b.String())
	}

	return signal + strings.Join(blocks, "\n")
}

func metaOr(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok && v != "" {
		return v
	}
	return "N/A"
}
