package tools

import (
	"context"
	"strings"
	"testing"

	"vagbhata/internal/retrieval"
)

type fakeSearcher struct {
	items []retrieval.EvidenceItem
	query string
}

func (f *fakeSearcher) Retrieve(ctx context.Context, query string, k int) []retrieval.EvidenceItem {
	f.query = query
	return f.items
}

func (f *fakeSearcher) TopK() int { return 5 }

func generalItem(text string) retrieval.EvidenceItem {
	return retrieval.EvidenceItem{
		Text:  text,
		Score: 0.8,
		Metadata: map[string]string{
			retrieval.MetaSutraName:       "Ashtanga Hridayam 5.13",
			retrieval.MetaPrimaryCategory: "Dinacharya",
			retrieval.MetaSafetyLevel:     "GENERAL",
			retrieval.MetaTargetDosha:     "Vata_Pacifying",
			retrieval.MetaAdviceType:      "Dietary",
		},
	}
}

func criticalItem(text string) retrieval.EvidenceItem {
	item := generalItem(text)
	item.Metadata[retrieval.MetaSafetyLevel] = retrieval.SafetyCritical
	return item
}

func TestFormatEvidenceGuardrailMarker(t *testing.T) {
	out := FormatEvidence([]retrieval.EvidenceItem{generalItem("a"), criticalItem("b")})
	if !strings.HasPrefix(out, CriticalMarker) {
		t.Errorf("evidence with a CRITICAL item must start with the marker, got %q", out[:40])
	}

	out = FormatEvidence([]retrieval.EvidenceItem{generalItem("a"), generalItem("b")})
	if strings.HasPrefix(out, CriticalMarker) {
		t.Error("evidence without CRITICAL items must not carry the marker")
	}
}

func TestFormatEvidenceEmptySentinel(t *testing.T) {
	out := FormatEvidence(nil)
	if out != NoSourceSentinel {
		t.Errorf("empty retrieval must return the sentinel, got %q", out)
	}
}

func TestFormatEvidenceBlocks(t *testing.T) {
	out := FormatEvidence([]retrieval.EvidenceItem{generalItem("Sip warm water.")})

	for _, want := range []string{
		"CONTEXT STARTS HERE",
		"Sutra: Ashtanga Hridayam 5.13",
		"Primary Category: Dinacharya",
		"Safety Level: GENERAL",
		"Target Dosha: Vata_Pacifying",
		"Advice Type: Dietary",
		"Content: Sip warm water.",
		"CONTEXT ENDS HERE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted evidence missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEvidencePreservesRetrievalOrder(t *testing.T) {
	out := FormatEvidence([]retrieval.EvidenceItem{generalItem("first"), generalItem("second")})
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Error("evidence blocks must keep retrieval order")
	}
}

func TestFormatEvidenceMissingMetadata(t *testing.T) {
	out := FormatEvidence([]retrieval.EvidenceItem{{Text: "bare passage"}})
	if !strings.Contains(out, "Sutra: N/A") {
		t.Errorf("missing metadata fields should render as N/A:\n%s", out)
	}
}

func TestSourceToolExecute(t *testing.T) {
	searcher := &fakeSearcher{items: []retrieval.EvidenceItem{generalItem("Sip warm water.")}}
	tool := NewSourceTool(searcher)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "water"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if searcher.query != "water" {
		t.Errorf("query not forwarded, got %q", searcher.query)
	}
	if !strings.Contains(out, "Sip warm water.") {
		t.Errorf("result missing passage text:\n%s", out)
	}
}

func TestSourceToolMissingQuery(t *testing.T) {
	tool := NewSourceTool(&fakeSearcher{})

	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != NoSourceSentinel {
		t.Errorf("missing query should return sentinel, got %q", out)
	}
}
