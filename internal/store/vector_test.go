package store

import (
	"testing"
)

func TestUpsertAndSearchPassages(t *testing.T) {
	s := newTestStore(t)

	meta := map[string]string{
		"sutra_name":       "Ashtanga Hridayam 5.13",
		"primary_category": "Dinacharya",
		"safety_level":     "GENERAL",
		"target_dosha":     "Vata_Pacifying",
		"advice_type":      "Dietary",
	}

	if err := s.UpsertPassage("p1", "Sip warm water through the day.", []float32{1, 0, 0}, meta); err != nil {
		t.Fatalf("UpsertPassage failed: %v", err)
	}
	if err := s.UpsertPassage("p2", "Favor light meals at night.", []float32{0, 1, 0}, nil); err != nil {
		t.Fatalf("UpsertPassage failed: %v", err)
	}

	got, err := s.SearchPassages([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("SearchPassages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "p1" {
		t.Errorf("expected p1 ranked first, got %s", got[0].ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("results not ordered by descending similarity: %f <= %f", got[0].Score, got[1].Score)
	}
	if got[0].Metadata["safety_level"] != "GENERAL" {
		t.Errorf("metadata not round-tripped: %v", got[0].Metadata)
	}
}

func TestUpsertPassageReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertPassage("p1", "old text", []float32{1, 0}, nil); err != nil {
		t.Fatalf("UpsertPassage failed: %v", err)
	}
	if err := s.UpsertPassage("p1", "new text", []float32{1, 0}, nil); err != nil {
		t.Fatalf("UpsertPassage failed on replace: %v", err)
	}

	n, err := s.CountPassages()
	if err != nil {
		t.Fatalf("CountPassages failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 passage after replace, got %d", n)
	}

	got, err := s.SearchPassages([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("SearchPassages failed: %v", err)
	}
	if got[0].Content != "new text" {
		t.Errorf("expected replaced content, got %q", got[0].Content)
	}
}

func TestSearchPassagesEmptyIndex(t *testing.T) {
	s := newTestStore(t)

	got, err := s.SearchPassages([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("SearchPassages failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty index should return no results, got %d", len(got))
	}
}

func TestSearchPassagesSkipsMismatchedDimensions(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertPassage("p1", "three dims", []float32{1, 0, 0}, nil); err != nil {
		t.Fatalf("UpsertPassage failed: %v", err)
	}
	if err := s.UpsertPassage("p2", "two dims", []float32{1, 0}, nil); err != nil {
		t.Fatalf("UpsertPassage failed: %v", err)
	}

	got, err := s.SearchPassages([]float32{0.5, 0.5, 0}, 5)
	if err != nil {
		t.Fatalf("SearchPassages failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("expected only the dimension-matched passage, got %v", got)
	}
}
