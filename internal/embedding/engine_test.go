package embedding

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("identical vectors should have similarity 1.0, got %f", sim)
	}

	c := []float32{0, 1, 0}
	sim, err = CosineSimilarity(a, c)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(sim) > 1e-9 {
		t.Errorf("orthogonal vectors should have similarity 0, got %f", sim)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if sim != 0 {
		t.Errorf("zero vector should yield similarity 0, got %f", sim)
	}
}

func TestNormalizeTaskType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"RETRIEVAL_QUERY", "RETRIEVAL_QUERY"},
		{"RETRIEVAL_DOCUMENT", "RETRIEVAL_DOCUMENT"},
		{"SEMANTIC_SIMILARITY", "SEMANTIC_SIMILARITY"},
		{"QUESTION_ANSWERING", "QUESTION_ANSWERING"},
		{"", "RETRIEVAL_QUERY"},
		{"bogus", "RETRIEVAL_QUERY"},
	}
	for _, tc := range cases {
		if got := normalizeTaskType(tc.in); got != tc.want {
			t.Errorf("normalizeTaskType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
