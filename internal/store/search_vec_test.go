//go:build sqlite_vec && cgo

package store

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeFloat32Blob(t *testing.T) {
	vec := []float32{1, -2.5, 0.25}
	blob := encodeFloat32Blob(vec)

	if len(blob) != len(vec)*4 {
		t.Fatalf("blob length %d, want %d", len(blob), len(vec)*4)
	}
	for i, want := range vec {
		got := math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
		if got != want {
			t.Errorf("element %d decoded as %f, want %f", i, got, want)
		}
	}
}

func TestVecSearchRanksByCosineDistance(t *testing.T) {
	st := newTestStore(t)

	unit := func(i int) []float32 {
		v := make([]float32, vectorDims)
		v[i] = 1
		return v
	}
	near := unit(0)
	near[1] = 0.1

	if err := st.UpsertPassage("exact", "exact match", unit(0), nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := st.UpsertPassage("near", "near match", near, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := st.UpsertPassage("far", "orthogonal", unit(1), nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := st.SearchPassages(unit(0), 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "exact" || got[1].ID != "near" {
		t.Errorf("unexpected ranking: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("scores not descending: %f < %f", got[0].Score, got[1].Score)
	}
}
