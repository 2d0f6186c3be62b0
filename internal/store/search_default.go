//go:build !sqlite_vec || !cgo

package store

// initVectorIndex is a no-op without the sqlite-vec extension; search runs
// over the JSON embeddings in the passages table.
func (s *LocalStore) initVectorIndex() error {
	return nil
}

// indexVector is a no-op without the sqlite-vec extension.
func (s *LocalStore) indexVector(id string, vec []float32) {}

// SearchPassages returns the top k passages by descending cosine similarity
// against the query embedding. Returns an empty slice when the index holds
// nothing comparable.
func (s *LocalStore) SearchPassages(queryVec []float32, k int) ([]Passage, error) {
	if k < 1 {
		k = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanPassages(queryVec, k)
}
