// Vector index side of LocalStore: embedded corpus passages with JSON-encoded
// embeddings. The default build ranks by cosine similarity in Go; the
// sqlite_vec build additionally mirrors embeddings into a vec0 virtual table
// and ranks there, falling back to the Go scan if the extension is missing.
package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"vagbhata/internal/embedding"
)

// Passage is one stored corpus excerpt returned by a vector search.
type Passage struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]string
}

// UpsertPassage stores a passage with its embedding, replacing any previous
// entry with the same id. Used by the offline ingest path.
func (s *LocalStore) UpsertPassage(id, content string, vec []float32, metadata map[string]string) error {
	if id == "" {
		return fmt.Errorf("passage id must not be empty")
	}
	if len(vec) == 0 {
		return fmt.Errorf("passage %s has an empty embedding", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	embeddingJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO passages (id, content, embedding, metadata) VALUES (?, ?, ?, ?)`,
		id, content, string(embeddingJSON), string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert passage %s: %w", id, err)
	}

	s.indexVector(id, vec)
	return nil
}

// scanPassages is the portable search: load every passage and rank by cosine
// similarity in Go. Callers hold the read lock.
func (s *LocalStore) scanPassages(queryVec []float32, k int) ([]Passage, error) {
	rows, err := s.db.Query(`SELECT id, content, embedding, metadata FROM passages`)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var candidates []Passage
	for rows.Next() {
		var p Passage
		var embeddingJSON, metaJSON string
		if err := rows.Scan(&p.ID, &p.Content, &embeddingJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &vec); err != nil {
			s.log.Warn("skipping passage with undecodable embedding", zap.String("id", p.ID))
			continue
		}

		sim, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			// Dimension mismatch: corpus embedded with a different model.
			continue
		}
		p.Score = sim

		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &p.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", p.ID, err)
			}
		}
		candidates = append(candidates, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read passages: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// CountPassages reports how many passages are stored.
func (s *LocalStore) CountPassages() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count passages: %w", err)
	}
	return n, nil
}
