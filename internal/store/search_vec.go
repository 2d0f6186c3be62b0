//go:build sqlite_vec && cgo

package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// vectorDims is the embedding dimensionality the vec0 index is created with.
// text-embedding-004 produces 768-dimensional vectors.
const vectorDims = 768

// initVectorIndex creates the vec0 virtual table mirroring passage
// embeddings for ANN search. Failure is non-fatal: search falls back to the
// Go-side scan of the passages table.
func (s *LocalStore) initVectorIndex() error {
	query := fmt.Sprintf(`
	CREATE VIRTUAL TABLE IF NOT EXISTS vec_passages USING vec0(
		embedding float[%d],
		passage_id TEXT
	)`, vectorDims)

	if _, err := s.db.Exec(query); err != nil {
		s.log.Warn("failed to create vec_passages (sqlite-vec may not be available)", zap.Error(err))
	}
	return nil
}

// indexVector mirrors a passage embedding into the vec0 table. Non-fatal on
// failure; the passages table remains the source of truth. Callers hold the
// write lock.
func (s *LocalStore) indexVector(id string, vec []float32) {
	if len(vec) != vectorDims {
		s.log.Warn("embedding dimension differs from vec index, ANN skip",
			zap.String("id", id), zap.Int("dims", len(vec)))
		return
	}

	if _, err := s.db.Exec(`DELETE FROM vec_passages WHERE passage_id = ?`, id); err != nil {
		s.log.Warn("failed to clear vec_passages entry", zap.String("id", id), zap.Error(err))
		return
	}
	if _, err := s.db.Exec(
		`INSERT INTO vec_passages (embedding, passage_id) VALUES (?, ?)`,
		encodeFloat32Blob(vec), id,
	); err != nil {
		s.log.Warn("failed to insert into vec_passages (ANN may be unavailable)",
			zap.String("id", id), zap.Error(err))
	}
}

// SearchPassages returns the top k passages by descending cosine similarity.
// The vec0 index ranks by cosine distance in SQLite; if it is unavailable
// the Go-side scan over the passages table serves the query instead.
func (s *LocalStore) SearchPassages(queryVec []float32, k int) ([]Passage, error) {
	if k < 1 {
		k = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	passages, err := s.searchVec(queryVec, k)
	if err != nil {
		s.log.Debug("vec search unavailable, falling back to scan", zap.Error(err))
		return s.scanPassages(queryVec, k)
	}
	return passages, nil
}

func (s *LocalStore) searchVec(queryVec []float32, k int) ([]Passage, error) {
	if len(queryVec) != vectorDims {
		return nil, fmt.Errorf("query has %d dims, index has %d", len(queryVec), vectorDims)
	}

	rows, err := s.db.Query(`
		SELECT p.id, p.content, p.metadata,
		       vec_distance_cosine(v.embedding, ?) AS distance
		FROM vec_passages v
		JOIN passages p ON p.id = v.passage_id
		ORDER BY distance ASC
		LIMIT ?`,
		encodeFloat32Blob(queryVec), k,
	)
	if err != nil {
		return nil, fmt.Errorf("vec search failed: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		var metaJSON string
		var distance float64
		if err := rows.Scan(&p.ID, &p.Content, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan vec match: %w", err)
		}
		p.Score = 1.0 - distance

		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &p.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", p.ID, err)
			}
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vec matches: %w", err)
	}
	return passages, nil
}

// encodeFloat32Blob packs a vector as the little-endian float32 blob the
// vec0 module expects.
func encodeFloat32Blob(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil
	}
	return buf.Bytes()
}
