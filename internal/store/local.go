// Package store implements the durable state behind the conversation
// controller: a thread-keyed append-only message log (checkpoints) and the
// vector index holding the embedded corpus passages. Both live in a single
// SQLite database; the database is the single source of truth for thread
// existence and content. Any in-memory view is a cache reconcilable by
// replaying from here.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"vagbhata/internal/types"
)

// LocalStore wraps the SQLite database. Safe for concurrent use across
// threads; each logical thread's data is isolated by its key.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &LocalStore{db: db, dbPath: path, log: logger.Named("store")}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	checkpointTable := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		thread_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_calls TEXT,
		tool_call_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (thread_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_thread ON checkpoints(thread_id);
	`

	passageTable := `
	CREATE TABLE IF NOT EXISTS passages (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	for _, stmt := range []string{checkpointTable, passageTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return s.initVectorIndex()
}

// AppendMessages durably appends messages to a thread, order-preserving.
// Each message carries an explicit Seq; the (thread_id, seq) primary key
// plus INSERT OR IGNORE makes the append idempotent, so retrying an
// already-committed turn does not duplicate messages.
func (s *LocalStore) AppendMessages(threadID string, msgs []types.Message) error {
	if threadID == "" {
		return fmt.Errorf("thread id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}

	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			tx.Rollback()
			return fmt.Errorf("invalid message at seq %d: %w", m.Seq, err)
		}

		var toolCallsJSON sql.NullString
		if len(m.ToolCalls) > 0 {
			raw, err := json.Marshal(m.ToolCalls)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to encode tool calls: %w", err)
			}
			toolCallsJSON = sql.NullString{String: string(raw), Valid: true}
		}

		_, err := tx.Exec(
			`INSERT OR IGNORE INTO checkpoints (thread_id, seq, role, content, tool_calls, tool_call_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			threadID, m.Seq, string(m.Role), m.Content, toolCallsJSON, nullable(m.ToolCallID),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to append message seq %d: %w", m.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	s.log.Debug("appended messages",
		zap.String("thread_id", threadID),
		zap.Int("count", len(msgs)))
	return nil
}

// GetThread replays the full ordered message log for a thread. An unknown
// thread yields an empty slice, not an error.
func (s *LocalStore) GetThread(threadID string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT seq, role, content, tool_calls, tool_call_id
		 FROM checkpoints
		 WHERE thread_id = ?
		 ORDER BY seq ASC`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}
	defer rows.Close()

	msgs := []types.Message{}
	for rows.Next() {
		var m types.Message
		var role string
		var toolCallsJSON, toolCallID sql.NullString
		if err := rows.Scan(&m.Seq, &role, &m.Content, &toolCallsJSON, &toolCallID); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = types.Role(role)
		if toolCallsJSON.Valid && toolCallsJSON.String != "" {
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls at seq %d: %w", m.Seq, err)
			}
		}
		if toolCallID.Valid {
			m.ToolCallID = toolCallID.String
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thread %s: %w", threadID, err)
	}

	return msgs, nil
}

// ListThreads enumerates all known thread ids, unordered.
func (s *LocalStore) ListThreads() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT DISTINCT thread_id FROM checkpoints`)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan thread id: %w", err)
		}
		threads = append(threads, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thread list: %w", err)
	}

	return threads, nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func nullable(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
