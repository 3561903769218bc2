// Package sqlite provides the persistent session store.
// Implements ports.SessionStore with SQLite-based persistence. Derived
// structure lives as JSON columns; chat turns get their own ordered table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// Store implements ports.SessionStore on SQLite.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewStore opens (or creates) the session database under dataPath.
func NewStore(dataPath string) (*Store, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "sessions.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		source_label TEXT,
		source_url TEXT,
		structured_query TEXT NOT NULL,
		top_matches TEXT NOT NULL,
		logic_evaluation TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner_id, created_at);

	CREATE TABLE IF NOT EXISTS chat_turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON chat_turns(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create atomically persists the session and its initial chat history.
func (s *Store) Create(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	structured, err := json.Marshal(session.StructuredQuery)
	if err != nil {
		return fmt.Errorf("%w: encoding structured query: %v", entities.ErrPersistence, err)
	}
	matches, err := json.Marshal(session.TopMatches)
	if err != nil {
		return fmt.Errorf("%w: encoding matches: %v", entities.ErrPersistence, err)
	}
	evaluation, err := json.Marshal(session.LogicEvaluation)
	if err != nil {
		return fmt.Errorf("%w: encoding evaluation: %v", entities.ErrPersistence, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, source_label, source_url, structured_query, top_matches, logic_evaluation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.OwnerID, session.SourceLabel, session.SourceURL, structured, matches, evaluation, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting session: %v", entities.ErrPersistence, err)
	}

	if err := insertTurns(ctx, tx, session.ID, session.ChatHistory); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return nil
}

// Get returns the session with its full chat history.
func (s *Store) Get(ctx context.Context, id string) (*entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, source_label, source_url, structured_query, top_matches, logic_evaluation, created_at
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, entities.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}

	turns, err := s.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	session.ChatHistory = turns
	return session, nil
}

// AppendTurns atomically appends turns in order. Concurrent appends are
// serialized by the store lock; ordering within one call is preserved by the
// autoincrement sequence.
func (s *Store) AppendTurns(ctx context.Context, id string, turns ...entities.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&exists); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	if exists == 0 {
		return entities.ErrSessionNotFound
	}

	if err := insertTurns(ctx, tx, id, turns); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return nil
}

// ListByOwner returns the owner's sessions with history, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, source_label, source_url, structured_query, top_matches, logic_evaluation, created_at
		FROM sessions WHERE owner_id = ? ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	defer rows.Close()

	var sessions []*entities.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}

	for _, session := range sessions {
		turns, err := s.loadTurns(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		session.ChatHistory = turns
	}
	return sessions, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func insertTurns(ctx context.Context, tx *sql.Tx, sessionID string, turns []entities.ChatTurn) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chat_turns (session_id, role, content) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	defer stmt.Close()

	for _, turn := range turns {
		if _, err := stmt.ExecContext(ctx, sessionID, string(turn.Role), turn.Content); err != nil {
			return fmt.Errorf("%w: inserting turn: %v", entities.ErrPersistence, err)
		}
	}
	return nil
}

func (s *Store) loadTurns(ctx context.Context, sessionID string) ([]entities.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT role, content FROM chat_turns WHERE session_id = ? ORDER BY seq", sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	defer rows.Close()

	var turns []entities.ChatTurn
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
		}
		turns = append(turns, entities.ChatTurn{Role: entities.Role(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return turns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*entities.Session, error) {
	var (
		session    entities.Session
		structured []byte
		matches    []byte
		evaluation []byte
	)
	err := row.Scan(&session.ID, &session.OwnerID, &session.SourceLabel, &session.SourceURL,
		&structured, &matches, &evaluation, &session.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(structured, &session.StructuredQuery); err != nil {
		return nil, fmt.Errorf("decoding structured query: %w", err)
	}
	if err := json.Unmarshal(matches, &session.TopMatches); err != nil {
		return nil, fmt.Errorf("decoding matches: %w", err)
	}
	if err := json.Unmarshal(evaluation, &session.LogicEvaluation); err != nil {
		return nil, fmt.Errorf("decoding evaluation: %w", err)
	}
	return &session, nil
}
