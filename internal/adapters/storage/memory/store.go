// Package memory provides the in-memory session store used for development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// Store implements ports.SessionStore with mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entities.Session)}
}

// Create persists a new session.
func (s *Store) Create(ctx context.Context, session *entities.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("%w: session %s already exists", entities.ErrPersistence, session.ID)
	}

	s.sessions[session.ID] = copySession(session)
	return nil
}

// Get returns a copy of the session, so callers holding a stale copy can
// never mutate the stored record directly.
func (s *Store) Get(ctx context.Context, id string) (*entities.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return copySession(session), nil
}

// AppendTurns appends turns in order under the store lock, so concurrent
// calls are serialized and never interleave.
func (s *Store) AppendTurns(ctx context.Context, id string, turns ...entities.ChatTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return entities.ErrSessionNotFound
	}
	session.ChatHistory = append(session.ChatHistory, turns...)
	return nil
}

// ListByOwner returns the owner's sessions, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.Session
	for _, session := range s.sessions {
		if session.OwnerID == ownerID {
			result = append(result, copySession(session))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func copySession(s *entities.Session) *entities.Session {
	out := *s
	out.ChatHistory = append([]entities.ChatTurn(nil), s.ChatHistory...)
	out.TopMatches = append([]entities.PassageMatch(nil), s.TopMatches...)
	out.LogicEvaluation = append([]entities.LogicResult(nil), s.LogicEvaluation...)
	return &out
}
