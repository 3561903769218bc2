package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

func newSession(id, owner string, createdAt time.Time) *entities.Session {
	return &entities.Session{
		ID:              id,
		OwnerID:         owner,
		SourceLabel:     id + ".pdf",
		StructuredQuery: entities.StructuredQuery{"keywords": []string{"x"}},
		ChatHistory:     []entities.ChatTurn{{Role: entities.RoleUser, Content: "q"}},
		CreatedAt:       createdAt,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Create(ctx, newSession("s1", "u1", time.Now())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.OwnerID != "u1" || len(got.ChatHistory) != 1 {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Get(context.Background(), "missing")

	if !errors.Is(err, entities.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Create(ctx, newSession("s1", "u1", time.Now()))

	got, _ := s.Get(ctx, "s1")
	got.ChatHistory = append(got.ChatHistory, entities.ChatTurn{Role: entities.RoleAssistant, Content: "sneaky"})

	reloaded, _ := s.Get(ctx, "s1")
	if len(reloaded.ChatHistory) != 1 {
		t.Error("mutating a returned session must not affect the store")
	}
}

func TestStore_AppendTurnsOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Create(ctx, newSession("s1", "u1", time.Now()))

	err := s.AppendTurns(ctx, "s1",
		entities.ChatTurn{Role: entities.RoleAssistant, Content: "a1"},
		entities.ChatTurn{Role: entities.RoleUser, Content: "q2"},
	)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, _ := s.Get(ctx, "s1")
	if len(got.ChatHistory) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got.ChatHistory))
	}
	if got.ChatHistory[1].Content != "a1" || got.ChatHistory[2].Content != "q2" {
		t.Errorf("turn order not preserved: %+v", got.ChatHistory)
	}
}

func TestStore_AppendTurnsNotFound(t *testing.T) {
	s := NewStore()

	err := s.AppendTurns(context.Background(), "missing", entities.ChatTurn{Role: entities.RoleUser, Content: "q"})

	if !errors.Is(err, entities.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_ConcurrentAppendsNeverInterleave(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	session := newSession("s1", "u1", time.Now())
	session.ChatHistory = nil
	s.Create(ctx, session)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendTurns(ctx, "s1",
				entities.ChatTurn{Role: entities.RoleUser, Content: "q"},
				entities.ChatTurn{Role: entities.RoleAssistant, Content: "a"},
			)
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, "s1")
	if len(got.ChatHistory) != 100 {
		t.Fatalf("expected 100 turns, got %d", len(got.ChatHistory))
	}
	for i := 0; i < 100; i += 2 {
		if got.ChatHistory[i].Role != entities.RoleUser || got.ChatHistory[i+1].Role != entities.RoleAssistant {
			t.Fatalf("turns interleaved at %d", i)
		}
	}
}

func TestStore_ListByOwnerNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Now()

	s.Create(ctx, newSession("old", "u1", base.Add(-2*time.Hour)))
	s.Create(ctx, newSession("new", "u1", base))
	s.Create(ctx, newSession("mid", "u1", base.Add(-time.Hour)))
	s.Create(ctx, newSession("other", "u2", base))

	sessions, err := s.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if sessions[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, sessions[i].ID, want)
		}
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Create(ctx, newSession("s1", "u1", time.Now()))

	err := s.Create(ctx, newSession("s1", "u1", time.Now()))

	if !errors.Is(err, entities.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}
