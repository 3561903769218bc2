// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations;
// adapters implement them.
package ports

import (
	"context"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// DocumentParser extracts text from binary document formats (PDF).
type DocumentParser interface {
	// Parse extracts text content from document bytes. Fails on malformed input.
	Parse(ctx context.Context, data []byte, filename string) (string, error)
}

// DocumentFetcher retrieves a remote document.
type DocumentFetcher interface {
	// Fetch downloads the URL and returns its body plus the declared content type.
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// StructuredExtractor converts raw document text into a structured representation.
type StructuredExtractor interface {
	Extract(ctx context.Context, documentText string) (entities.StructuredQuery, error)
}

// SimilarityMatcher returns passages of the document ranked by relevance to the
// structured query.
type SimilarityMatcher interface {
	Match(ctx context.Context, structured entities.StructuredQuery, documentText string) ([]entities.PassageMatch, error)
}

// LogicEvaluator runs rule checks over the structured query.
type LogicEvaluator interface {
	Evaluate(ctx context.Context, structured entities.StructuredQuery) ([]entities.LogicResult, error)
}

// LLMService generates chat completions.
type LLMService interface {
	// Complete sends a system and user prompt, returning the raw completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SessionStore persists sessions and their append-only chat history.
// AppendTurns is the sole serialization point for a session's history:
// implementations must never interleave turns from concurrent calls.
type SessionStore interface {
	// Create atomically persists a new session, chat history included.
	Create(ctx context.Context, session *entities.Session) error

	// Get returns the session or entities.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*entities.Session, error)

	// AppendTurns atomically appends turns to a session's history in order.
	AppendTurns(ctx context.Context, id string, turns ...entities.ChatTurn) error

	// ListByOwner returns the owner's sessions, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Session, error)
}

// TokenVerifier maps a bearer token to a verified user identity. Real identity
// (OAuth, JWT) lives outside this core; the pipeline trusts the result.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}
