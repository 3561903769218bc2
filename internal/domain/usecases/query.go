// Package usecases - query.go ties the pipeline together: resolve the document,
// derive structure, persist the session and fold the conversation forward.
package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/ports"
	"github.com/NITESH777RAJPUT/Documind/internal/observability"
)

// QueryService runs the document-query pipeline.
type QueryService struct {
	resolver     *Resolver
	orchestrator *Orchestrator
	extractor    ports.StructuredExtractor
	matcher      ports.SimilarityMatcher
	evaluator    ports.LogicEvaluator
	store        ports.SessionStore
	now          func() time.Time
	newID        func() string
}

// NewQueryService creates a QueryService with injected dependencies.
func NewQueryService(
	resolver *Resolver,
	orchestrator *Orchestrator,
	extractor ports.StructuredExtractor,
	matcher ports.SimilarityMatcher,
	evaluator ports.LogicEvaluator,
	store ports.SessionStore,
) *QueryService {
	return &QueryService{
		resolver:     resolver,
		orchestrator: orchestrator,
		extractor:    extractor,
		matcher:      matcher,
		evaluator:    evaluator,
		store:        store,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Query runs one document query for an authenticated owner. New ingestions
// create a session whose history starts with the user's query; reuse appends
// to the existing history. The assistant turn is appended only after the LLM
// call succeeds, so a failed call leaves the dangling user turn in place.
func (s *QueryService) Query(ctx context.Context, ownerID string, req entities.DocumentRequest, userQuery string) (*entities.QueryResult, error) {
	log := observability.LoggerFromContext(ctx).With("owner_id", ownerID)

	resolved, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	var session *entities.Session
	if resolved.Session != nil {
		// Reuse: the stored structure is immutable, only history grows.
		session = resolved.Session
		if err := s.store.AppendTurns(ctx, session.ID, entities.ChatTurn{Role: entities.RoleUser, Content: userQuery}); err != nil {
			return nil, err
		}
	} else {
		session, err = s.ingest(ctx, ownerID, resolved, entities.ChatTurn{Role: entities.RoleUser, Content: userQuery})
		if err != nil {
			return nil, err
		}
		log.Info("session created", "session_id", session.ID, "source", session.SourceLabel)
	}

	answer, err := s.orchestrator.Ask(ctx, resolved.Text, userQuery)
	if err != nil {
		log.Error("llm call failed", "session_id", session.ID, "error", err)
		return nil, err
	}
	if answer.Degraded {
		log.Warn("llm broke json contract, using raw text", "session_id", session.ID)
	}

	if err := s.store.AppendTurns(ctx, session.ID, entities.ChatTurn{Role: entities.RoleAssistant, Content: assistantContent(answer)}); err != nil {
		return nil, err
	}

	return &entities.QueryResult{
		Answer:          answer,
		SessionID:       session.ID,
		StructuredQuery: session.StructuredQuery,
		TopMatches:      session.TopMatches,
		LogicEvaluation: session.LogicEvaluation,
		SourceURL:       session.SourceURL,
	}, nil
}

// Ingest processes a resolved document into a stored session without running
// the LLM. Used by the watch-directory auto-ingester.
func (s *QueryService) Ingest(ctx context.Context, ownerID string, req entities.DocumentRequest) (*entities.Session, error) {
	resolved, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if resolved.Session != nil {
		return resolved.Session, nil
	}
	return s.ingest(ctx, ownerID, resolved)
}

// ingest derives the session's structure and persists it. Extraction runs
// first; the matcher and evaluator both depend only on its output and run
// concurrently.
func (s *QueryService) ingest(ctx context.Context, ownerID string, resolved *entities.ResolvedDocument, initialTurns ...entities.ChatTurn) (*entities.Session, error) {
	structured, err := s.extractor.Extract(ctx, resolved.Text)
	if err != nil {
		return nil, fmt.Errorf("extracting structure: %w", err)
	}

	var (
		matches []entities.PassageMatch
		results []entities.LogicResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matcher.Match(gctx, structured, resolved.Text)
		if err != nil {
			return fmt.Errorf("matching passages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		results, err = s.evaluator.Evaluate(gctx, structured)
		if err != nil {
			return fmt.Errorf("evaluating logic: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := &entities.Session{
		ID:              s.newID(),
		OwnerID:         ownerID,
		SourceLabel:     resolved.SourceLabel,
		SourceURL:       resolved.SourceURL,
		StructuredQuery: structured,
		TopMatches:      matches,
		LogicEvaluation: results,
		ChatHistory:     initialTurns,
		CreatedAt:       s.now(),
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListFiles returns all sessions owned by a user, newest first.
func (s *QueryService) ListFiles(ctx context.Context, userID string) ([]*entities.Session, error) {
	return s.store.ListByOwner(ctx, userID)
}

// Summarize produces a free-form summary of the given document text.
func (s *QueryService) Summarize(ctx context.Context, documentText string) (string, error) {
	return s.orchestrator.Summarize(ctx, documentText)
}

// assistantContent is what gets persisted for the assistant turn: the full
// parsed payload pretty-printed when the model honored the contract, the raw
// text otherwise.
func assistantContent(a entities.Answer) string {
	if a.Parsed != nil {
		if data, err := json.MarshalIndent(a.Parsed, "", "  "); err == nil {
			return string(data)
		}
	}
	return a.Text
}
