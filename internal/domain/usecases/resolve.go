// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/ports"
)

const pdfMediaType = "application/pdf"

// Resolver decides how to source document text: a fresh upload, a URL fetch,
// or reuse of a previously stored session.
type Resolver struct {
	fetcher ports.DocumentFetcher
	parser  ports.DocumentParser
	store   ports.SessionStore
}

// NewResolver creates a Resolver with injected dependencies.
func NewResolver(fetcher ports.DocumentFetcher, parser ports.DocumentParser, store ports.SessionStore) *Resolver {
	return &Resolver{fetcher: fetcher, parser: parser, store: store}
}

// Resolve turns a DocumentRequest into document text plus source identity.
// URL takes precedence over an upload; a session id is only consulted when
// neither is present. Reuse never re-extracts: the session's stored structure
// is serialized into a context block instead of raw document text.
func (r *Resolver) Resolve(ctx context.Context, req entities.DocumentRequest) (*entities.ResolvedDocument, error) {
	switch {
	case req.URL != "":
		return r.resolveURL(ctx, req.URL)
	case req.Upload != nil:
		return r.resolveUpload(ctx, req.Upload)
	case req.SessionID != "":
		return r.resolveSession(ctx, req.SessionID)
	default:
		return nil, entities.ErrInvalidRequest
	}
}

func (r *Resolver) resolveUpload(ctx context.Context, up *entities.Upload) (*entities.ResolvedDocument, error) {
	text := ""
	if mediaType(up.MediaType) == pdfMediaType {
		parsed, err := r.parser.Parse(ctx, up.Data, up.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrDocumentFetch, err)
		}
		text = parsed
	} else {
		text = string(up.Data)
	}

	return &entities.ResolvedDocument{
		Text:        text,
		SourceLabel: up.Name,
	}, nil
}

func (r *Resolver) resolveURL(ctx context.Context, url string) (*entities.ResolvedDocument, error) {
	data, contentType, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrDocumentFetch, err)
	}

	text := ""
	if mediaType(contentType) == pdfMediaType {
		parsed, err := r.parser.Parse(ctx, data, url)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrDocumentFetch, err)
		}
		text = parsed
	} else {
		// Anything not declared as PDF is treated as UTF-8 text.
		text = string(data)
	}

	return &entities.ResolvedDocument{
		Text:        text,
		SourceLabel: urlTail(url),
		SourceURL:   url,
	}, nil
}

func (r *Resolver) resolveSession(ctx context.Context, id string) (*entities.ResolvedDocument, error) {
	session, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entities.ResolvedDocument{
		Text:        serializeSessionContext(session),
		SourceLabel: session.SourceLabel,
		SourceURL:   session.SourceURL,
		Session:     session,
	}, nil
}

// serializeSessionContext rebuilds a synthetic document from the session's
// stored structure. The LLM answers from this block on reuse, since
// re-ingestion is intentionally skipped.
func serializeSessionContext(s *entities.Session) string {
	var sb strings.Builder
	sb.WriteString("Structured Query: ")
	sb.Write(mustJSON(s.StructuredQuery))
	sb.WriteString("\nTop Matches: ")
	sb.Write(mustJSON(s.TopMatches))
	sb.WriteString("\nLogic Evaluation: ")
	sb.Write(mustJSON(s.LogicEvaluation))
	if s.SourceURL != "" {
		sb.WriteString("\nPDF URL: ")
		sb.WriteString(s.SourceURL)
	}
	return sb.String()
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

// mediaType strips parameters like charset from a Content-Type value.
func mediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// urlTail returns the final path segment of a URL for use as a source label.
func urlTail(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
