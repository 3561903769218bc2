// Package http provides the HTTP server infrastructure.
// Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/ports"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/usecases"
	"github.com/NITESH777RAJPUT/Documind/internal/observability"
)

// maxUploadBytes caps multipart uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Server is the HTTP server for the document query API.
type Server struct {
	svc        *usecases.QueryService
	verifier   ports.TokenVerifier
	samplePath string
	addr       string
}

// NewServer creates the HTTP server.
func NewServer(svc *usecases.QueryService, verifier ports.TokenVerifier, samplePath, addr string) *Server {
	return &Server{
		svc:        svc,
		verifier:   verifier,
		samplePath: samplePath,
		addr:       addr,
	}
}

// Handler builds the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/query", s.requireAuth(http.HandlerFunc(s.handleQuery)))
	mux.Handle("/api/query/files/", s.requireAuth(http.HandlerFunc(s.handleUserFiles)))
	mux.Handle("/api/query/summarize", s.requireAuth(http.HandlerFunc(s.handleSummarize)))
	mux.HandleFunc("/api/health", s.handleHealth)

	return corsMiddleware(requestIDMiddleware(loggingMiddleware(mux)))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // the pipeline waits on the LLM
	}

	observability.Logger().Info("server starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// ─────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────

type queryRequest struct {
	UserQuery string `json:"userQuery"`
	FileID    string `json:"fileId,omitempty"`
	PDFURL    string `json:"pdfUrl,omitempty"`
}

type queryResponse struct {
	Response         string                   `json:"response"`
	StructuredQuery  entities.StructuredQuery `json:"structuredQuery"`
	TopMatches       []entities.PassageMatch  `json:"topMatches"`
	LogicEvaluations []entities.LogicResult   `json:"logicEvaluations"`
	FileID           string                   `json:"fileId"`
	PDFURL           string                   `json:"pdfUrl,omitempty"`
	FullAIResponse   any                      `json:"fullAiResponse"`
}

type fileResponse struct {
	ID              string                   `json:"id"`
	FileName        string                   `json:"fileName"`
	PDFURL          string                   `json:"pdfUrl,omitempty"`
	StructuredQuery entities.StructuredQuery `json:"structuredQuery"`
	TopMatches      []entities.PassageMatch  `json:"topMatches"`
	LogicEvaluation []entities.LogicResult   `json:"logicEvaluation"`
	ChatHistory     []entities.ChatTurn      `json:"chatHistory"`
	UploadedAt      time.Time                `json:"uploadedAt"`
}

type filesResponse struct {
	Files []fileResponse `json:"files"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

// handleQuery runs the document-query pipeline: upload, URL, or reuse by id.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	userQuery, docReq, err := parseQueryRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.svc.Query(r.Context(), userIDFromContext(r.Context()), docReq, userQuery)
	if err != nil {
		writeQueryError(w, r.Context(), err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Response:         result.Answer.Text,
		StructuredQuery:  result.StructuredQuery,
		TopMatches:       result.TopMatches,
		LogicEvaluations: result.LogicEvaluation,
		FileID:           result.SessionID,
		PDFURL:           result.SourceURL,
		FullAIResponse:   result.Answer.Parsed,
	})
}

// handleUserFiles returns all sessions owned by a user, newest first.
func (s *Server) handleUserFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/query/files/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}

	sessions, err := s.svc.ListFiles(r.Context(), userID)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("listing files failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch user files")
		return
	}

	files := make([]fileResponse, 0, len(sessions))
	for _, session := range sessions {
		files = append(files, toFileResponse(session))
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// handleSummarize summarizes either an uploaded text file or the configured
// sample document.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	text, err := s.summarizeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no document to summarize")
		return
	}

	summary, err := s.svc.Summarize(r.Context(), text)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("summarize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Summary generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// Request parsing
// ─────────────────────────────────────────────

// parseQueryRequest accepts either a JSON body or a multipart form with an
// optional file part.
func parseQueryRequest(r *http.Request) (string, entities.DocumentRequest, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", entities.DocumentRequest{}, err
		}

		docReq := entities.DocumentRequest{
			URL:       r.FormValue("pdfUrl"),
			SessionID: r.FormValue("fileId"),
		}

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return "", entities.DocumentRequest{}, err
			}
			docReq.Upload = &entities.Upload{
				Name:      header.Filename,
				MediaType: header.Header.Get("Content-Type"),
				Data:      data,
			}
		}
		return r.FormValue("userQuery"), docReq, nil
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", entities.DocumentRequest{}, err
	}
	return req.UserQuery, entities.DocumentRequest{
		URL:       req.PDFURL,
		SessionID: req.FileID,
	}, nil
}

func (s *Server) summarizeInput(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", err
		}
		file, _, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
	return readSample(s.samplePath)
}

func readSample(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ─────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────

// writeQueryError maps the pipeline error taxonomy onto HTTP statuses.
// Fetch and validation failures are the caller's fault; LLM and store
// failures are ours.
func writeQueryError(w http.ResponseWriter, ctx context.Context, err error) {
	log := observability.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, entities.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "No file, fileId, or pdfUrl provided")
	case errors.Is(err, entities.ErrDocumentFetch):
		writeError(w, http.StatusBadRequest, "Failed to fetch or parse PDF from provided URL.")
	case errors.Is(err, entities.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	default:
		log.Error("query pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process document query.")
	}
}

// ─────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// requireAuth verifies the bearer token and injects the owner identity.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		userID, err := s.verifier.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUserID, userID)))
	})
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ctxKeyUserID).(string)
	return userID
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		observability.LoggerFromContext(r.Context()).Info("request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toFileResponse(s *entities.Session) fileResponse {
	return fileResponse{
		ID:              s.ID,
		FileName:        s.SourceLabel,
		PDFURL:          s.SourceURL,
		StructuredQuery: s.StructuredQuery,
		TopMatches:      s.TopMatches,
		LogicEvaluation: s.LogicEvaluation,
		ChatHistory:     s.ChatHistory,
		UploadedAt:      s.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
