// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry in a session's conversation history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StructuredQuery is the structured representation extracted from document text.
// It is an opaque passthrough: extraction decides its shape, nothing downstream
// interprets it beyond serialization.
type StructuredQuery map[string]any

// PassageMatch is one passage relevant to the structured query.
type PassageMatch struct {
	ChunkIndex int     `json:"chunkIndex"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// LogicResult is the outcome of one rule evaluated over the structured query.
type LogicResult struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Session binds a document's extracted structure, matches, logic results and
// chat history to an owner. StructuredQuery, TopMatches and LogicEvaluation are
// computed exactly once at ingestion and never change; ChatHistory only grows.
type Session struct {
	ID              string
	OwnerID         string
	SourceLabel     string
	SourceURL       string // set only for URL ingestions
	StructuredQuery StructuredQuery
	TopMatches      []PassageMatch
	LogicEvaluation []LogicResult
	ChatHistory     []ChatTurn
	CreatedAt       time.Time
}

// DocumentRequest is the three-way input to the source resolver. Exactly one of
// Upload, URL or SessionID must be set.
type DocumentRequest struct {
	Upload    *Upload
	URL       string
	SessionID string
}

// Upload carries the bytes of a multipart file upload.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// ResolvedDocument is the resolver's output: the text handed to the LLM plus
// where it came from.
type ResolvedDocument struct {
	Text        string
	SourceLabel string
	SourceURL   string
	Session     *Session // set when an existing session was reused
}

// Answer is the orchestrator's normalized LLM output.
type Answer struct {
	Text     string         // normalized answer text
	Parsed   any // full parsed payload, nil when the model broke the JSON contract
	Degraded bool           // model returned non-JSON, Text is the raw completion
}

// QueryResult is what a completed pipeline run returns to the caller.
type QueryResult struct {
	Answer          Answer
	SessionID       string
	StructuredQuery StructuredQuery
	TopMatches      []PassageMatch
	LogicEvaluation []LogicResult
	SourceURL       string
}
