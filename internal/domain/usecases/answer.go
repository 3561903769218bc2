// Package usecases - answer.go holds the prompt/answer orchestrator.
package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/ports"
)

// answerKey is the single required key of the model's JSON response contract.
const answerKey = "answer"

const querySystemPrompt = `You are a professional assistant.
Answer the query based ONLY on the provided document content or structure.
Your response MUST be in JSON format, with a key 'answer' for the main response.
Example: {"answer": "The termination period is 30 days."}`

const summarySystemPrompt = `You are a skilled summarizer.
Provide a smooth and informative summary of the document.`

// Orchestrator builds LLM requests, parses replies and normalizes them into
// answers. The model is a best-effort structured producer: when it breaks the
// JSON contract the raw completion is used verbatim and the answer is flagged
// degraded.
type Orchestrator struct {
	llm ports.LLMService
}

// NewOrchestrator creates an Orchestrator with an injected LLM service.
func NewOrchestrator(llm ports.LLMService) *Orchestrator {
	return &Orchestrator{llm: llm}
}

// Ask answers a user query from the provided document text.
func (o *Orchestrator) Ask(ctx context.Context, documentText, userQuery string) (entities.Answer, error) {
	userPrompt := buildUserPrompt(documentText, userQuery)

	raw, err := o.llm.Complete(ctx, querySystemPrompt, userPrompt)
	if err != nil {
		return entities.Answer{}, fmt.Errorf("%w: %v", entities.ErrLLMTransport, err)
	}

	return parseAnswer(raw), nil
}

// Summarize produces a free-form summary of the document text.
func (o *Orchestrator) Summarize(ctx context.Context, documentText string) (string, error) {
	userPrompt := "Document:\n\"\"\"" + documentText + "\"\"\""

	summary, err := o.llm.Complete(ctx, summarySystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrLLMTransport, err)
	}
	return summary, nil
}

func buildUserPrompt(documentText, userQuery string) string {
	var sb strings.Builder
	sb.WriteString("Document Content:\n")
	sb.WriteString(documentText)
	sb.WriteString("\n\nUser Query:\n")
	sb.WriteString(userQuery)
	return sb.String()
}

// parseAnswer applies the two-tier parse: a JSON object with the answer key
// yields that value, any other valid JSON falls back to the raw text with the
// parsed payload kept, and non-JSON output is used verbatim in degraded mode.
func parseAnswer(raw string) entities.Answer {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return entities.Answer{Text: raw, Degraded: true}
	}

	text := raw
	if obj, ok := parsed.(map[string]any); ok {
		if v, ok := obj[answerKey].(string); ok && v != "" {
			text = v
		}
	}
	return entities.Answer{Text: text, Parsed: parsed}
}
