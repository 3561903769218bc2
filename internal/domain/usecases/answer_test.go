package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// stubLLM implements ports.LLMService for testing.
type stubLLM struct {
	response string
	err      error
	calls    int
}

func (m *stubLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestOrchestrator_JSONContractHonored(t *testing.T) {
	o := NewOrchestrator(&stubLLM{response: `{"answer": "The termination period is 30 days."}`})

	answer, err := o.Ask(context.Background(), "doc text", "What is the termination period?")

	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if answer.Text != "The termination period is 30 days." {
		t.Errorf("unexpected answer: %q", answer.Text)
	}
	if answer.Degraded {
		t.Error("valid JSON must not be degraded")
	}
	if answer.Parsed == nil {
		t.Error("parsed payload should be kept")
	}
}

func TestOrchestrator_RawTextFallback(t *testing.T) {
	o := NewOrchestrator(&stubLLM{response: "The answer is 30 days"})

	answer, err := o.Ask(context.Background(), "doc text", "query")

	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if answer.Text != "The answer is 30 days" {
		t.Errorf("raw fallback should be verbatim, got %q", answer.Text)
	}
	if !answer.Degraded {
		t.Error("non-JSON output must be flagged degraded")
	}
	if answer.Parsed != nil {
		t.Error("degraded answers have no parsed payload")
	}
}

func TestOrchestrator_JSONWithoutAnswerKey(t *testing.T) {
	raw := `{"result": "something else"}`
	o := NewOrchestrator(&stubLLM{response: raw})

	answer, err := o.Ask(context.Background(), "doc", "query")

	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if answer.Text != raw {
		t.Errorf("missing answer key should fall back to raw text, got %q", answer.Text)
	}
	if answer.Degraded {
		t.Error("valid JSON without the key is not degraded")
	}
}

func TestOrchestrator_NonObjectJSON(t *testing.T) {
	for _, raw := range []string{`["a", "b"]`, `"just a string"`, `42`} {
		o := NewOrchestrator(&stubLLM{response: raw})

		answer, err := o.Ask(context.Background(), "doc", "query")

		if err != nil {
			t.Fatalf("ask failed for %q: %v", raw, err)
		}
		if answer.Text != raw {
			t.Errorf("%q: non-object JSON should fall back to raw text, got %q", raw, answer.Text)
		}
		if answer.Degraded {
			t.Errorf("%q: valid JSON must not be degraded", raw)
		}
		if answer.Parsed == nil {
			t.Errorf("%q: parsed payload should be kept", raw)
		}
	}
}

func TestOrchestrator_TransportFailure(t *testing.T) {
	o := NewOrchestrator(&stubLLM{err: errors.New("connection reset")})

	_, err := o.Ask(context.Background(), "doc", "query")

	if !errors.Is(err, entities.ErrLLMTransport) {
		t.Errorf("expected ErrLLMTransport, got %v", err)
	}
}

func TestOrchestrator_NoRetries(t *testing.T) {
	llm := &stubLLM{err: errors.New("boom")}
	o := NewOrchestrator(llm)

	o.Ask(context.Background(), "doc", "query")

	if llm.calls != 1 {
		t.Errorf("expected exactly one LLM call, got %d", llm.calls)
	}
}

func TestOrchestrator_Summarize(t *testing.T) {
	o := NewOrchestrator(&stubLLM{response: "A short summary."})

	summary, err := o.Summarize(context.Background(), "long document")

	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summary != "A short summary." {
		t.Errorf("unexpected summary: %q", summary)
	}
}
