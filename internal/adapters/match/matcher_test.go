package match

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

func TestMatcher_RelevantChunkRanksFirst(t *testing.T) {
	doc := strings.Join([]string{
		strings.Repeat("unrelated filler text about nothing in particular. ", 10),
		"The termination period is 30 days from written notice of termination.",
		strings.Repeat("more filler content with no relevance at all. ", 10),
	}, "\n")

	m := NewMatcher(120, 20, 3)
	sq := entities.StructuredQuery{"keywords": []string{"termination", "notice"}}

	matches, err := m.Match(context.Background(), sq, doc)

	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if !strings.Contains(matches[0].Content, "termination") {
		t.Errorf("top match should contain the query terms: %q", matches[0].Content)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Error("matches must be ordered by descending score")
		}
	}
}

func TestMatcher_TopKLimit(t *testing.T) {
	doc := strings.Repeat("contract clause about payment terms. ", 100)
	m := NewMatcher(80, 10, 2)
	sq := entities.StructuredQuery{"keywords": []string{"payment", "clause"}}

	matches, err := m.Match(context.Background(), sq, doc)

	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if len(matches) > 2 {
		t.Errorf("expected at most 2 matches, got %d", len(matches))
	}
}

func TestMatcher_NoQueryTerms(t *testing.T) {
	m := NewMatcher(0, 0, 0)

	matches, err := m.Match(context.Background(), entities.StructuredQuery{}, "some document")

	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if matches != nil {
		t.Errorf("no terms should yield no matches, got %v", matches)
	}
}

func TestMatcher_JSONDecodedKeywords(t *testing.T) {
	// Keywords reloaded from a stored session arrive as []any.
	m := NewMatcher(0, 0, 3)
	sq := entities.StructuredQuery{"keywords": []any{"termination"}}

	matches, err := m.Match(context.Background(), sq, "termination clause applies here")

	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected matches from []any keywords")
	}
}

func TestChunkText(t *testing.T) {
	chunks := chunkText(strings.Repeat("word ", 200), 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk exceeds size: %d", len(c))
		}
	}

	if got := chunkText("   ", 100, 10); got != nil {
		t.Errorf("blank content should yield no chunks, got %v", got)
	}
}

func TestChunkText_SpaceOnlyInsideOverlap(t *testing.T) {
	// A short word followed by a token longer than the chunk size puts the
	// window's only space inside the overlap region. Chunking must still
	// advance through the token instead of rescanning the same window.
	content := "word " + strings.Repeat("a", 600)

	done := make(chan []string, 1)
	go func() { done <- chunkText(content, 500, 50) }()

	var chunks []string
	select {
	case chunks = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("chunking did not terminate")
	}

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > 4 {
		t.Errorf("expected a handful of chunks, got %d", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "a") {
		t.Errorf("final chunk should reach the end of the content: %q", last)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i] == chunks[i-1] {
			t.Errorf("chunk %d repeats its predecessor: %q", i, chunks[i])
		}
	}
}

func TestChunkText_OverlapAtLeastSize(t *testing.T) {
	chunks := chunkText(strings.Repeat("ab ", 50), 10, 10)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > 50 {
		t.Errorf("expected bounded chunk count, got %d", len(chunks))
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := termVector([]string{"x", "y"})
	if got := cosineSimilarity(a, a); got < 0.999 {
		t.Errorf("identical vectors should score 1, got %f", got)
	}
	b := termVector([]string{"z"})
	if got := cosineSimilarity(a, b); got != 0 {
		t.Errorf("disjoint vectors should score 0, got %f", got)
	}
	if got := cosineSimilarity(a, map[string]float64{}); got != 0 {
		t.Errorf("empty vector should score 0, got %f", got)
	}
}
