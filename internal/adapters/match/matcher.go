// Package match provides the similarity matching adapter.
// Implements ports.SimilarityMatcher: the document is split into overlapping
// chunks and each chunk is scored against the structured query's terms with
// term-frequency cosine similarity.
package match

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// Matcher ranks document passages against a structured query.
type Matcher struct {
	chunkSize    int
	chunkOverlap int
	topK         int
}

// NewMatcher creates a Matcher with chunking parameters.
func NewMatcher(chunkSize, chunkOverlap, topK int) *Matcher {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}
	if topK <= 0 {
		topK = 5
	}
	return &Matcher{chunkSize: chunkSize, chunkOverlap: chunkOverlap, topK: topK}
}

// Match returns the top-K chunks most similar to the query terms, ordered by
// descending score.
func (m *Matcher) Match(ctx context.Context, structured entities.StructuredQuery, documentText string) ([]entities.PassageMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := queryTerms(structured)
	if len(terms) == 0 {
		return nil, nil
	}
	queryVec := termVector(terms)

	chunks := chunkText(documentText, m.chunkSize, m.chunkOverlap)
	matches := make([]entities.PassageMatch, 0, len(chunks))
	for i, chunk := range chunks {
		score := cosineSimilarity(queryVec, termVector(tokenize(chunk)))
		if score <= 0 {
			continue
		}
		matches = append(matches, entities.PassageMatch{
			ChunkIndex: i,
			Content:    chunk,
			Score:      score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > m.topK {
		matches = matches[:m.topK]
	}
	return matches, nil
}

// queryTerms flattens the structured query's keywords and entity values into
// a flat term list. The map's shape is otherwise opaque.
func queryTerms(structured entities.StructuredQuery) []string {
	var terms []string

	if keywords, ok := structured["keywords"].([]string); ok {
		terms = append(terms, keywords...)
	} else if keywords, ok := structured["keywords"].([]any); ok {
		for _, k := range keywords {
			if s, ok := k.(string); ok {
				terms = append(terms, s)
			}
		}
	}

	if ents, ok := structured["entities"].(map[string]any); ok {
		for _, v := range ents {
			switch vv := v.(type) {
			case []string:
				for _, s := range vv {
					terms = append(terms, tokenize(s)...)
				}
			case []any:
				for _, e := range vv {
					if s, ok := e.(string); ok {
						terms = append(terms, tokenize(s)...)
					}
				}
			}
		}
	}

	return terms
}

// chunkText splits content into overlapping chunks, breaking at word
// boundaries where possible.
func chunkText(content string, size, overlap int) []string {
	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + size
		if end > len(content) {
			end = len(content)
		}

		if end < len(content) {
			lastSpace := strings.LastIndex(content[start:end], " ")
			if lastSpace > 0 {
				end = start + lastSpace
			}
		}

		chunk := strings.TrimSpace(content[start:end])
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}

		if end >= len(content) {
			break
		}
		// The next window must start past the current one, or a word-boundary
		// break inside the overlap region would rescan the same window.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

func termVector(terms []string) map[string]float64 {
	vec := make(map[string]float64, len(terms))
	for _, t := range terms {
		vec[t]++
	}
	return vec
}

// cosineSimilarity calculates cosine similarity between two sparse
// term-frequency vectors.
func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for t, av := range a {
		normA += av * av
		if bv, ok := b[t]; ok {
			dotProduct += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
