// Package extract provides the structured extraction adapter.
// Implements ports.StructuredExtractor with lexical heuristics. The output
// shape is deliberately untyped: downstream components treat it as opaque.
package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

var (
	datePattern   = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)
	amountPattern = regexp.MustCompile(`(?:\$|€|£|USD\s?|EUR\s?)\d[\d,]*(?:\.\d+)?`)
	emailPattern  = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`)
	periodPattern = regexp.MustCompile(`(?i)\b\d+\s+(?:days?|weeks?|months?|years?)\b`)
	wordPattern   = regexp.MustCompile(`[A-Za-z][A-Za-z'-]+`)
)

// stopwords excluded from keyword ranking.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "shall": true, "will": true, "are": true,
	"was": true, "were": true, "has": true, "have": true, "been": true,
	"not": true, "any": true, "all": true, "its": true, "may": true,
	"which": true, "such": true, "other": true, "upon": true, "herein": true,
}

// Extractor derives a structured query from raw document text.
type Extractor struct {
	maxKeywords int
}

// NewExtractor creates an Extractor keeping up to maxKeywords ranked terms.
func NewExtractor(maxKeywords int) *Extractor {
	if maxKeywords <= 0 {
		maxKeywords = 12
	}
	return &Extractor{maxKeywords: maxKeywords}
}

// Extract builds the structured representation of the document.
func (e *Extractor) Extract(ctx context.Context, documentText string) (entities.StructuredQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(documentText)
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	return entities.StructuredQuery{
		"keywords": topKeywords(words, e.maxKeywords),
		"entities": map[string]any{
			"dates":   dedupe(datePattern.FindAllString(text, -1)),
			"amounts": dedupe(amountPattern.FindAllString(text, -1)),
			"emails":  dedupe(emailPattern.FindAllString(text, -1)),
			"periods": dedupe(periodPattern.FindAllString(text, -1)),
		},
		"stats": map[string]any{
			"characters": len(text),
			"words":      len(words),
		},
	}, nil
}

// topKeywords ranks words by frequency, stopwords and short tokens excluded.
func topKeywords(words []string, limit int) []string {
	freq := make(map[string]int)
	for _, w := range words {
		if len(w) < 4 || stopwords[w] {
			continue
		}
		freq[w]++
	}

	ranked := make([]string, 0, len(freq))
	for w := range freq {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
