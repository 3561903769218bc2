// Package logic provides the rule evaluation adapter.
// Implements ports.LogicEvaluator with presence checks over the structured
// query's extracted entities.
package logic

import (
	"context"
	"fmt"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

// rule is one named check against the structured query.
type rule struct {
	name  string
	check func(entities.StructuredQuery) (bool, string)
}

// Evaluator runs a fixed rule set against extracted document structure.
type Evaluator struct {
	rules []rule
}

// NewEvaluator creates an Evaluator with the default rule set.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		rules: []rule{
			{"has_dates", entityPresence("dates", "date references")},
			{"has_amounts", entityPresence("amounts", "monetary amounts")},
			{"has_contacts", entityPresence("emails", "contact addresses")},
			{"has_periods", entityPresence("periods", "duration clauses")},
			{"has_keywords", hasKeywords},
			{"substantive_document", substantiveDocument},
		},
	}
}

// Evaluate runs every rule; results keep rule order.
func (e *Evaluator) Evaluate(ctx context.Context, structured entities.StructuredQuery) ([]entities.LogicResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]entities.LogicResult, 0, len(e.rules))
	for _, r := range e.rules {
		passed, detail := r.check(structured)
		results = append(results, entities.LogicResult{
			Rule:   r.name,
			Passed: passed,
			Detail: detail,
		})
	}
	return results, nil
}

func entityPresence(key, label string) func(entities.StructuredQuery) (bool, string) {
	return func(sq entities.StructuredQuery) (bool, string) {
		n := entityCount(sq, key)
		if n == 0 {
			return false, "no " + label + " found"
		}
		return true, fmt.Sprintf("%d %s found", n, label)
	}
}

func hasKeywords(sq entities.StructuredQuery) (bool, string) {
	n := listLen(sq["keywords"])
	if n == 0 {
		return false, "no ranked keywords"
	}
	return true, fmt.Sprintf("%d ranked keywords", n)
}

func substantiveDocument(sq entities.StructuredQuery) (bool, string) {
	stats, ok := sq["stats"].(map[string]any)
	if !ok {
		return false, "no stats extracted"
	}
	words := intValue(stats["words"])
	if words < 20 {
		return false, fmt.Sprintf("only %d words", words)
	}
	return true, fmt.Sprintf("%d words", words)
}

func entityCount(sq entities.StructuredQuery, key string) int {
	ents, ok := sq["entities"].(map[string]any)
	if !ok {
		return 0
	}
	return listLen(ents[key])
}

// listLen counts elements of a list that may be typed or decoded from JSON.
func listLen(v any) int {
	switch vv := v.(type) {
	case []string:
		return len(vv)
	case []any:
		return len(vv)
	default:
		return 0
	}
}

// intValue reads an int that may have round-tripped through JSON as float64.
func intValue(v any) int {
	switch vv := v.(type) {
	case int:
		return vv
	case float64:
		return int(vv)
	default:
		return 0
	}
}
