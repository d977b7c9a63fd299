// Package taxonomy holds the classification vocabulary shared by the file
// indexer, the geo export and the copilot: jurisdictions, document
// categories, planning stages, risk tiers and preview types.
package taxonomy

import "strings"

// Rule pairs a result with the keywords that select it.
type Rule[T any] struct {
	Result   T
	Keywords []string
}

// Matches reports whether any keyword occurs in s, ignoring case.
func (r Rule[T]) Matches(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// RuleTable is an ordered list of rules. The first matching rule wins, so
// more specific entries must be declared before broader ones.
type RuleTable[T any] []Rule[T]

// Match returns the result of the first rule whose keywords occur in s.
func (t RuleTable[T]) Match(s string) (T, bool) {
	for _, r := range t {
		if r.Matches(s) {
			return r.Result, true
		}
	}
	var zero T
	return zero, false
}

// MatchOr is Match with a fallback for the no-match case.
func (t RuleTable[T]) MatchOr(s string, fallback T) T {
	if v, ok := t.Match(s); ok {
		return v
	}
	return fallback
}

// Results lists every rule result in declaration order.
func (t RuleTable[T]) Results() []T {
	out := make([]T, len(t))
	for i, r := range t {
		out[i] = r.Result
	}
	return out
}
