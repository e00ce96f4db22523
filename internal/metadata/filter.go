package metadata

import (
	"fmt"
	"slices"
	"strings"
)

// Filter is a parsed selection expression: |-separated clauses of
// &-separated `key: value` terms. A clause matches when all of its terms
// match; the filter matches when any clause does. Prefixing a value with
// `-` negates the term.
type Filter struct {
	raw     string
	clauses [][]filterTerm
}

type filterTerm struct {
	key     string
	value   string
	negated bool
}

// ParseFilter parses expr. Empty expressions, empty terms, and terms
// without a `key: value` shape are rejected.
func ParseFilter(expr string) (*Filter, error) {
	f := &Filter{raw: expr}

	for _, clause := range strings.Split(expr, "|") {
		var terms []filterTerm
		for _, part := range strings.Split(clause, "&") {
			term, err := parseTerm(part)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
			}
			terms = append(terms, term)
		}
		f.clauses = append(f.clauses, terms)
	}

	return f, nil
}

func parseTerm(part string) (filterTerm, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return filterTerm{}, fmt.Errorf("empty term")
	}

	key, value, found := strings.Cut(part, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !found || key == "" || value == "" {
		return filterTerm{}, fmt.Errorf("term %q is not of the form 'key: value'", part)
	}

	term := filterTerm{key: key, value: value}
	if strings.HasPrefix(value, "-") {
		term.negated = true
		term.value = value[1:]
	}
	return term, nil
}

// Match evaluates the filter against a test's flattened attributes.
// A term whose key is missing from attrs is false regardless of
// negation: negation inverts the value comparison, not the presence
// check.
func (f *Filter) Match(attrs map[string][]string) bool {
	for _, clause := range f.clauses {
		if matchClause(clause, attrs) {
			return true
		}
	}
	return false
}

func matchClause(terms []filterTerm, attrs map[string][]string) bool {
	for _, term := range terms {
		vals, ok := attrs[term.key]
		if !ok {
			return false
		}
		matched := slices.Contains(vals, term.value)
		if term.negated {
			matched = !matched
		}
		if !matched {
			return false
		}
	}
	return true
}

// String returns the original expression.
func (f *Filter) String() string {
	return f.raw
}
