package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriter_Apply(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		prefix string
		path   string
		want   string
	}{
		"plain prefix":             {"/tests", "/smoke", "/tests/smoke"},
		"nested prefix":            {"/tests/suite", "/smoke/basic", "/tests/suite/smoke/basic"},
		"unrooted path gets root":  {"/tests", "smoke", "/tests/smoke"},
		"unrooted prefix":          {"tests", "/smoke", "/tests/smoke"},
		"empty prefix normalizes":  {"", "/smoke", "/smoke"},
		"empty prefix cleans path": {"", "smoke//basic", "/smoke/basic"},
		"root path":                {"/tests", "/", "/tests"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := Rewriter{Prefix: tc.prefix}
			assert.Equal(t, tc.want, r.Apply(tc.path))
		})
	}
}

func TestRewriter_Applied(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		prefix string
		path   string
		want   bool
	}{
		"rewritten path":            {"/tests", "/tests/smoke", true},
		"prefix itself":             {"/tests", "/tests", true},
		"untouched path":            {"/tests", "/smoke", false},
		"lookalike sibling":         {"/tests", "/tests-extra/smoke", false},
		"nested prefix applied":     {"/tests/suite", "/tests/suite/smoke", true},
		"nested prefix not applied": {"/tests/suite", "/tests/smoke", false},
		"empty prefix":              {"", "/anything", true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := Rewriter{Prefix: tc.prefix}
			assert.Equal(t, tc.want, r.Applied(tc.path))
		})
	}
}

func TestRewriter_ApplyIsDetectable(t *testing.T) {
	t.Parallel()

	r := Rewriter{Prefix: "/tests/suite"}
	p := r.Apply("/smoke")
	assert.True(t, r.Applied(p), "a freshly applied path must report as applied")
	assert.False(t, r.Applied("/smoke"), "the original path must not")
}
