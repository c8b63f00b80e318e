package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandQueryKeepsOriginalTokens(t *testing.T) {
	questions := []string{
		"How do I INSTALL this",
		"where is my truck",
		"zzz qqq unknown words",
		"",
	}

	for _, q := range questions {
		terms := ExpandQuery(q)
		for _, token := range strings.Fields(strings.ToLower(q)) {
			assert.Contains(t, terms, token, "question %q lost token %q", q, token)
		}
	}
}

func TestExpandQuerySynonyms(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			name:     "canonical term pulls in alternates",
			question: "install",
			want:     []string{"install", "setup", "installation", "configure"},
		},
		{
			name:     "alternate pulls in canonical and siblings",
			question: "cost",
			want:     []string{"cost", "price", "pricing", "subscription"},
		},
		{
			name:     "unknown token expands to itself",
			question: "xyzzy",
			want:     []string{"xyzzy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := ExpandQuery(tt.question)
			for _, w := range tt.want {
				assert.Contains(t, terms, w)
			}
		})
	}
}

func TestExpandQueryDeduplicates(t *testing.T) {
	terms := ExpandQuery("install install setup")

	seen := make(map[string]int)
	for _, term := range terms {
		seen[term]++
	}
	for term, count := range seen {
		assert.Equal(t, 1, count, "term %q appears %d times", term, count)
	}
}

func TestExpandQueryDeterministic(t *testing.T) {
	question := "how much does pricing cost for my fleet"

	first := ExpandQuery(question)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExpandQuery(question))
	}
}

func TestExpandQueryEmptyQuestion(t *testing.T) {
	assert.Empty(t, ExpandQuery(""))
	assert.Empty(t, ExpandQuery("   \t  "))
}
