package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine ranks knowledge-base documents against user questions. The corpus
// is immutable after construction; only the category aggregates are
// recomputed at runtime.
type Engine struct {
	docs   []Document
	config EngineConfig

	mu    sync.RWMutex
	stats Stats
}

// NewEngine validates the corpus and builds a retrieval engine over it.
func NewEngine(docs []Document, config EngineConfig) (*Engine, error) {
	e := &Engine{
		docs:   docs,
		config: config,
	}

	stats, err := e.computeStats()
	if err != nil {
		return nil, err
	}
	e.stats = stats

	return e, nil
}

// Retrieve scores every document against the question and returns the
// contents of the strongest matches, best first. At most TopN contents come
// back; the slice is empty when nothing clears the relevance threshold.
func (e *Engine) Retrieve(question string) []string {
	terms := ExpandQuery(question)
	lowered := strings.ToLower(question)

	matches := make([]ScoredMatch, 0, 4)
	for _, doc := range e.docs {
		score := e.scoreDocument(doc, lowered, terms)
		if score <= 0 {
			continue
		}

		matches = append(matches, ScoredMatch{
			Content:  doc.Content,
			Score:    score + doc.Priority,
			Priority: doc.Priority,
		})
	}

	// Stable sort keeps corpus order on ties, so repeated queries return
	// identical results.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	contents := make([]string, 0, e.config.TopN)
	for _, m := range matches {
		if m.Score < e.config.MinScore {
			break
		}
		contents = append(contents, m.Content)
		if len(contents) == e.config.TopN {
			break
		}
	}

	return contents
}

// scoreDocument accumulates the match signals for one document. A verbatim
// keyword hit in the question is the strongest signal and suppresses the
// per-term checks for that keyword.
func (e *Engine) scoreDocument(doc Document, question string, terms []string) int {
	score := 0

	for _, keyword := range doc.Keywords {
		kw := strings.ToLower(keyword)

		if strings.Contains(question, kw) {
			score += e.config.ExactPhraseScore
			continue
		}

		for _, term := range terms {
			if strings.Contains(kw, term) || strings.Contains(term, kw) {
				score += e.config.TermScore
			} else if Similar(term, kw, e.config.FuzzyThreshold) {
				score += e.config.FuzzyScore
			}
		}

		// Partial credit for individual keyword words; short words are too
		// noisy to count.
		for _, word := range strings.Fields(kw) {
			if len(word) <= 3 {
				continue
			}
			for _, term := range terms {
				if strings.Contains(term, word) || strings.Contains(word, term) {
					score += e.config.WordScore
					break
				}
			}
		}
	}

	return score
}

// Refresh revalidates the corpus and recomputes the per-category counts.
// Document contents never change; only the aggregates do.
func (e *Engine) Refresh() (Stats, error) {
	stats, err := e.computeStats()
	if err != nil {
		return Stats{}, fmt.Errorf("refresh knowledge base: %w", err)
	}

	e.mu.Lock()
	e.stats = stats
	e.mu.Unlock()

	return stats, nil
}

// Stats returns the aggregates computed by the last refresh.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	categories := make(map[string]int, len(e.stats.Categories))
	for category, count := range e.stats.Categories {
		categories[category] = count
	}

	return Stats{
		Documents:  e.stats.Documents,
		Categories: categories,
	}
}

func (e *Engine) computeStats() (Stats, error) {
	if len(e.docs) == 0 {
		return Stats{}, fmt.Errorf("knowledge base is empty")
	}

	categories := make(map[string]int, 8)
	for i, doc := range e.docs {
		if len(doc.Keywords) == 0 {
			return Stats{}, fmt.Errorf("document %d has no keywords", i)
		}
		if strings.TrimSpace(doc.Content) == "" {
			return Stats{}, fmt.Errorf("document %d has no content", i)
		}
		if doc.Priority < 0 {
			return Stats{}, fmt.Errorf("document %d has negative priority %d", i, doc.Priority)
		}
		categories[doc.Category]++
	}

	return Stats{
		Documents:  len(e.docs),
		Categories: categories,
	}, nil
}
