package knowledge

// Document is one knowledge-base entry: a block of support content tagged
// with the keyword phrases that should surface it. Documents are compiled in
// and never mutated after process start.
type Document struct {
	Keywords []string
	Content  string
	Category string
	Priority int
}

// ScoredMatch is the transient result of scoring one document against one
// query. It exists only for the duration of a single Retrieve call.
type ScoredMatch struct {
	Content  string
	Score    int
	Priority int
}

// Stats describes the corpus as of the last refresh.
type Stats struct {
	Documents  int            `json:"documents"`
	Categories map[string]int `json:"categories"`
}

// EngineConfig holds the retrieval scoring weights and limits. These are
// tunables rather than business rules; the defaults reproduce the shipped
// ranking behavior.
type EngineConfig struct {
	// ExactPhraseScore is awarded when the question contains a keyword
	// phrase verbatim. It short-circuits the other signals for that keyword.
	ExactPhraseScore int `yaml:"exact_phrase_score"`

	// TermScore is awarded per expanded query term that contains, or is
	// contained by, a keyword.
	TermScore int `yaml:"term_score"`

	// FuzzyScore is awarded per expanded query term within FuzzyThreshold
	// edits of a keyword when no substring relation holds.
	FuzzyScore int `yaml:"fuzzy_score"`

	// WordScore is awarded once per keyword word (longer than three
	// characters) that has a substring relation with any expanded term.
	WordScore int `yaml:"word_score"`

	// MinScore is the relevance threshold; documents scoring below it are
	// dropped even when they matched something.
	MinScore int `yaml:"min_score"`

	// TopN caps how many document contents Retrieve returns.
	TopN int `yaml:"top_n"`

	// FuzzyThreshold is the maximum edit distance Similar tolerates.
	FuzzyThreshold int `yaml:"fuzzy_threshold"`
}

// DefaultEngineConfig returns the shipped scoring defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ExactPhraseScore: 15,
		TermScore:        10,
		FuzzyScore:       5,
		WordScore:        3,
		MinScore:         10,
		TopN:             3,
		FuzzyThreshold:   2,
	}
}
