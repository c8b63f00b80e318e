package knowledge

import "strings"

// synonyms maps a canonical support term to its alternate spellings and
// phrasings. Matching either side of an entry expands the query to the
// canonical term plus every alternate.
var synonyms = map[string][]string{
	"install":   {"setup", "installation", "installing", "configure", "onboard"},
	"price":     {"pricing", "cost", "costs", "plan", "plans", "subscription"},
	"login":     {"log-in", "signin", "sign-in", "password", "credentials"},
	"account":   {"profile", "membership", "workspace"},
	"truck":     {"trucks", "vehicle", "vehicles", "rig", "tractor"},
	"load":      {"loads", "shipment", "shipments", "freight", "cargo"},
	"driver":    {"drivers", "carrier", "carriers", "operator"},
	"track":     {"tracking", "locate", "location", "gps", "eta"},
	"api":       {"integration", "integrations", "webhook", "webhooks", "endpoint"},
	"error":     {"errors", "bug", "issue", "problem", "broken", "crash"},
	"export":    {"download", "csv", "report", "reports"},
	"invoice":   {"invoices", "billing", "receipt", "charge"},
	"cancel":    {"cancellation", "unsubscribe", "terminate", "downgrade"},
	"help":      {"support", "assistance", "contact"},
	"secure":    {"security", "encryption", "privacy", "compliance"},
	"dispatch":  {"dispatching", "assign", "assignment", "schedule"},
}

// termIndex maps every canonical term and alternate back to its canonical
// key so expansion is a single lookup per token.
var termIndex = buildTermIndex()

func buildTermIndex() map[string]string {
	index := make(map[string]string, len(synonyms)*4)
	for canonical, alternates := range synonyms {
		index[canonical] = canonical
		for _, alt := range alternates {
			index[alt] = canonical
		}
	}
	return index
}

// ExpandQuery lower-cases and tokenizes a question, then widens the token
// set through the synonym table. Every original token is kept; a token that
// matches a synonym entry pulls in the canonical term and all alternates.
// The result is deduplicated and ordered by first appearance, so repeated
// calls expand identically.
func ExpandQuery(question string) []string {
	tokens := strings.Fields(strings.ToLower(question))

	terms := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, token := range tokens {
		add(token)

		canonical, ok := termIndex[token]
		if !ok {
			continue
		}
		add(canonical)
		for _, alt := range synonyms[canonical] {
			add(alt)
		}
	}

	return terms
}
