package annotation

// stopwords are detail pieces that never become level-2 keywords.
// Matching is exact; capitalized forms are listed where an LLM tends to emit them.
var stopwords = map[string]struct{}{
	// articles
	"a": {}, "an": {}, "the": {}, "A": {}, "An": {}, "The": {},
	// conjunctions
	"and": {}, "or": {}, "but": {}, "nor": {}, "so": {}, "yet": {}, "both": {}, "either": {}, "neither": {},
	"And": {}, "Or": {}, "But": {},
	// prepositions
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "from": {},
	"into": {}, "onto": {}, "over": {}, "under": {}, "between": {}, "through": {}, "across": {},
	"along": {}, "around": {}, "about": {}, "above": {}, "below": {}, "within": {}, "without": {},
	"upon": {}, "via": {}, "per": {}, "as": {}, "than": {},
	"In": {}, "On": {}, "With": {},
	// auxiliaries and pronouns that carry no code meaning
	"is": {}, "are": {}, "be": {}, "each": {}, "its": {}, "it": {}, "that": {}, "which": {},
}

// IsStopword reports whether word is excluded from detail tokens.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
