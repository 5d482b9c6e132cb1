// Package annotation extracts entities and detail tokens from descriptions
// written with the [entity]{detail} markup.
package annotation

import (
	"regexp"
	"strings"
)

// markupPattern matches one [X]{Y} span. X may not contain brackets and Y may
// not contain braces, so unbalanced markup never matches.
var markupPattern = regexp.MustCompile(`\[([^\[\]]*)\]\{([^{}]*)\}`)

var detailSeparators = regexp.MustCompile(`[\s,()]+`)

// Annotation is one matched [entity]{detail} span.
type Annotation struct {
	Entity string   `json:"entity"`
	Detail string   `json:"detail"`
	Tokens []string `json:"tokens"`
}

// Result is the parse output. Entities and Tokens are sets kept in order of
// first appearance.
type Result struct {
	Annotations []Annotation `json:"annotations"`
	Entities    []string     `json:"entities"`
	Tokens      []string     `json:"tokens"`
}

// Parse scans description for [X]{Y} spans. Malformed spans are skipped.
func Parse(description string) Result {
	var res Result
	seenEntity := map[string]struct{}{}
	seenToken := map[string]struct{}{}

	for _, m := range markupPattern.FindAllStringSubmatch(description, -1) {
		entity := strings.TrimSpace(m[1])
		detail := strings.TrimSpace(m[2])
		tokens := DetailTokens(detail)
		res.Annotations = append(res.Annotations, Annotation{Entity: entity, Detail: detail, Tokens: tokens})

		if _, ok := seenEntity[entity]; !ok && entity != "" {
			seenEntity[entity] = struct{}{}
			res.Entities = append(res.Entities, entity)
		}
		for _, t := range tokens {
			if _, ok := seenToken[t]; ok {
				continue
			}
			seenToken[t] = struct{}{}
			res.Tokens = append(res.Tokens, t)
		}
	}
	return res
}

// DetailTokens splits a detail on whitespace, commas and parentheses and drops
// empty pieces and stopwords. Duplicates within the detail collapse.
func DetailTokens(detail string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, piece := range detailSeparators.Split(detail, -1) {
		piece = strings.TrimSpace(piece)
		if piece == "" || IsStopword(piece) {
			continue
		}
		if _, ok := seen[piece]; ok {
			continue
		}
		seen[piece] = struct{}{}
		out = append(out, piece)
	}
	return out
}

// NormalizeBraces rewrites the first "] {" into "]{", the spacing annotators
// tend to emit between an entity and its detail.
func NormalizeBraces(description string) string {
	return strings.Replace(description, "] {", "]{", 1)
}
