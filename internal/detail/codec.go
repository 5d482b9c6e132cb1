// Package detail converts between full annotated descriptions and the display
// form in which per-entity details may be hidden, and restores hidden details
// after the display form was edited.
package detail

import (
	"html"
	"regexp"
	"strings"
)

var (
	markupPattern = regexp.MustCompile(`\[([^\[\]]*)\]\{([^{}]*)\}`)
	markerPattern = regexp.MustCompile(`\[[^\[\]]*\]`)
	leadingDetail = regexp.MustCompile(`^\{[^{}]*\}`)
)

// Class names and attributes of the HTML display form.
const (
	WordAttr      = "data-word"
	MarkerClass   = "entity"
	DetailClass   = "detail"
	ContainerNode = "span"
)

// Display is the rendered description.
type Display struct {
	// Plain keeps markers as [X] and visible details as {Y}.
	Plain string `json:"plain"`
	// HTML wraps each marker in a clickable span carrying data-word.
	HTML string `json:"html"`
	// Hidden lists every detail in appearance order, visible or not.
	Hidden []string `json:"hiddenInfo"`
}

// Render replaces every [X]{Y} with a marker for X, followed by {Y} only when
// show[X] is true. Visibility and data-word use X trimmed, the keyword the
// trees hold; the marker keeps X as written. Every Y is recorded in Hidden.
func Render(text string, show map[string]bool) Display {
	var plain, markup strings.Builder
	hidden := []string{}
	last := 0
	for _, loc := range markupPattern.FindAllStringSubmatchIndex(text, -1) {
		before := text[last:loc[0]]
		plain.WriteString(before)
		markup.WriteString(html.EscapeString(before))

		word := text[loc[2]:loc[3]]
		key := strings.TrimSpace(word)
		d := text[loc[4]:loc[5]]
		hidden = append(hidden, d)

		plain.WriteString("[" + word + "]")
		markup.WriteString(`<span class="` + MarkerClass + `" ` + WordAttr + `="` + html.EscapeString(key) + `">[` + html.EscapeString(word) + `]</span>`)
		if show[key] {
			plain.WriteString("{" + d + "}")
			markup.WriteString(`<span class="` + DetailClass + `">{` + html.EscapeString(d) + `}</span>`)
		}
		last = loc[1]
	}
	rest := text[last:]
	plain.WriteString(rest)
	markup.WriteString(html.EscapeString(rest))
	return Display{Plain: plain.String(), HTML: markup.String(), Hidden: hidden}
}

// AllVisible returns a visibility map showing every entity of text.
func AllVisible(text string) map[string]bool {
	show := map[string]bool{}
	for _, m := range markupPattern.FindAllStringSubmatch(text, -1) {
		show[strings.TrimSpace(m[1])] = true
	}
	return show
}

// Restore reattaches hidden details to plain display text. Each [X] marker not
// immediately followed by {...} takes the next unconsumed entry of hidden;
// markers that carry a visible detail keep it and only advance the pointer.
//
// Consumption is positional: deleting or reordering markers shifts which
// detail lands on which entity.
func Restore(text string, hidden []string) string {
	var b strings.Builder
	next := 0
	pos := 0
	for {
		loc := markerPattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		end := pos + loc[1]
		b.WriteString(text[pos:end])
		pos = end
		if m := leadingDetail.FindStringIndex(text[end:]); m != nil {
			// a visible detail is trusted as is; markers inside it are not scanned
			b.WriteString(text[end : end+m[1]])
			pos = end + m[1]
			next++
			continue
		}
		if next < len(hidden) {
			b.WriteString("{" + hidden[next] + "}")
		}
		next++
	}
	b.WriteString(text[pos:])
	return b.String()
}
