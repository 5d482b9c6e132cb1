// Package highlight resolves which code is highlighted for a selected keyword
// and which rendered source lines receive level-1 or level-2 styling.
package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"llmanim/internal/keyword"
)

// Window is how many lines on either side of a match make a line a candidate.
const Window = 5

// Set is the code text currently eligible for highlighting.
type Set struct {
	Level1 []string `json:"piecesToHighlightLevel1"`
	Level2 []string `json:"piecesToHighlightLevel2"`
}

// Select collects the code blocks of nodes whose keyword equals word exactly.
func Select(ts keyword.Trees, word string) Set {
	set := Set{Level1: []string{}, Level2: []string{}}
	if word == "" {
		return set
	}
	for _, tr := range ts {
		for _, n := range tr.Keywords {
			if n.Keyword != word {
				continue
			}
			switch tr.Level {
			case keyword.LevelEntity:
				set.Level1 = append(set.Level1, n.CodeBlock)
			case keyword.LevelDetail:
				set.Level2 = append(set.Level2, n.CodeBlock)
			}
		}
	}
	return set
}

// Eligible reports whether a line has content beyond punctuation that carries
// no meaning on its own.
func Eligible(line string) bool {
	return stripMeaningless(line) != ""
}

func stripMeaningless(line string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '(', ')', '@', '#', '$', ' ', '\t', '\r', '\n', '\v', '\f':
			return -1
		}
		return r
	}, line)
}

// Candidate reports whether lines[idx] is eligible and it, or any line within
// Window lines of it, contains word.
func Candidate(lines []string, idx int, word string) bool {
	if word == "" || idx < 0 || idx >= len(lines) || !Eligible(lines[idx]) {
		return false
	}
	lo := max(0, idx-Window)
	hi := min(len(lines)-1, idx+Window)
	for i := lo; i <= hi; i++ {
		if strings.Contains(lines[i], word) {
			return true
		}
	}
	return false
}

// LineMark is the styling decision for one rendered line.
type LineMark struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Level1 bool   `json:"level1"`
	Level2 bool   `json:"level2"`
}

// Mark applies the candidate rule and the set membership rule to every line
// of code. A candidate gets level-1 styling when its trimmed text is a
// substring of any level-1 piece, and level-2 styling independently.
func Mark(code, word string, set Set) []LineMark {
	lines := strings.Split(code, "\n")
	marks := make([]LineMark, len(lines))
	for i, line := range lines {
		marks[i] = LineMark{Index: i, Text: line}
		if !Candidate(lines, i, word) {
			continue
		}
		text := strings.TrimSpace(line)
		marks[i].Level1 = containedIn(text, set.Level1)
		marks[i].Level2 = containedIn(text, set.Level2)
	}
	return marks
}

func containedIn(text string, pieces []string) bool {
	for _, p := range pieces {
		if strings.Contains(p, text) {
			return true
		}
	}
	return false
}

// NormalizeSelection lowercases the first letter of a double-clicked word and
// drops one trailing "s", so "Fishes" selects "fishe" and "Trees" selects "tree".
func NormalizeSelection(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	word = string(unicode.ToLower(r)) + word[size:]
	return strings.TrimSuffix(word, "s")
}
