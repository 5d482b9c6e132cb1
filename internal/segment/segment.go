// Package segment parses delimiter-marked code returned by the segmentation
// collaborator into level-1 blocks and their level-2 sub-blocks.
package segment

import "strings"

const (
	// Outer separates level-1 blocks.
	Outer = "$$$"
	// Inner separates level-2 blocks within a level-1 block.
	Inner = "@@@"

	MinLevel1 = 4
	MinLevel2 = 8
)

// Result holds the surviving pieces. Level2[i] belongs to Level1[i].
type Result struct {
	Level1 []string   `json:"level1"`
	Level2 [][]string `json:"level2"`
}

// Parse splits text on Outer, then each piece on Inner, dropping empty and
// delimiter-only pieces at both levels. It never validates counts.
func Parse(text string) Result {
	res := Result{Level1: []string{}, Level2: [][]string{}}
	for _, p1 := range strings.Split(text, Outer) {
		if isNoise(p1) {
			continue
		}
		subs := []string{}
		for _, p2 := range strings.Split(p1, Inner) {
			if isNoise(p2) {
				continue
			}
			subs = append(subs, p2)
		}
		res.Level1 = append(res.Level1, p1)
		res.Level2 = append(res.Level2, subs)
	}
	return res
}

// FlatLevel2 returns every level-2 piece across all level-1 groups in order.
func (r Result) FlatLevel2() []string {
	var out []string
	for _, subs := range r.Level2 {
		out = append(out, subs...)
	}
	return out
}

// Usable reports whether the collaborator contract of at least MinLevel1 outer
// and MinLevel2 inner blocks was met.
func (r Result) Usable() bool {
	return len(r.Level1) >= MinLevel1 && len(r.FlatLevel2()) >= MinLevel2
}

// isNoise reports whether s has nothing left after removing whitespace and
// delimiter characters.
func isNoise(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return strings.Trim(s, "$@ \t\r\n") == ""
}
