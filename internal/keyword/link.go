package keyword

import (
	"strings"

	"llmanim/internal/segment"
)

// Link rebuilds every node's CodeBlock from seg. A level-1 node collects every
// level-1 piece containing its keyword case-insensitively, in piece order; a
// level-2 node does the same over all level-2 pieces. Prior code blocks are
// discarded. The trees are modified in place and returned.
func Link(ts Trees, seg segment.Result) Trees {
	level2 := seg.FlatLevel2()
	for i := range ts {
		var pieces []string
		switch ts[i].Level {
		case LevelEntity:
			pieces = seg.Level1
		case LevelDetail:
			pieces = level2
		}
		for j := range ts[i].Keywords {
			n := &ts[i].Keywords[j]
			n.CodeBlock = accumulate(n.Keyword, pieces)
		}
	}
	return ts
}

func accumulate(keyword string, pieces []string) string {
	if keyword == "" {
		return ""
	}
	needle := strings.ToLower(keyword)
	var b strings.Builder
	for _, p := range pieces {
		if strings.Contains(strings.ToLower(p), needle) {
			b.WriteString(p)
		}
	}
	return b.String()
}
