// Package keyword holds the two-level keyword trees derived from an annotated
// description and links their nodes to segmented code.
package keyword

import "llmanim/internal/annotation"

const (
	LevelEntity = 1
	LevelDetail = 2
)

// Node is one keyword and the code text currently linked to it.
type Node struct {
	Keyword       string   `json:"keyword"`
	SubKeywords   []string `json:"subKeywords"`
	Children      []Node   `json:"children"`
	CodeBlock     string   `json:"codeBlock"`
	ParentKeyword string   `json:"parentKeyword,omitempty"`
}

// Tree is the node list of one level.
type Tree struct {
	Level    int    `json:"level"`
	Keywords []Node `json:"keywords"`
}

// Trees is always {level 1, level 2}.
type Trees []Tree

func newNode(keyword string) Node {
	return Node{
		Keyword:     keyword,
		SubKeywords: []string{},
		Children:    []Node{},
	}
}

// Build turns parsed annotations into the entity and detail trees. Detail
// tokens that are also entities stay on level 1 only.
func Build(res annotation.Result) Trees {
	entities := make(map[string]struct{}, len(res.Entities))
	level1 := Tree{Level: LevelEntity, Keywords: make([]Node, 0, len(res.Entities))}
	for _, e := range res.Entities {
		entities[e] = struct{}{}
		level1.Keywords = append(level1.Keywords, newNode(e))
	}

	level2 := Tree{Level: LevelDetail, Keywords: make([]Node, 0, len(res.Tokens))}
	for _, t := range res.Tokens {
		if _, ok := entities[t]; ok {
			continue
		}
		level2.Keywords = append(level2.Keywords, newNode(t))
	}
	return Trees{level1, level2}
}

// FromDescription parses description and builds its trees.
func FromDescription(description string) Trees {
	return Build(annotation.Parse(description))
}

// Level returns the tree for level, or nil when absent.
func (ts Trees) Level(level int) *Tree {
	for i := range ts {
		if ts[i].Level == level {
			return &ts[i]
		}
	}
	return nil
}

// Clone deep-copies the trees.
func (ts Trees) Clone() Trees {
	if ts == nil {
		return nil
	}
	out := make(Trees, len(ts))
	for i, t := range ts {
		out[i] = Tree{Level: t.Level, Keywords: cloneNodes(t.Keywords)}
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if n.SubKeywords != nil {
			out[i].SubKeywords = make([]string, len(n.SubKeywords))
			copy(out[i].SubKeywords, n.SubKeywords)
		}
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}
