package detail

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is the reduced editor DOM: either a *TextNode or an *ElementNode.
type Node interface {
	isNode()
}

// TextNode is literal text.
type TextNode struct {
	Text string
}

// ElementNode is an element with its data-word attribute (if any), class and
// children.
type ElementNode struct {
	Tag      string
	Word     string
	HasWord  bool
	Class    string
	Children []Node
}

func (*TextNode) isNode()    {}
func (*ElementNode) isNode() {}

// ParseHTML parses an editor HTML fragment in a body context.
func ParseHTML(fragment string) ([]Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse editor html: %w", err)
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if c := convert(n); c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func convert(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &TextNode{Text: n.Data}
	case html.ElementNode:
		el := &ElementNode{Tag: n.Data}
		for _, a := range n.Attr {
			switch a.Key {
			case WordAttr:
				el.Word, el.HasWord = a.Val, true
			case "class":
				el.Class = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cn := convert(c); cn != nil {
				el.Children = append(el.Children, cn)
			}
		}
		if el.Tag == "br" {
			el.Children = []Node{&TextNode{Text: "\n"}}
		}
		return el
	}
	return nil
}

// Text reduces nodes to the plain display form: a data-word element becomes
// [word], everything else contributes its text.
func Text(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *TextNode:
		b.WriteString(v.Text)
	case *ElementNode:
		if v.HasWord {
			b.WriteString("[" + v.Word + "]")
			return
		}
		for _, c := range v.Children {
			writeText(b, c)
		}
	}
}

// PlainText parses an editor HTML fragment and reduces it to plain display text.
func PlainText(fragment string) (string, error) {
	nodes, err := ParseHTML(fragment)
	if err != nil {
		return "", err
	}
	return Text(nodes), nil
}
