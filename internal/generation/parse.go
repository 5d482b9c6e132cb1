package generation

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"llmanim/internal/annotation"
	"llmanim/internal/types"
)

// Separator divides variants in expander and extractor answers.
const Separator = "///"

var inlineFence = map[string]*regexp.Regexp{
	"html": regexp.MustCompile("(?s)```html(.*?)```"),
	"css":  regexp.MustCompile("(?s)```css(.*?)```"),
	"js":   regexp.MustCompile("(?s)```js(.*?)```"),
}

// ParseCode extracts the html, css and js fences of a model answer. Fenced
// blocks are read from the markdown tree; a language with no proper block
// falls back to the first inline ```lang ...``` span. A missing language
// yields an empty field.
func ParseCode(content string) types.CodeArtifact {
	src := []byte(content)
	found := map[string]string{}

	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := fenceLang(string(fcb.Language(src)))
		if lang == "" {
			return ast.WalkSkipChildren, nil
		}
		if _, seen := found[lang]; seen || !closed(fcb, src) {
			return ast.WalkSkipChildren, nil
		}
		var b strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		found[lang] = strings.TrimSpace(b.String())
		return ast.WalkSkipChildren, nil
	})

	for lang, re := range inlineFence {
		if _, ok := found[lang]; ok {
			continue
		}
		if m := re.FindStringSubmatch(content); m != nil {
			found[lang] = strings.TrimSpace(m[1])
		}
	}
	return types.CodeArtifact{HTML: found["html"], CSS: found["css"], JS: found["js"]}
}

// closed reports whether a bare closing fence follows the block. An unclosed
// block runs to the end of the answer and is left to the inline fallback.
func closed(fcb *ast.FencedCodeBlock, src []byte) bool {
	pos := 0
	if lines := fcb.Lines(); lines.Len() > 0 {
		pos = lines.At(lines.Len() - 1).Stop
	} else if fcb.Info != nil {
		pos = fcb.Info.Segment.Stop
		if nl := bytes.IndexByte(src[pos:], '\n'); nl >= 0 {
			pos += nl + 1
		} else {
			return false
		}
	}
	rest := bytes.TrimLeft(src[pos:], " \t")
	if !bytes.HasPrefix(rest, []byte("```")) {
		return false
	}
	line := rest
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		line = rest[:nl]
	}
	return len(bytes.TrimSpace(bytes.Trim(line, "`"))) == 0
}

func fenceLang(info string) string {
	switch strings.ToLower(strings.TrimSpace(info)) {
	case "html":
		return "html"
	case "css":
		return "css"
	case "js", "javascript":
		return "js"
	}
	return ""
}

// SplitVariants splits an answer on Separator, trims each piece and drops
// empty ones. limit > 0 caps the result.
func SplitVariants(content string, limit int) []string {
	var out []string
	for _, p := range strings.Split(content, Separator) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// cleanDescription strips surrounding whitespace and quotes from an annotator
// answer and normalizes the first "] {".
func cleanDescription(content string) string {
	s := strings.TrimSpace(content)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return annotation.NormalizeBraces(s)
}
