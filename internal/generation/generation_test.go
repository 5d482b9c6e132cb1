package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmanim/internal/llm"
	"llmanim/internal/segment"
)

func TestParseCodeFencedBlocks(t *testing.T) {
	answer := "Code:\n```html\n<svg></svg>\n```\n\n```javascript\nanime({});\n```\nExplanation: done"
	code := ParseCode(answer)
	assert.Equal(t, "<svg></svg>", code.HTML)
	assert.Equal(t, "anime({});", code.JS)
	assert.Empty(t, code.CSS, "a missing language is empty, not an error")
}

func TestParseCodeInlineFallback(t *testing.T) {
	answer := "(Code: ```html <div id=\"a\"></div> ```html, ```css div{} ```css; Explanation: x)"
	code := ParseCode(answer)
	assert.Equal(t, `<div id="a"></div>`, code.HTML)
	assert.Equal(t, "div{}", code.CSS)
	assert.Empty(t, code.JS)
}

func TestParseCodeIgnoresUnclosedFence(t *testing.T) {
	answer := "```html\n<p>one</p>\n```html\ntrailing"
	code := ParseCode(answer)
	assert.Equal(t, "<p>one</p>", code.HTML)
}

func TestParseCodeNoFences(t *testing.T) {
	assert.True(t, ParseCode("no code here").IsEmpty())
}

func TestSplitVariants(t *testing.T) {
	got := SplitVariants(" a \n///\n\n///\nb///c///d///e", 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Nil(t, SplitVariants("  ", 0))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "[a]{x} and [b] {y}", cleanDescription("\"[a] {x} and [b] {y}\"\n"))
}

func TestLLMWithFakeClient(t *testing.T) {
	ctx := context.Background()
	fake := llm.NewFakeClient()
	g := NewLLM(fake, nil)

	code, err := g.Generate(ctx, "a fish swimming in the ocean")
	require.NoError(t, err)
	assert.Contains(t, code.HTML, `id="fish"`)

	desc, err := g.Annotate(ctx, "A fish swimming in the ocean", code)
	require.NoError(t, err)
	assert.Contains(t, desc, "[fish]{")

	seg, err := g.Segment(ctx, code.HTML)
	require.NoError(t, err)
	assert.True(t, segment.Parse(seg).Usable())

	variants, err := g.Expand(ctx, "a fish")
	require.NoError(t, err)
	assert.Len(t, variants, MaxVariants)

	params, err := g.Extract(ctx, desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"orange circle", "blue rect"}, params)

	assert.Equal(t, 1, fake.Calls(llm.PhaseGenerateCode))
	assert.Equal(t, 1, fake.Calls(llm.PhaseSegmentCode))
}

func TestLLMWrapsPhaseInError(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.SetError(llm.PhaseRefineCode, errors.New("down"))
	_, err := NewLLM(fake, nil).RefineCode(context.Background(), ParseCode(""), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), llm.PhaseRefineCode)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, "a\n$$$\nb\n", stripFence("```html\na\n$$$\nb\n```"))
	assert.Equal(t, "plain", stripFence("plain"))
}
