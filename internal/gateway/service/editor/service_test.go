package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmanim/internal/generation"
	"llmanim/internal/keyword"
	"llmanim/internal/llm"
	"llmanim/internal/types"
	"llmanim/internal/version"
)

// stubGen delegates to the fake LLM collaborators unless a hook is set.
type stubGen struct {
	*generation.LLM

	generate func(ctx context.Context, instruction string) (types.CodeArtifact, error)
	annotate func(ctx context.Context, description string, code types.CodeArtifact) (string, error)
	refine   func(ctx context.Context, old types.CodeArtifact, oldDesc, newDesc string) (types.CodeArtifact, error)
	segment  func(ctx context.Context, code string) (string, error)

	segmentCalls atomic.Int32
}

func (g *stubGen) Generate(ctx context.Context, instruction string) (types.CodeArtifact, error) {
	if g.generate != nil {
		return g.generate(ctx, instruction)
	}
	return g.LLM.Generate(ctx, instruction)
}

func (g *stubGen) Annotate(ctx context.Context, description string, code types.CodeArtifact) (string, error) {
	if g.annotate != nil {
		return g.annotate(ctx, description, code)
	}
	return g.LLM.Annotate(ctx, description, code)
}

func (g *stubGen) RefineCode(ctx context.Context, old types.CodeArtifact, oldDesc, newDesc string) (types.CodeArtifact, error) {
	if g.refine != nil {
		return g.refine(ctx, old, oldDesc, newDesc)
	}
	return g.LLM.RefineCode(ctx, old, oldDesc, newDesc)
}

func (g *stubGen) Segment(ctx context.Context, code string) (string, error) {
	g.segmentCalls.Add(1)
	if g.segment != nil {
		return g.segment(ctx, code)
	}
	return g.LLM.Segment(ctx, code)
}

func newTestService(t *testing.T) (*Service, *stubGen) {
	t.Helper()
	gen := &stubGen{LLM: generation.NewLLM(llm.NewFakeClient(), nil)}
	return New(version.NewStore(), gen), gen
}

func createWithDescription(t *testing.T, s *Service, id, desc string) {
	t.Helper()
	_, err := s.Store().Create(id)
	require.NoError(t, err)
	_, err = s.Store().Update(id, func(st *version.State) { st.Description = desc })
	require.NoError(t, err)
}

func keywordsAt(v version.Version, level int) []string {
	var out []string
	for _, n := range v.KeywordTree.Level(level).Keywords {
		out = append(out, n.Keyword)
	}
	return out
}

func TestInitializeCommitsWholePipeline(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "A fish swimming in the ocean")

	v, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)

	assert.Contains(t, v.Code.HTML, `id="fish"`)
	assert.Equal(t, v.Code, v.SavedOldCode)
	assert.Contains(t, v.Description, "[fish]{")
	assert.Equal(t, v.Description, v.SavedDescription)
	assert.Equal(t, v.Description, v.LatestDescriptionText)
	assert.Equal(t, []string{"fish", "ocean"}, keywordsAt(v, 1))
	assert.Contains(t, v.KeywordTree.Level(1).Keywords[0].CodeBlock, `id="fish"`)

	require.NotNil(t, v.History)
	assert.Equal(t, "A fish swimming in the ocean", v.History.Description)

	got, _ := s.Store().Get("v1")
	assert.False(t, got.Loading)
}

func TestInitializeFailureWritesNothing(t *testing.T) {
	s, gen := newTestService(t)
	gen.annotate = func(context.Context, string, types.CodeArtifact) (string, error) {
		return "", errors.New("model down")
	}
	createWithDescription(t, s, "v1", "A fish")

	_, err := s.Initialize(context.Background(), "v1")
	require.Error(t, err)

	v, _ := s.Store().Get("v1")
	assert.Equal(t, "A fish", v.Description)
	assert.True(t, v.Code.IsEmpty())
	assert.False(t, v.Loading)
}

func TestInitializeKeepsResultWhenSegmentationUnusable(t *testing.T) {
	s, gen := newTestService(t)
	gen.segment = func(context.Context, string) (string, error) { return "one $$$ two", nil }
	createWithDescription(t, s, "v1", "A fish swimming in the ocean")

	v, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)
	assert.NotEmpty(t, v.Code.HTML)
	for _, n := range v.KeywordTree.Level(1).Keywords {
		assert.Empty(t, n.CodeBlock)
	}

	_, err = s.Segment(context.Background(), "v1")
	assert.ErrorIs(t, err, ErrUnusableSegmentation)
}

func TestStaleInitializeIsDiscarded(t *testing.T) {
	s, gen := newTestService(t)
	createWithDescription(t, s, "v1", "A fish")

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	gen.generate = func(_ context.Context, _ string) (types.CodeArtifact, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return types.CodeArtifact{HTML: "<p>old</p>"}, nil
		}
		return types.CodeArtifact{HTML: "<p>new</p>"}, nil
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Initialize(context.Background(), "v1")
	}()
	<-started

	_, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, firstErr, version.ErrStale)
	v, _ := s.Store().Get("v1")
	assert.Equal(t, "<p>new</p>", v.Code.HTML)
	assert.False(t, v.Loading)
}

func TestUpdateRefinesFromSavedPair(t *testing.T) {
	s, gen := newTestService(t)
	createWithDescription(t, s, "v1", "A fish swimming in the ocean")
	first, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)

	var gotOld types.CodeArtifact
	var gotOldDesc, gotNewDesc string
	gen.refine = func(_ context.Context, old types.CodeArtifact, oldDesc, newDesc string) (types.CodeArtifact, error) {
		gotOld, gotOldDesc, gotNewDesc = old, oldDesc, newDesc
		return types.CodeArtifact{HTML: old.HTML + "\n<!-- refined -->"}, nil
	}
	edited := first.Description + " at night"
	_, err = s.Store().Update("v1", func(st *version.State) { st.Description = edited })
	require.NoError(t, err)

	v, err := s.Update(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, first.Code, gotOld)
	assert.Equal(t, first.Description, gotOldDesc)
	assert.Equal(t, edited, gotNewDesc)
	assert.Contains(t, v.Code.HTML, "refined")
	assert.Equal(t, v.Description, v.SavedDescription)

	undone, restored, err := s.Store().Undo("v1")
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, edited, undone.Description)
}

func TestExtendInsertsSiblings(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "a fish")

	out, err := s.Extend(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "v1 extended 1", out[0].ID)
	assert.Len(t, s.Store().List(), 5)

	v, _ := s.Store().Get("v1")
	assert.False(t, v.Loading)
}

func TestSegmentUsesCache(t *testing.T) {
	s, gen := newTestService(t)
	createWithDescription(t, s, "v1", "A fish")

	_, err := s.Segment(context.Background(), "v1")
	assert.ErrorIs(t, err, ErrNoCode)

	_, err = s.Initialize(context.Background(), "v1")
	require.NoError(t, err)
	require.EqualValues(t, 1, gen.segmentCalls.Load())

	_, err = s.Segment(context.Background(), "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen.segmentCalls.Load())
}

func TestSegmentSkipsLinkWhenCodeReplaced(t *testing.T) {
	s, gen := newTestService(t)
	createWithDescription(t, s, "v1", "A fish")
	_, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)
	_, err = s.SetCode("v1", types.CodeArtifact{HTML: "<p>fish one</p>"})
	require.NoError(t, err)

	gen.segment = func(context.Context, string) (string, error) {
		_, err := s.SetCode("v1", types.CodeArtifact{HTML: "<p>fish two</p>"})
		require.NoError(t, err)
		return "fish a1 @@@ fish a2 $$$ fish b1 @@@ fish b2 $$$ fish c1 @@@ fish c2 $$$ fish d1 @@@ fish d2", nil
	}
	v, err := s.Segment(context.Background(), "v1")
	require.NoError(t, err)

	assert.Equal(t, "<p>fish two</p>", v.Code.HTML)
	for _, n := range v.KeywordTree.Level(1).Keywords {
		assert.NotContains(t, n.CodeBlock, "fish a1")
	}
	assert.False(t, v.Loading)
}

func TestInitializeSurvivesSaveDuringCall(t *testing.T) {
	s, gen := newTestService(t)
	v, err := s.Store().Create("")
	require.NoError(t, err)
	gen.generate = func(ctx context.Context, instruction string) (types.CodeArtifact, error) {
		_, err := s.Store().Save(v.ID, "named")
		require.NoError(t, err)
		return gen.LLM.Generate(ctx, instruction)
	}

	_, err = s.Initialize(context.Background(), v.ID)
	require.NoError(t, err)

	got, ok := s.Store().Get("named")
	require.True(t, ok)
	assert.False(t, got.Loading)
	assert.NotEmpty(t, got.Code.HTML)
}

func TestSelectWordAndLines(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "A fish swimming in the ocean")
	_, err := s.Initialize(context.Background(), "v1")
	require.NoError(t, err)

	v, err := s.SelectWord("v1", "Fishs", true)
	require.NoError(t, err)
	assert.Equal(t, "fish", v.WordSelected)
	require.Len(t, v.PiecesToHighlightLevel1, 1)

	lines, err := s.Lines("v1")
	require.NoError(t, err)
	for _, l := range lines {
		assert.False(t, l.Level1, "highlighting is off")
	}

	_, err = s.SetHighlight("v1", true)
	require.NoError(t, err)
	lines, err = s.Lines("v1")
	require.NoError(t, err)
	var marked int
	for _, l := range lines {
		if l.Level1 {
			marked++
		}
	}
	assert.Positive(t, marked)
}

func TestRenderEditCommit(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "A [fish]{orange} in the [ocean]{blue}")
	_, err := s.Store().Update("v1", func(st *version.State) { st.ShowDetails["fish"] = true })
	require.NoError(t, err)

	d, err := s.Render("v1")
	require.NoError(t, err)
	assert.Equal(t, "A [fish]{orange} in the [ocean]", d.Plain)

	v, err := s.Edit("v1", "A big [fish]{orange} in the [ocean]", "")
	require.NoError(t, err)
	assert.Equal(t, "A big [fish]{orange} in the [ocean]", v.LatestText)
	assert.Equal(t, "A big [fish]{orange} in the [ocean]{blue}", v.LatestDescriptionText)
	assert.Equal(t, "A [fish]{orange} in the [ocean]{blue}", v.Description)

	v, err = s.Commit("v1", "", `<span data-word="fish">[fish]</span>{orange} in the <span data-word="ocean">[ocean]</span>`)
	require.NoError(t, err)
	assert.Equal(t, "[fish]{orange} in the [ocean]{blue}", v.Description)
	assert.Equal(t, []string{"fish", "ocean"}, keywordsAt(v, 1))
}

func TestToggleDetailsCommitsPendingText(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "A [fish]{orange}")
	_, err := s.Render("v1")
	require.NoError(t, err)
	_, err = s.Edit("v1", "Two [fish] ", "")
	require.NoError(t, err)

	v, err := s.ToggleDetails("v1", "fish")
	require.NoError(t, err)
	assert.True(t, v.ShowDetails["fish"])
	assert.Equal(t, "Two [fish]{orange} ", v.Description)

	v, err = s.ToggleDetails("v1", "fish")
	require.NoError(t, err)
	assert.False(t, v.ShowDetails["fish"])
}

func TestToggleDetailsUsesTreeKeyword(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "a [ fish ]{blue}")
	trees := keyword.FromDescription("a [ fish ]{blue}")
	require.Equal(t, "fish", trees.Level(1).Keywords[0].Keyword)

	_, err := s.ToggleDetails("v1", trees.Level(1).Keywords[0].Keyword)
	require.NoError(t, err)
	d, err := s.Render("v1")
	require.NoError(t, err)
	assert.Equal(t, "a [ fish ]{blue}", d.Plain)
}

func TestParamsLifecycle(t *testing.T) {
	s, _ := newTestService(t)
	createWithDescription(t, s, "v1", "A [fish]{orange circle} on a [sea]{blue rect}")

	v, err := s.ParseParams(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"orange circle", "blue rect"}, v.SpecificParamList)

	v, err = s.ToggleParamCheck("v1")
	require.NoError(t, err)
	assert.True(t, v.ParamCheckEnabled)

	v, err = s.RemoveParam("v1", "orange circle")
	require.NoError(t, err)
	assert.Equal(t, "A [fish]{} on a [sea]{blue rect}", v.Description)
	assert.Equal(t, []string{"blue rect"}, v.SpecificParamList)
}

func TestUnknownVersion(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Initialize(context.Background(), "nope")
	assert.ErrorIs(t, err, version.ErrNotFound)
	_, err = s.Lines("nope")
	assert.ErrorIs(t, err, version.ErrNotFound)
	_, err = s.Render("nope")
	assert.ErrorIs(t, err, version.ErrNotFound)
}
