// Package editor runs the description/code workflows of a version: the
// generation round-trips, detail visibility, committing edits and keyword
// highlighting.
package editor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"llmanim/internal/annotation"
	"llmanim/internal/detail"
	"llmanim/internal/generation"
	"llmanim/internal/highlight"
	"llmanim/internal/keyword"
	"llmanim/internal/segment"
	"llmanim/internal/types"
	"llmanim/internal/version"
)

// ErrUnusableSegmentation is returned when the segmenter answer has fewer
// blocks than its contract requires.
var ErrUnusableSegmentation = errors.New("editor: segmentation below required block counts")

// ErrNoCode is returned when an operation needs html and the version has none.
var ErrNoCode = errors.New("editor: version has no html code")

const defaultSegmentCacheSize = 128

type Service struct {
	store    *version.Store
	gen      generation.Collaborators
	segments *lru.Cache[string, segment.Result]
	log      *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSegmentCacheSize bounds the segmentation cache; n <= 0 keeps the default.
func WithSegmentCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.segments, _ = lru.New[string, segment.Result](n)
		}
	}
}

func New(store *version.Store, gen generation.Collaborators, opts ...Option) *Service {
	s := &Service{store: store, gen: gen, log: zap.NewNop()}
	s.segments, _ = lru.New[string, segment.Result](defaultSegmentCacheSize)
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("editor")
	return s
}

// Store exposes the version collection for the plain collection operations.
func (s *Service) Store() *version.Store { return s.store }

func (s *Service) get(id string) (version.Version, error) {
	v, ok := s.store.Get(id)
	if !ok {
		return version.Version{}, fmt.Errorf("version %q: %w", id, version.ErrNotFound)
	}
	return v, nil
}

// Initialize generates code from the description, annotates the description
// against it and links the keyword trees to the segmented html. Nothing is
// written unless every required step succeeds.
func (s *Service) Initialize(ctx context.Context, id string) (version.Version, error) {
	v, err := s.get(id)
	if err != nil {
		return version.Version{}, err
	}
	if err := s.store.Snapshot(id); err != nil {
		return version.Version{}, err
	}
	t, err := s.store.Begin(id)
	if err != nil {
		return version.Version{}, err
	}
	defer s.store.Finish(id, t)

	code, err := s.gen.Generate(ctx, v.Description)
	if err != nil {
		return s.fail(id, "generate code", err)
	}
	annotated, err := s.gen.Annotate(ctx, v.Description, code)
	if err != nil {
		return s.fail(id, "annotate description", err)
	}
	trees := s.linkedTrees(ctx, id, annotated, code.HTML)

	return s.store.Complete(id, t, func(st *version.State) {
		st.Code = code
		st.SavedOldCode = code
		setDescription(st, annotated, trees)
		st.SavedDescription = annotated
	})
}

// Update refines the last generated code from the saved pair towards the
// current description, then refines the description to the new code.
func (s *Service) Update(ctx context.Context, id string) (version.Version, error) {
	v, err := s.get(id)
	if err != nil {
		return version.Version{}, err
	}
	if err := s.store.Snapshot(id); err != nil {
		return version.Version{}, err
	}
	t, err := s.store.Begin(id)
	if err != nil {
		return version.Version{}, err
	}
	defer s.store.Finish(id, t)

	code, err := s.gen.RefineCode(ctx, v.SavedOldCode, v.SavedDescription, v.Description)
	if err != nil {
		return s.fail(id, "refine code", err)
	}
	refined, err := s.gen.RefineDescription(ctx, v.Description, code)
	if err != nil {
		return s.fail(id, "refine description", err)
	}
	trees := s.linkedTrees(ctx, id, refined, code.HTML)

	return s.store.Complete(id, t, func(st *version.State) {
		st.Code = code
		st.SavedOldCode = code
		setDescription(st, refined, trees)
		st.SavedDescription = refined
	})
}

// Extend asks for more detailed variants of the description and inserts them
// as sibling versions.
func (s *Service) Extend(ctx context.Context, id string) ([]version.Version, error) {
	v, err := s.get(id)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Begin(id)
	if err != nil {
		return nil, err
	}
	defer s.store.Finish(id, t)

	variants, err := s.gen.Expand(ctx, v.Description)
	if err != nil {
		s.logFailure(id, "expand prompt", err)
		return nil, err
	}
	return s.store.Extend(id, variants)
}

// Segment segments the current html and relinks the keyword trees.
func (s *Service) Segment(ctx context.Context, id string) (version.Version, error) {
	v, err := s.get(id)
	if err != nil {
		return version.Version{}, err
	}
	if strings.TrimSpace(v.Code.HTML) == "" {
		return version.Version{}, fmt.Errorf("segment %q: %w", id, ErrNoCode)
	}
	t, err := s.store.Begin(id)
	if err != nil {
		return version.Version{}, err
	}
	defer s.store.Finish(id, t)

	seg, err := s.segment(ctx, v.Code.HTML)
	if err != nil {
		return s.fail(id, "segment code", err)
	}
	return s.store.Complete(id, t, func(st *version.State) {
		// Code replaced mid-call: the segments describe html that is gone.
		if st.Code.HTML != v.Code.HTML {
			s.log.Warn("code changed during segmentation, trees left as they were",
				zap.String("version", id))
			return
		}
		st.KeywordTree = keyword.Link(st.KeywordTree, seg)
		refreshHighlight(st)
	})
}

// ParseParams extracts the description pieces naming concrete code details.
func (s *Service) ParseParams(ctx context.Context, id string) (version.Version, error) {
	v, err := s.get(id)
	if err != nil {
		return version.Version{}, err
	}
	if err := s.store.Snapshot(id); err != nil {
		return version.Version{}, err
	}
	t, err := s.store.Begin(id)
	if err != nil {
		return version.Version{}, err
	}
	defer s.store.Finish(id, t)

	params, err := s.gen.Extract(ctx, v.Description)
	if err != nil {
		return s.fail(id, "extract params", err)
	}
	if params == nil {
		params = []string{}
	}
	return s.store.Complete(id, t, func(st *version.State) {
		st.SpecificParamList = params
	})
}

// SelectWord records the selected keyword and its highlight lists. With
// normalize the word is uncapitalized and a trailing "s" dropped first.
func (s *Service) SelectWord(id, word string, normalize bool) (version.Version, error) {
	if normalize {
		word = highlight.NormalizeSelection(word)
	}
	return s.store.Update(id, func(st *version.State) {
		st.WordSelected = word
		refreshHighlight(st)
	})
}

func (s *Service) SetHighlight(id string, enabled bool) (version.Version, error) {
	return s.store.Update(id, func(st *version.State) {
		st.HighlightEnabled = enabled
	})
}

// ToggleDetails flips the visibility of entity's detail and commits the
// pending edited text, if any, as the description.
func (s *Service) ToggleDetails(id, entity string) (version.Version, error) {
	entity = strings.TrimSpace(entity)
	return s.store.Update(id, func(st *version.State) {
		if st.ShowDetails == nil {
			st.ShowDetails = map[string]bool{}
		}
		st.ShowDetails[entity] = !st.ShowDetails[entity]
		if st.LatestDescriptionText != "" {
			pending := annotation.NormalizeBraces(st.LatestDescriptionText)
			setDescription(st, pending, s.relinkCached(pending, st.Code.HTML))
		}
	})
}

// Render produces the display form of the description and records its
// details as the hidden info used to restore edits.
func (s *Service) Render(id string) (detail.Display, error) {
	var d detail.Display
	_, err := s.store.Update(id, func(st *version.State) {
		d = detail.Render(st.Description, st.ShowDetails)
		st.HiddenInfo = d.Hidden
	})
	return d, err
}

// Edit records user-edited display text. html, when non-empty, is reduced to
// plain text first. Hidden details are restored by position.
func (s *Service) Edit(id, text, html string) (version.Version, error) {
	plain, err := plainText(text, html)
	if err != nil {
		return version.Version{}, err
	}
	return s.store.Update(id, func(st *version.State) {
		st.LatestText = plain
		st.LatestDescriptionText = annotation.NormalizeBraces(detail.Restore(plain, st.HiddenInfo))
	})
}

// Commit is Edit followed by making the restored text the description.
func (s *Service) Commit(id, text, html string) (version.Version, error) {
	plain, err := plainText(text, html)
	if err != nil {
		return version.Version{}, err
	}
	return s.store.Update(id, func(st *version.State) {
		restored := annotation.NormalizeBraces(detail.Restore(plain, st.HiddenInfo))
		st.LatestText = plain
		setDescription(st, restored, s.relinkCached(restored, st.Code.HTML))
	})
}

// SetCode replaces the code as edited in the code editor.
func (s *Service) SetCode(id string, code types.CodeArtifact) (version.Version, error) {
	return s.store.Update(id, func(st *version.State) {
		st.Code = code
	})
}

func (s *Service) ToggleParamCheck(id string) (version.Version, error) {
	return s.store.Update(id, func(st *version.State) {
		st.ParamCheckEnabled = !st.ParamCheckEnabled
	})
}

// RemoveParam deletes the first occurrence of param from the description and
// from the extracted list.
func (s *Service) RemoveParam(id, param string) (version.Version, error) {
	return s.store.Update(id, func(st *version.State) {
		desc := strings.Replace(st.Description, param, "", 1)
		setDescription(st, desc, s.relinkCached(desc, st.Code.HTML))
		for i, p := range st.SpecificParamList {
			if p == param {
				st.SpecificParamList = append(st.SpecificParamList[:i:i], st.SpecificParamList[i+1:]...)
				break
			}
		}
	})
}

// Lines marks every html line for the current selection. It is all unmarked
// when highlighting is off or nothing is selected.
func (s *Service) Lines(id string) ([]highlight.LineMark, error) {
	v, err := s.get(id)
	if err != nil {
		return nil, err
	}
	set := highlight.Set{Level1: v.PiecesToHighlightLevel1, Level2: v.PiecesToHighlightLevel2}
	if !v.HighlightEnabled || v.WordSelected == "" {
		set = highlight.Set{}
	}
	return highlight.Mark(v.Code.HTML, v.WordSelected, set), nil
}

// linkedTrees builds the trees of description and links them against the
// segmented html. Segmentation failures leave the trees unlinked; Segment
// can be retried on its own.
func (s *Service) linkedTrees(ctx context.Context, id, description, html string) keyword.Trees {
	trees := keyword.FromDescription(description)
	if strings.TrimSpace(html) == "" {
		return trees
	}
	seg, err := s.segment(ctx, html)
	if err != nil {
		s.log.Warn("keyword trees left unlinked", zap.String("version", id), zap.Error(err))
		return trees
	}
	return keyword.Link(trees, seg)
}

// relinkCached builds the trees of description, linked when a segmentation
// of html is already cached.
func (s *Service) relinkCached(description, html string) keyword.Trees {
	trees := keyword.FromDescription(description)
	if seg, ok := s.segments.Get(cacheKey(html)); ok {
		return keyword.Link(trees, seg)
	}
	return trees
}

func (s *Service) segment(ctx context.Context, html string) (segment.Result, error) {
	key := cacheKey(html)
	if seg, ok := s.segments.Get(key); ok {
		return seg, nil
	}
	raw, err := s.gen.Segment(ctx, html)
	if err != nil {
		return segment.Result{}, err
	}
	seg := segment.Parse(raw)
	if !seg.Usable() {
		return segment.Result{}, fmt.Errorf("%w: got %d outer and %d inner blocks",
			ErrUnusableSegmentation, len(seg.Level1), len(seg.FlatLevel2()))
	}
	s.segments.Add(key, seg)
	return seg, nil
}

func (s *Service) fail(id, step string, err error) (version.Version, error) {
	s.logFailure(id, step, err)
	return version.Version{}, fmt.Errorf("%s: %w", step, err)
}

func (s *Service) logFailure(id, step string, err error) {
	s.log.Error("collaborator call failed",
		zap.String("version", id),
		zap.String("step", step),
		zap.Error(err))
}

func setDescription(st *version.State, description string, trees keyword.Trees) {
	st.Description = description
	st.LatestDescriptionText = description
	st.KeywordTree = trees
	refreshHighlight(st)
}

func refreshHighlight(st *version.State) {
	set := highlight.Select(st.KeywordTree, st.WordSelected)
	st.PiecesToHighlightLevel1 = set.Level1
	st.PiecesToHighlightLevel2 = set.Level2
}

func plainText(text, html string) (string, error) {
	if html == "" {
		return text, nil
	}
	plain, err := detail.PlainText(html)
	if err != nil {
		return "", fmt.Errorf("reduce html: %w", err)
	}
	return plain, nil
}

func cacheKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
