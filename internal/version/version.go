// Package version keeps the keyed collection of independent description/code
// working sets and their one-level undo snapshots.
package version

import (
	"maps"
	"strings"

	"llmanim/internal/keyword"
	"llmanim/internal/types"
)

// UnsavedPrefix marks a version that still waits for a user-supplied name.
const UnsavedPrefix = "unsaved-"

// State is every field of a version except its id and history.
type State struct {
	Description      string             `json:"description"`
	SavedDescription string             `json:"savedDescription"`
	SavedOldCode     types.CodeArtifact `json:"savedOldCode"`
	Code             types.CodeArtifact `json:"code"`
	KeywordTree      keyword.Trees      `json:"keywordTree"`
	WordSelected     string             `json:"wordSelected"`
	HighlightEnabled bool               `json:"highlightEnabled"`
	Loading          bool               `json:"loading"`

	PiecesToHighlightLevel1 []string `json:"piecesToHighlightLevel1"`
	PiecesToHighlightLevel2 []string `json:"piecesToHighlightLevel2"`

	ShowDetails           map[string]bool `json:"showDetails"`
	LatestText            string          `json:"latestText"`
	LatestDescriptionText string          `json:"latestDescriptionText"`
	HiddenInfo            []string        `json:"hiddenInfo"`

	SpecificParamList []string `json:"specificParamList"`
	ParamCheckEnabled bool     `json:"paramCheckEnabled"`
}

// Version is one addressable working set.
type Version struct {
	ID string `json:"id"`
	State
	History *State `json:"history,omitempty"`
}

// NewState returns the empty state of a freshly created version.
func NewState() State {
	return State{
		KeywordTree:             keyword.FromDescription(""),
		PiecesToHighlightLevel1: []string{},
		PiecesToHighlightLevel2: []string{},
		ShowDetails:             map[string]bool{},
		HiddenInfo:              []string{},
		SpecificParamList:       []string{},
	}
}

// StateFromDescription returns an empty state holding description and its
// keyword trees.
func StateFromDescription(description string) State {
	s := NewState()
	s.Description = description
	s.LatestDescriptionText = description
	s.KeywordTree = keyword.FromDescription(description)
	return s
}

// Clone deep-copies the state.
func (s State) Clone() State {
	out := s
	out.KeywordTree = s.KeywordTree.Clone()
	out.PiecesToHighlightLevel1 = cloneStrings(s.PiecesToHighlightLevel1)
	out.PiecesToHighlightLevel2 = cloneStrings(s.PiecesToHighlightLevel2)
	out.HiddenInfo = cloneStrings(s.HiddenInfo)
	out.SpecificParamList = cloneStrings(s.SpecificParamList)
	if s.ShowDetails != nil {
		out.ShowDetails = maps.Clone(s.ShowDetails)
	}
	return out
}

// Clone deep-copies the version including its snapshot.
func (v Version) Clone() Version {
	out := Version{ID: v.ID, State: v.State.Clone()}
	if v.History != nil {
		h := v.History.Clone()
		out.History = &h
	}
	return out
}

// Unsaved reports whether the version still carries the sentinel prefix.
func (v Version) Unsaved() bool {
	return IsUnsaved(v.ID)
}

// IsUnsaved reports whether id carries the unsaved sentinel prefix.
func IsUnsaved(id string) bool {
	return strings.HasPrefix(id, UnsavedPrefix)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
