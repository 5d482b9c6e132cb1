package rpc

import (
	"llmanim/internal/detail"
	"llmanim/internal/highlight"
	"llmanim/internal/types"
	"llmanim/internal/version"
)

type Empty struct{}

type IDRequest struct {
	ID string `json:"id" validate:"required"`
}

type CreateRequest struct {
	Name string `json:"name"`
}

type SaveRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type SelectWordRequest struct {
	ID        string `json:"id" validate:"required"`
	Word      string `json:"word"`
	Normalize bool   `json:"normalize"`
}

type SetHighlightRequest struct {
	ID      string `json:"id" validate:"required"`
	Enabled bool   `json:"enabled"`
}

type ToggleDetailsRequest struct {
	ID     string `json:"id" validate:"required"`
	Entity string `json:"entity" validate:"required"`
}

// EditRequest carries the edited description either as plain text or as the
// editor's HTML; HTML wins when both are set.
type EditRequest struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
	HTML string `json:"html"`
}

type SetCodeRequest struct {
	ID   string             `json:"id" validate:"required"`
	Code types.CodeArtifact `json:"code"`
}

type RemoveParamRequest struct {
	ID    string `json:"id" validate:"required"`
	Param string `json:"param" validate:"required"`
}

type VersionResponse struct {
	Version version.Version `json:"version"`
}

type ListResponse struct {
	Versions  []version.Version `json:"versions"`
	CurrentID string            `json:"currentId,omitempty"`
}

type UndoResponse struct {
	Version  version.Version `json:"version"`
	Restored bool            `json:"restored"`
}

type ExtendResponse struct {
	Versions []version.Version `json:"versions"`
}

type RenderResponse struct {
	Display detail.Display `json:"display"`
}

type LinesResponse struct {
	Lines []highlight.LineMark `json:"lines"`
}
