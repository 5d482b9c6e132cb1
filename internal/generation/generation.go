// Package generation holds the external collaborators of the editor: code
// generation, description annotation, code segmentation, prompt expansion and
// parameter extraction. LLM implements all of them over an llm.LLMClient.
package generation

import (
	"context"

	"llmanim/internal/types"
)

type CodeGenerator interface {
	// Generate writes code for a natural-language instruction.
	Generate(ctx context.Context, instruction string) (types.CodeArtifact, error)
	// RefineCode rewrites oldCode, written for oldDescription, to match newDescription.
	RefineCode(ctx context.Context, oldCode types.CodeArtifact, oldDescription, newDescription string) (types.CodeArtifact, error)
}

type DescriptionAnnotator interface {
	// Annotate inserts [entity]{detail} markup into a plain description.
	Annotate(ctx context.Context, description string, code types.CodeArtifact) (string, error)
	// RefineDescription adjusts existing markup to fit code.
	RefineDescription(ctx context.Context, description string, code types.CodeArtifact) (string, error)
}

type CodeSegmentGenerator interface {
	// Segment returns code with $$$ and @@@ delimiters inserted.
	Segment(ctx context.Context, code string) (string, error)
}

type PromptExpander interface {
	// Expand returns more detailed variants of description.
	Expand(ctx context.Context, description string) ([]string, error)
}

type ParamExtractor interface {
	// Extract returns the description pieces that name concrete code details.
	Extract(ctx context.Context, description string) ([]string, error)
}

// Collaborators bundles every capability the editor depends on.
type Collaborators interface {
	CodeGenerator
	DescriptionAnnotator
	CodeSegmentGenerator
	PromptExpander
	ParamExtractor
}
