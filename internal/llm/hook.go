package llm

import (
	"context"

	"github.com/google/uuid"
)

// Phases name the prompt kinds sent by the generation layer. FakeClient keys
// its canned answers on them and the logging middleware reports them.
const (
	PhaseGenerateCode      = "generate_code"
	PhaseAnnotate          = "annotate_description"
	PhaseRefineCode        = "refine_code"
	PhaseRefineDescription = "refine_description"
	PhaseSegmentCode       = "segment_code"
	PhaseExpandPrompt      = "expand_prompt"
	PhaseExtractParams     = "extract_params"
)

type ctxKeyPhase struct{}
type ctxKeyRequestID struct{}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithRequestID tags ctx with id, generating one when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return s
	}
	return ""
}
