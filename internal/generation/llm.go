package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"llmanim/internal/llm"
	"llmanim/internal/types"
)

// MaxVariants is how many prompt variants Expand asks for.
const MaxVariants = 4

// LLM implements Collaborators with one prompt per capability.
type LLM struct {
	client llm.LLMClient
	log    *zap.Logger
}

var _ Collaborators = (*LLM)(nil)

func NewLLM(client llm.LLMClient, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLM{client: client, log: log.Named("generation")}
}

func (g *LLM) ask(ctx context.Context, phase, prompt string) (string, error) {
	out, err := g.client.GenerateText(llm.WithPhase(ctx, phase), prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", phase, err)
	}
	return out, nil
}

func (g *LLM) Generate(ctx context.Context, instruction string) (types.CodeArtifact, error) {
	out, err := g.ask(ctx, llm.PhaseGenerateCode, generatePrompt(instruction))
	if err != nil {
		return types.CodeArtifact{}, err
	}
	code := ParseCode(out)
	if code.IsEmpty() {
		g.log.Warn("answer had no code fences", zap.String("phase", llm.PhaseGenerateCode))
	}
	return code, nil
}

func (g *LLM) RefineCode(ctx context.Context, oldCode types.CodeArtifact, oldDescription, newDescription string) (types.CodeArtifact, error) {
	out, err := g.ask(ctx, llm.PhaseRefineCode, refineCodePrompt(oldCode, oldDescription, newDescription))
	if err != nil {
		return types.CodeArtifact{}, err
	}
	return ParseCode(out), nil
}

func (g *LLM) Annotate(ctx context.Context, description string, code types.CodeArtifact) (string, error) {
	out, err := g.ask(ctx, llm.PhaseAnnotate, annotatePrompt(description, code))
	if err != nil {
		return "", err
	}
	return cleanDescription(out), nil
}

func (g *LLM) RefineDescription(ctx context.Context, description string, code types.CodeArtifact) (string, error) {
	out, err := g.ask(ctx, llm.PhaseRefineDescription, refineDescriptionPrompt(description, code))
	if err != nil {
		return "", err
	}
	return cleanDescription(out), nil
}

func (g *LLM) Segment(ctx context.Context, code string) (string, error) {
	out, err := g.ask(ctx, llm.PhaseSegmentCode, segmentPrompt(code))
	if err != nil {
		return "", err
	}
	return stripFence(out), nil
}

func (g *LLM) Expand(ctx context.Context, description string) ([]string, error) {
	out, err := g.ask(ctx, llm.PhaseExpandPrompt, expandPrompt(description, MaxVariants))
	if err != nil {
		return nil, err
	}
	return SplitVariants(out, MaxVariants), nil
}

func (g *LLM) Extract(ctx context.Context, description string) ([]string, error) {
	out, err := g.ask(ctx, llm.PhaseExtractParams, extractParamsPrompt(description))
	if err != nil {
		return nil, err
	}
	return SplitVariants(out, 0), nil
}

// stripFence unwraps an answer the model put in a single fenced block.
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		return t[nl+1:]
	}
	return s
}
