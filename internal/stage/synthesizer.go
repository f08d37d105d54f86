package stage

import (
	"context"
	"fmt"

	"github.com/ppiankov/briefly/internal/ledger"
	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
)

// Synthesizer builds the draft brief from the verified claims. The claims
// are relabeled into a fresh local citation space before the interaction;
// the brief may cite only those local ids. No retrieval tools: the
// synthesizer works strictly from its input.
type Synthesizer struct {
	provider llm.Provider
	model    string
}

// NewSynthesizer creates the synthesis stage adapter
func NewSynthesizer(provider llm.Provider, model string) *Synthesizer {
	return &Synthesizer{provider: provider, model: model}
}

// Name returns the stage name
func (s *Synthesizer) Name() string { return "synthesizer" }

// Run executes the synthesis interaction and returns the draft-brief update
func (s *Synthesizer) Run(ctx context.Context, run *model.RunState) (Update, error) {
	if len(run.VerifiedClaims) == 0 {
		return nil, fmt.Errorf("no verified claims to synthesize")
	}

	cited := ledger.Relabel(run.VerifiedClaims)

	prompt, err := serializeJSON(cited)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:    synthesizerPrompt,
		Prompt:    prompt,
		ForceJSON: true,
		Model:     s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	var brief model.Brief
	if err := decodeOutput(resp.Text, &brief); err != nil {
		return nil, err
	}
	if err := brief.Validate(len(cited)); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}

	return &synthesisUpdate{brief: &brief}, nil
}

type synthesisUpdate struct {
	brief *model.Brief
}

func (u *synthesisUpdate) Apply(run *model.RunState) {
	run.DraftBrief = u.brief
}
