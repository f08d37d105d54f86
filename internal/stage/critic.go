package stage

import (
	"context"
	"fmt"

	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
)

// Critic judges the draft brief against the original topic and produces the
// score the quality gate routes on. Its update is the only place the
// revision counter advances.
type Critic struct {
	provider llm.Provider
	model    string
}

// NewCritic creates the critique stage adapter
func NewCritic(provider llm.Provider, model string) *Critic {
	return &Critic{provider: provider, model: model}
}

// Name returns the stage name
func (s *Critic) Name() string { return "critic" }

// Run executes the critique interaction and returns the critique update
func (s *Critic) Run(ctx context.Context, run *model.RunState) (Update, error) {
	if run.DraftBrief == nil {
		return nil, fmt.Errorf("run context has no draft brief")
	}

	prompt, err := serializeJSON(run.DraftBrief)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:    fmt.Sprintf(criticPrompt, run.Topic),
		Prompt:    prompt,
		ForceJSON: true,
		Model:     s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	var critique model.Critique
	if err := decodeOutput(resp.Text, &critique); err != nil {
		return nil, err
	}
	if err := critique.Validate(); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}

	return &critiqueUpdate{critique: critique}, nil
}

type critiqueUpdate struct {
	critique model.Critique
}

// Apply records the critique and advances the revision counter by exactly
// one. The counter is never reset within a run.
func (u *critiqueUpdate) Apply(run *model.RunState) {
	run.CritiqueScore = u.critique.QualityScore
	run.CritiqueFeedback = u.critique.Feedback
	run.RevisionCount++
}
