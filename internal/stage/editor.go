package stage

import (
	"context"
	"fmt"

	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
)

// Editor turns the approved brief into the final document for the target
// audience. The sole stage with unstructured output: its response is the
// deliverable text, no contract to decode.
type Editor struct {
	provider llm.Provider
	model    string
}

// NewEditor creates the editing stage adapter
func NewEditor(provider llm.Provider, model string) *Editor {
	return &Editor{provider: provider, model: model}
}

// Name returns the stage name
func (s *Editor) Name() string { return "editor" }

// Run executes the editing interaction and returns the final-document update
func (s *Editor) Run(ctx context.Context, run *model.RunState) (Update, error) {
	if run.DraftBrief == nil {
		return nil, fmt.Errorf("run context has no draft brief")
	}

	serialized, err := serializeJSON(run.DraftBrief)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System: fmt.Sprintf(editorPrompt, run.Audience()),
		Prompt: serialized,
		Model:  s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	if resp.Text == "" {
		return nil, &SchemaViolationError{Err: fmt.Errorf("empty final document")}
	}

	return &editUpdate{finalDoc: resp.Text}, nil
}

type editUpdate struct {
	finalDoc string
}

func (u *editUpdate) Apply(run *model.RunState) {
	run.FinalDoc = u.finalDoc
}
