package stage

import (
	"context"
	"fmt"

	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
)

// Researcher gathers sourced raw claims for the topic. It may search the
// web and the encyclopedia during its interaction. Findings without a
// URL/quote pair are dropped here; judging the sources is the Verifier's
// job, not this stage's.
type Researcher struct {
	provider llm.Provider
	tools    []llm.Tool
	model    string
}

// NewResearcher creates the research stage adapter
func NewResearcher(provider llm.Provider, tools []llm.Tool, model string) *Researcher {
	return &Researcher{provider: provider, tools: tools, model: model}
}

// Name returns the stage name
func (s *Researcher) Name() string { return "researcher" }

// Run executes the research interaction and returns the raw-claim update
func (s *Researcher) Run(ctx context.Context, run *model.RunState) (Update, error) {
	if run.Topic == "" {
		return nil, fmt.Errorf("run context has no topic")
	}

	prompt := fmt.Sprintf("Topic: %s\nConstraints:\n%s", run.Topic, formatConstraints(run.Constraints))

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:    researcherPrompt,
		Prompt:    prompt,
		Tools:     s.tools,
		ForceJSON: true,
		Model:     s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	var out ResearchOutput
	if err := decodeOutput(resp.Text, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}

	// Unsourced findings are dropped, not rejected: the prompt forbids
	// them but the adapter does not trust the prompt.
	var claims []model.RawClaim
	for _, f := range out.Findings {
		if f.Sourced() {
			claims = append(claims, f)
		}
	}

	return &researchUpdate{claims: claims, sources: uniqueSources(claims)}, nil
}

// uniqueSources collects distinct source URLs in first-seen order
func uniqueSources(claims []model.RawClaim) []string {
	seen := make(map[string]bool, len(claims))
	var sources []string
	for _, c := range claims {
		if !seen[c.SourceURL] {
			seen[c.SourceURL] = true
			sources = append(sources, c.SourceURL)
		}
	}
	return sources
}

type researchUpdate struct {
	claims  []model.RawClaim
	sources []string
}

func (u *researchUpdate) Apply(run *model.RunState) {
	run.RawClaims = u.claims
	run.Sources = u.sources
}
