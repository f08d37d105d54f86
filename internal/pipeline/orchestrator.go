// Package pipeline drives one run through the fixed stage sequence:
// research, verify, synthesize, critique, then either another synthesis
// round or the final edit, as decided by the quality gate.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/briefly/internal/gate"
	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
	"github.com/ppiankov/briefly/internal/search"
	"github.com/ppiankov/briefly/internal/stage"
)

// State names one position in the run state machine
type State string

const (
	StateResearching  State = "researching"
	StateVerifying    State = "verifying"
	StateSynthesizing State = "synthesizing"
	StateCritiquing   State = "critiquing"
	StateEditing      State = "editing"
	StateDone         State = "done"
)

// StageError identifies which stage aborted the run and why. Stage
// failures are never retried here; retry belongs at the reasoning-service
// boundary.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Adapter is the uniform stage contract the orchestrator sequences.
type Adapter interface {
	Name() string
	Run(ctx context.Context, run *model.RunState) (stage.Update, error)
}

// Providers names the two reasoning-service handles a run uses: a fast
// model for the volume stages and a smart model for judgement and final
// prose. Injected explicitly; there is no process-wide default.
type Providers struct {
	Fast  llm.Provider
	Smart llm.Provider
}

// Orchestrator owns the run context for the duration of a run and drives
// the stage sequence. It sequences and merges; it never inspects claim
// content.
type Orchestrator struct {
	researcher  Adapter
	verifier    Adapter
	synthesizer Adapter
	critic      Adapter
	editor      Adapter
	verbose     bool
}

// New builds an orchestrator with the standard five stages. retriever may
// be nil, in which case the research and verification stages run without
// retrieval tools.
func New(cfg *model.Config, providers Providers, retriever *search.Client) *Orchestrator {
	var researchTools, verifyTools []llm.Tool
	if retriever != nil {
		all := retriever.Tools()
		researchTools = toolSubset(all, "web_search", "search_encyclopedia")
		verifyTools = toolSubset(all, "web_search", "search_encyclopedia", "read_webpage")
	}

	return &Orchestrator{
		researcher:  stage.NewResearcher(providers.Fast, researchTools, cfg.LLM.FastModel),
		verifier:    stage.NewVerifier(providers.Fast, verifyTools, cfg.LLM.FastModel),
		synthesizer: stage.NewSynthesizer(providers.Fast, cfg.LLM.FastModel),
		critic:      stage.NewCritic(providers.Smart, cfg.LLM.SmartModel),
		editor:      stage.NewEditor(providers.Smart, cfg.LLM.SmartModel),
		verbose:     cfg.Output.Verbose,
	}
}

// NewWithAdapters builds an orchestrator from explicit stage adapters.
// Used by tests and callers that substitute stages.
func NewWithAdapters(researcher, verifier, synthesizer, critic, editor Adapter) *Orchestrator {
	return &Orchestrator{
		researcher:  researcher,
		verifier:    verifier,
		synthesizer: synthesizer,
		critic:      critic,
		editor:      editor,
	}
}

// Run executes one complete pipeline for a topic. On success the returned
// run context carries the final document plus full diagnostics; on failure
// the error is a *StageError naming the failing stage, alongside the run
// context as it stood when the stage failed.
func (o *Orchestrator) Run(ctx context.Context, topic string, constraints map[string]string) (*model.RunState, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	run := model.NewRunState(topic, constraints)
	state := StateResearching

	for state != StateDone {
		adapter, next := o.route(state)

		if o.verbose {
			fmt.Fprintf(os.Stderr, "→ %s\n", state)
		}

		update, err := adapter.Run(ctx, run)
		if err != nil {
			return run, &StageError{Stage: adapter.Name(), Err: err}
		}
		update.Apply(run)

		// The one conditional transition: resolved by the gate exactly
		// once per critic completion, after the critique has been merged.
		if state == StateCritiquing {
			switch gate.Decide(run.CritiqueScore, run.RevisionCount) {
			case gate.Finalize:
				next = StateEditing
			case gate.Revise:
				next = StateSynthesizing
			}
			if o.verbose {
				fmt.Fprintf(os.Stderr, "  gate: score=%d revisions=%d → %s\n",
					run.CritiqueScore, run.RevisionCount, next)
			}
		}

		state = next
	}

	return run, nil
}

// route maps a state to its adapter and unconditional successor. The
// successor out of Critiquing is a placeholder overridden by the gate.
func (o *Orchestrator) route(state State) (Adapter, State) {
	switch state {
	case StateResearching:
		return o.researcher, StateVerifying
	case StateVerifying:
		return o.verifier, StateSynthesizing
	case StateSynthesizing:
		return o.synthesizer, StateCritiquing
	case StateCritiquing:
		return o.critic, StateEditing
	case StateEditing:
		return o.editor, StateDone
	default:
		panic(fmt.Sprintf("no route from state %s", state))
	}
}

// toolSubset selects tools by name, preserving order
func toolSubset(tools []llm.Tool, names ...string) []llm.Tool {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var subset []llm.Tool
	for _, t := range tools {
		if want[t.Name] {
			subset = append(subset, t)
		}
	}
	return subset
}
