// Package gate holds the quality-gate decision applied after each critique.
// It is kept as a pure function, separate from the orchestrator's control
// flow, so the branch is independently testable.
package gate

// Decision is the gate's routing verdict.
type Decision int

const (
	// Revise routes the run back to the Synthesizer for another pass.
	Revise Decision = iota
	// Finalize routes the run to the Editor.
	Finalize
)

func (d Decision) String() string {
	if d == Finalize {
		return "finalize"
	}
	return "revise"
}

const (
	// MaxRevisions is the hard cap on revision rounds. The score condition
	// alone cannot guarantee termination (a critic could under-score
	// forever), so once RevisionCount exceeds this the gate finalizes
	// regardless of score.
	MaxRevisions = 3

	// PassScore is the minimum critique score that finalizes within the
	// revision budget.
	PassScore = 7
)

// Decide routes the run after a critique. Side-effect free; evaluated
// exactly once per critic completion.
func Decide(critiqueScore, revisionCount int) Decision {
	if revisionCount > MaxRevisions {
		return Finalize
	}
	if critiqueScore >= PassScore {
		return Finalize
	}
	return Revise
}
