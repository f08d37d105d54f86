package model

import "time"

// RunState carries everything produced and consumed across stages for one
// pipeline execution. It is created once per run, owned exclusively by the
// orchestrator, and mutated only by merging stage updates between stages.
type RunState struct {
	Topic       string            `json:"topic"`
	Constraints map[string]string `json:"research_constraints,omitempty"`
	StartedAt   time.Time         `json:"started_at"`

	RawClaims []RawClaim `json:"raw_claims,omitempty"`
	Sources   []string   `json:"sources,omitempty"` // Unique source URLs, researcher order

	VerifiedClaims []VerifiedClaim `json:"verified_claims,omitempty"`
	RejectedClaims []RejectedClaim `json:"rejected_claims,omitempty"`

	// CoverageGaps counts raw claims that received no verification review
	// plus reviews that referenced no raw claim. Diagnostic only; the
	// pipeline never branches on it.
	CoverageGaps int `json:"coverage_gaps,omitempty"`

	DraftBrief *Brief `json:"draft_brief,omitempty"`

	CritiqueScore    int    `json:"critique_score"`
	CritiqueFeedback string `json:"critique_feedback,omitempty"`
	RevisionCount    int    `json:"revision_count"`

	FinalDoc string `json:"final_doc,omitempty"`
}

// NewRunState creates the run context for a topic. Constraints may be nil.
func NewRunState(topic string, constraints map[string]string) *RunState {
	return &RunState{
		Topic:       topic,
		Constraints: constraints,
		StartedAt:   time.Now().UTC(),
	}
}

// Audience returns the audience constraint, defaulting to a generic
// audience when unset.
func (s *RunState) Audience() string {
	if a, ok := s.Constraints["audience"]; ok && a != "" {
		return a
	}
	return "General"
}
