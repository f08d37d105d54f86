package stage

import (
	"context"
	"fmt"

	"github.com/ppiankov/briefly/internal/ledger"
	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
)

// Verifier audits the raw claims against their cited sources. It may fetch
// pages and search during its interaction. The positional correlation of
// reviews back to claims happens in the returned update, outside the
// reasoning service.
type Verifier struct {
	provider llm.Provider
	tools    []llm.Tool
	model    string
}

// NewVerifier creates the verification stage adapter
func NewVerifier(provider llm.Provider, tools []llm.Tool, model string) *Verifier {
	return &Verifier{provider: provider, tools: tools, model: model}
}

// Name returns the stage name
func (s *Verifier) Name() string { return "verifier" }

// indexedClaim pairs a raw claim with its positional id for the prompt
type indexedClaim struct {
	ClaimID model.ClaimIndex `json:"claim_id"`
	model.RawClaim
}

// Run executes the verification interaction and returns the partition update
func (s *Verifier) Run(ctx context.Context, run *model.RunState) (Update, error) {
	indexed := make([]indexedClaim, len(run.RawClaims))
	for i, c := range run.RawClaims {
		indexed[i] = indexedClaim{ClaimID: model.ClaimIndex(i), RawClaim: c}
	}

	prompt, err := serializeJSON(indexed)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:    verifierPrompt,
		Prompt:    prompt,
		Tools:     s.tools,
		ForceJSON: true,
		Model:     s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning service: %w", err)
	}

	var out VerifierOutput
	if err := decodeOutput(resp.Text, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}

	return &verifyUpdate{reviews: out.Reviews}, nil
}

type verifyUpdate struct {
	reviews []model.VerificationReview
}

// Apply joins the reviews to the raw claims by position. Dangling reviews
// and unreviewed claims vanish from both partitions; only the gap counter
// records that anything was lost.
func (u *verifyUpdate) Apply(run *model.RunState) {
	res := ledger.Correlate(run.RawClaims, u.reviews)
	run.VerifiedClaims = res.Verified
	run.RejectedClaims = res.Rejected
	run.CoverageGaps = res.Gaps
}
