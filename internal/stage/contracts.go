package stage

import (
	"fmt"

	"github.com/ppiankov/briefly/internal/model"
)

// ResearchOutput is the Researcher's declared output contract.
type ResearchOutput struct {
	Findings []model.RawClaim `json:"findings"`
}

// Validate checks the contract. An empty findings list is valid: a topic
// with no provable claims is an answer, not an error.
func (o *ResearchOutput) Validate() error {
	for i, f := range o.Findings {
		if f.Claim == "" {
			return fmt.Errorf("finding %d has no claim text", i)
		}
	}
	return nil
}

// VerifierOutput is the Verifier's declared output contract.
type VerifierOutput struct {
	Reviews []model.VerificationReview `json:"reviews"`
}

// Validate checks the contract. Claim ids are not range-checked here:
// out-of-range ids are a correlation concern handled by the ledger, not a
// schema violation.
func (o *VerifierOutput) Validate() error {
	for i, r := range o.Reviews {
		if r.ReliabilityScore < 1 || r.ReliabilityScore > 10 {
			return fmt.Errorf("review %d has reliability score %d out of range 1-10", i, r.ReliabilityScore)
		}
	}
	return nil
}
