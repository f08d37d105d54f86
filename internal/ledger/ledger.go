// Package ledger maintains the two claim-identifier spaces of a run and
// performs the join between verification reviews and raw claims.
//
// Raw claims are identified positionally (model.ClaimIndex): index i in the
// researcher's output. That identity is only stable between the Researcher
// and Verifier stages. Verified claims are later relabeled into a fresh
// local citation space (model.CitationID) before each synthesis round.
package ledger

import "github.com/ppiankov/briefly/internal/model"

// CorrelationResult partitions the reviewed claims and records what was
// lost in the join.
type CorrelationResult struct {
	Verified []model.VerifiedClaim
	Rejected []model.RejectedClaim

	// Gaps counts reviews whose claim_id matched no raw claim plus raw
	// claims that no review mentioned. Both are dropped without error;
	// the count is surfaced for diagnostics only.
	Gaps int
}

// Correlate joins verification reviews to raw claims by position.
//
// A review whose claim_id falls outside 0..len(raw)-1 references nothing
// and is dropped. A raw claim no review mentions is dropped from both sets.
// Neither case is an error: the reasoning service owns the review list and
// silently omitting entries is within its contract. Iteration order of the
// output follows review order.
func Correlate(raw []model.RawClaim, reviews []model.VerificationReview) CorrelationResult {
	var res CorrelationResult
	reviewed := make(map[model.ClaimIndex]bool, len(reviews))

	for _, rev := range reviews {
		if rev.ClaimID < 0 || int(rev.ClaimID) >= len(raw) {
			res.Gaps++
			continue
		}
		reviewed[rev.ClaimID] = true
		claim := raw[rev.ClaimID]

		if rev.IsVerified {
			res.Verified = append(res.Verified, model.VerifiedClaim{
				RawClaim:         claim,
				ReliabilityScore: rev.ReliabilityScore,
			})
		} else {
			res.Rejected = append(res.Rejected, model.RejectedClaim{
				RawClaim:         claim,
				ReliabilityScore: rev.ReliabilityScore,
				RejectionReason:  rev.RejectionReason,
			})
		}
	}

	for i := range raw {
		if !reviewed[model.ClaimIndex(i)] {
			res.Gaps++
		}
	}

	return res
}

// Relabel assigns a fresh 0-based citation id to each verified claim for one
// synthesis round. Deterministic given input order: no reordering, no
// deduplication by URL or content. Any prior round's citation ids are
// rendered meaningless by the next call.
func Relabel(verified []model.VerifiedClaim) []model.CitedClaim {
	cited := make([]model.CitedClaim, len(verified))
	for i, vc := range verified {
		cited[i] = model.CitedClaim{
			CitationID:    model.CitationID(i),
			VerifiedClaim: vc,
		}
	}
	return cited
}
