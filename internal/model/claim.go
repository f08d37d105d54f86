package model

// ClaimIndex identifies a RawClaim by its position in the sequence the
// Researcher produced for this run. It is only meaningful between the
// Researcher and Verifier stages of a single run.
type ClaimIndex int

// CitationID identifies a verified claim within one synthesis round. It is
// assigned fresh (0-based) each time the Synthesizer runs and is the only
// identifier a Brief may cite. It is unrelated to ClaimIndex even though
// both are small integers.
type CitationID int

// RawClaim is an atomic, sourced factual statement extracted by the
// Researcher. Its identity is positional: index i in RunState.RawClaims.
type RawClaim struct {
	Claim       string `json:"claim"`        // A single atomic fact
	SourceURL   string `json:"source_url"`   // Where the fact was found
	SourceQuote string `json:"source_quote"` // Exact supporting substring
}

// Sourced reports whether the claim carries the URL/quote pair required to
// survive the Researcher stage.
func (c RawClaim) Sourced() bool {
	return c.SourceURL != "" && c.SourceQuote != ""
}

// VerificationReview is the Verifier's judgement of one RawClaim,
// referencing it by ClaimIndex. Reviews are not guaranteed one-to-one with
// raw claims: the reasoning service may omit entries or return indices that
// match nothing.
type VerificationReview struct {
	ClaimID          ClaimIndex `json:"claim_id"`
	IsVerified       bool       `json:"is_verified"`
	ReliabilityScore int        `json:"reliability_score"` // 1-10 source credibility
	RejectionReason  string     `json:"rejection_reason,omitempty"`
}

// VerifiedClaim is a RawClaim that passed verification, annotated with the
// reliability score the Verifier assigned.
type VerifiedClaim struct {
	RawClaim
	ReliabilityScore int `json:"reliability_score"`
}

// RejectedClaim is a RawClaim the Verifier turned down.
type RejectedClaim struct {
	RawClaim
	ReliabilityScore int    `json:"reliability_score"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
}

// CitedClaim is a VerifiedClaim relabeled into the synthesis round's local
// citation space. The Synthesizer sees only these.
type CitedClaim struct {
	CitationID CitationID `json:"claim_id"`
	VerifiedClaim
}
