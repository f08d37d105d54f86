package model

import "fmt"

// BriefSection is one titled section of a research brief. CitationIDs
// reference the local citation space of the synthesis round that produced
// the section.
type BriefSection struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content"`
	CitationIDs []CitationID `json:"citation_ids"`
}

// Brief is the structured draft the Synthesizer produces and the Critic and
// Editor consume.
type Brief struct {
	ExecutiveSummary string         `json:"executive_summary"`
	Sections         []BriefSection `json:"sections"`
	RisksAndUnknowns []string       `json:"risks_and_unknowns"`
}

// Validate checks structural integrity against the number of cited claims
// the Synthesizer was shown. Citation ids outside 0..nClaims-1 reference
// nothing and make the brief unusable downstream.
func (b *Brief) Validate(nClaims int) error {
	if b.ExecutiveSummary == "" {
		return fmt.Errorf("brief has no executive summary")
	}
	if len(b.Sections) == 0 {
		return fmt.Errorf("brief has no sections")
	}
	for _, sec := range b.Sections {
		if sec.Heading == "" {
			return fmt.Errorf("brief section has no heading")
		}
		for _, id := range sec.CitationIDs {
			if id < 0 || int(id) >= nClaims {
				return fmt.Errorf("section %q cites unknown claim id %d (have %d claims)", sec.Heading, id, nClaims)
			}
		}
	}
	return nil
}

// Critique is the Critic's quality judgement of a draft brief. It lives for
// one revision round only and is overwritten on the next pass.
type Critique struct {
	QualityScore int    `json:"quality_score"` // 0-10
	Feedback     string `json:"feedback"`
	PassCheck    bool   `json:"pass_check"`
}

// Validate checks the critique score range.
func (c *Critique) Validate() error {
	if c.QualityScore < 0 || c.QualityScore > 10 {
		return fmt.Errorf("quality score %d out of range 0-10", c.QualityScore)
	}
	return nil
}

// SearchResult is one ranked hit from the web search retrieval service.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
