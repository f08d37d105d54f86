package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/briefly/internal/model"
)

// Renderer writes run results to files and the terminal
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full run context as JSON diagnostics
func (r *Renderer) RenderJSON(run *model.RunState, path string) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}

	return nil
}

// RenderMarkdown writes the final document
func (r *Renderer) RenderMarkdown(run *model.RunState, path string) error {
	doc := run.FinalDoc
	if r.includeFooter {
		doc += fmt.Sprintf("\n\n---\n*Generated by Briefly from %d verified claims (%d rejected, %d revision rounds).*\n",
			len(run.VerifiedClaims), len(run.RejectedClaims), run.RevisionCount)
	}

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderSummary prints a run summary to stdout
func (r *Renderer) RenderSummary(run *model.RunState) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Briefly — %s\n", run.Topic)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("  Raw claims:      %d\n", len(run.RawClaims))
	fmt.Printf("  Verified:        %d\n", len(run.VerifiedClaims))
	fmt.Printf("  Rejected:        %d\n", len(run.RejectedClaims))
	if run.CoverageGaps > 0 {
		fmt.Printf("  Coverage gaps:   %d\n", run.CoverageGaps)
	}
	fmt.Printf("  Revision rounds: %d\n", run.RevisionCount)
	fmt.Printf("  Final score:     %d/10\n", run.CritiqueScore)
	fmt.Println()
}
