package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/briefly/internal/pipeline"
	"github.com/ppiankov/briefly/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Produce briefs for multiple topics from a file in parallel",
	Long: `Batch produces briefs for multiple topics concurrently:
- Read topics from input file (one per line, # comments skipped)
- Process topics in parallel with configurable worker count
- Each run is the full research/verify/synthesize/critique pipeline
- Write an individual brief and diagnostics file per topic

Example:
  briefly batch topics.txt
  briefly batch topics.txt --concurrency 2 --output-dir ./briefs
  briefly batch topics.txt --audience "Board" --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent runs")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./briefly-output", "output directory for briefs")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared run flags
	batchCmd.Flags().StringVar(&audience, "audience", "", "target audience for every brief in the batch")
	batchCmd.Flags().StringToStringVar(&constraints, "constraint", nil, "research constraint as key=value (repeatable)")
	batchCmd.Flags().StringVar(&userAgent, "ua", "Briefly/0.1 (+https://github.com/ppiankov/briefly)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable retrieval cache (force fresh fetches)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Reasoning-service flags
	batchCmd.Flags().StringVar(&llmProvider, "provider", "openai", "reasoning provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&fastModel, "fast-model", "gpt-4o-mini", "model for research, verification, and synthesis")
	batchCmd.Flags().StringVar(&smartModel, "smart-model", "gpt-4o", "model for critique and editing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Briefly Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(orch, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading topics from file...\n")
	results, err := processor.ProcessFile(ctx, file, runConstraints())
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d topics\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	successCount := 0
	failureCount := 0

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Topic, result.Error)
			continue
		}

		successCount++

		slug := sanitizeFilename(result.Topic)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Run, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Topic, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Run, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Topic, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (score: %d/10, %d verified claims)\n",
			result.Topic, result.Run.CritiqueScore, len(result.Run.VerifiedClaims))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d topics\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename turns a topic into a safe filename slug
func sanitizeFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			sb.WriteByte('-')
		}
	}

	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "brief"
	}
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}
