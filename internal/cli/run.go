package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/briefly/internal/cache"
	"github.com/ppiankov/briefly/internal/llm"
	"github.com/ppiankov/briefly/internal/model"
	"github.com/ppiankov/briefly/internal/pipeline"
	"github.com/ppiankov/briefly/internal/search"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	audience    string
	constraints map[string]string
	llmProvider string
	fastModel   string
	smartModel  string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Produce a cited research brief for a single topic",
	Long: `Run produces one research brief:
- Gather sourced claims for the topic (web search + encyclopedia)
- Verify each claim against its cited source
- Synthesize a brief from verified claims only
- Critique and revise until the draft passes the quality bar
- Edit into a final document for the target audience

Example:
  briefly run "quantum batteries"
  briefly run "quantum batteries" --audience "CTO" --md brief.md
  briefly run "grid storage" --constraint region=EU --constraint timeframe="last 5 years"
  briefly run "grid storage" --provider ollama --fast-model llama3.1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBrief,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Output flags
	runCmd.Flags().StringVar(&outJSON, "json", "brief.json", "output JSON path (full run diagnostics)")
	runCmd.Flags().StringVar(&outMD, "md", "brief.md", "output Markdown path (final document)")

	// Brief flags
	runCmd.Flags().StringVar(&audience, "audience", "", "target audience for the final document")
	runCmd.Flags().StringToStringVar(&constraints, "constraint", nil, "research constraint as key=value (repeatable)")

	// HTTP flags
	runCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall run timeout (multiple reasoning rounds take time)")
	runCmd.Flags().StringVar(&userAgent, "ua", "Briefly/0.1 (+https://github.com/ppiankov/briefly)", "HTTP User-Agent")
	runCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read per fetch")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable retrieval cache (force fresh fetches)")
	runCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")
	runCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	runCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	runCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Reasoning-service flags
	runCmd.Flags().StringVar(&llmProvider, "provider", "openai", "reasoning provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&fastModel, "fast-model", "gpt-4o-mini", "model for research, verification, and synthesis")
	runCmd.Flags().StringVar(&smartModel, "smart-model", "gpt-4o", "model for critique and editing")
}

func runBrief(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Topic: %s\n", topic)
		fmt.Fprintf(os.Stderr, "Provider: %s (%s / %s)\n", cfg.LLM.Provider, cfg.LLM.FastModel, cfg.LLM.SmartModel)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	run, err := orch.Run(ctx, topic, runConstraints())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(run, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(run, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	renderer.RenderSummary(run)

	return nil
}

// runConstraints merges the audience shorthand into the constraint map
func runConstraints() map[string]string {
	merged := make(map[string]string, len(constraints)+1)
	for k, v := range constraints {
		merged[k] = v
	}
	if audience != "" {
		merged["audience"] = audience
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// buildConfig assembles configuration from defaults and flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.LLM.Provider = llmProvider
	cfg.LLM.FastModel = fastModel
	cfg.LLM.SmartModel = smartModel

	// API keys come from the environment, never from flags or config files
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// buildOrchestrator wires the cache, retrieval client, and reasoning
// provider into a pipeline orchestrator.
func buildOrchestrator(cfg *model.Config) (*pipeline.Orchestrator, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("find home directory: %w", err)
			}
			dir = filepath.Join(home, ".briefly", "cache")
		}
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	retriever := search.NewClient(cfg, store)

	// One provider serves both handles; the fast/smart split is by model
	return pipeline.New(cfg, pipeline.Providers{Fast: provider, Smart: provider}, retriever), nil
}
