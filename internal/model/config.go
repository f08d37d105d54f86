package model

import "time"

// Config is the complete Briefly configuration, assembled from defaults,
// config file, environment, and CLI flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls outbound HTTP behavior for retrieval.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// CacheConfig controls the retrieval response cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// SearchConfig controls the retrieval services exposed to the reasoning
// stages as tools.
type SearchConfig struct {
	MaxResults           int     `yaml:"max_results"`
	EncyclopediaArticles int     `yaml:"encyclopedia_articles"`
	RatePerSecond        float64 `yaml:"rate_per_second"`
	Burst                int     `yaml:"burst"`
}

// LLMConfig selects and configures the reasoning-service provider. The
// pipeline uses two handles: FastModel for the research/verify/synthesize
// stages and SmartModel for critique and editing.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai, anthropic, ollama
	FastModel  string `yaml:"fast_model"`
	SmartModel string `yaml:"smart_model"`
	APIKey     string `yaml:"-"` // From environment only, never persisted
	BaseURL    string `yaml:"base_url"`
	Timeout    int    `yaml:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens"`
}

// ConcurrencyConfig controls batch processing parallelism. A single run is
// always sequential; only independent runs fan out.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Briefly/0.1 (+https://github.com/ppiankov/briefly)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Search: SearchConfig{
			MaxResults:           10,
			EncyclopediaArticles: 3,
			RatePerSecond:        2,
			Burst:                5,
		},
		LLM: LLMConfig{
			Provider:   "openai",
			FastModel:  "gpt-4o-mini",
			SmartModel: "gpt-4o",
			Timeout:    60,
			MaxTokens:  4000,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
