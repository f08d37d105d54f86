package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/briefly/internal/model"
)

// Runner defines the interface for producing one brief
type Runner interface {
	Run(ctx context.Context, topic string, constraints map[string]string) (*model.RunState, error)
}

// BriefJob represents a single-topic brief job
type BriefJob struct {
	Topic       string
	Constraints map[string]string
	Runner      Runner
}

// Execute executes the brief job
func (j *BriefJob) Execute(ctx context.Context) Result {
	run, err := j.Runner.Run(ctx, j.Topic, j.Constraints)
	return &BriefResult{
		Topic: j.Topic,
		Run:   run,
		Error: err,
	}
}

// BriefResult represents the result of a brief job. Run may be non-nil even
// on error: a failed run still carries diagnostics up to the failing stage.
type BriefResult struct {
	Topic string
	Run   *model.RunState
	Error error
}

// GetError returns the error from the brief result
func (r *BriefResult) GetError() error {
	return r.Error
}

// BatchProcessor produces briefs for multiple topics concurrently. Each run
// is sequential internally; only independent topics fan out.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessTopics produces briefs for multiple topics concurrently. The shared
// constraints apply to every topic in the batch.
func (b *BatchProcessor) ProcessTopics(ctx context.Context, topics []string, constraints map[string]string) []*BriefResult {
	if len(topics) == 0 {
		return []*BriefResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, topic := range topics {
		pool.Submit(&BriefJob{
			Topic:       topic,
			Constraints: constraints,
			Runner:      b.runner,
		})
	}

	results := pool.Wait()

	briefResults := make([]*BriefResult, len(results))
	for i, result := range results {
		briefResults[i] = result.(*BriefResult)
	}

	return briefResults
}

// ProcessFile reads topics from a file and produces briefs for them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, constraints map[string]string) ([]*BriefResult, error) {
	topics, err := ReadTopicsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}

	return b.ProcessTopics(ctx, topics, constraints), nil
}

// ReadTopicsFromFile reads topics from a file (one per line). Blank lines
// and # comments are skipped; duplicate topics are dropped.
func ReadTopicsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var topics []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			topics = append(topics, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return topics, nil
}
