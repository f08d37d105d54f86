// Package stage implements the five pipeline stage adapters. Each adapter
// wraps exactly one reasoning-service interaction: it reads its slice of
// the run context, invokes the provider with a fixed role instruction (plus
// retrieval tools where the stage is allowed to retrieve), decodes the
// response against the stage's declared output contract, and returns a
// partial update for the orchestrator to merge.
package stage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/briefly/internal/model"
)

// Update is a partial run-context mutation produced by one stage. Only the
// orchestrator applies updates; adapters never mutate the run context
// directly.
type Update interface {
	Apply(*model.RunState)
}

// SchemaViolationError reports a reasoning response that does not conform
// to the stage's declared output contract. Fatal for the run; never
// retried at this layer.
type SchemaViolationError struct {
	Err error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: %v", e.Err)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}

// decodeOutput parses a reasoning response into a stage output contract.
// Models occasionally wrap JSON in Markdown fences despite instructions;
// fences are stripped before decoding. Any decode or validation failure is
// a schema violation.
func decodeOutput(text string, out interface{}) error {
	cleaned := stripFences(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &SchemaViolationError{Err: err}
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` block if present
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// formatConstraints renders the constraint map for a prompt, sorted-free:
// constraint order does not matter to any stage.
func formatConstraints(constraints map[string]string) string {
	if len(constraints) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for k, v := range constraints {
		fmt.Fprintf(&sb, "- %s: %s\n", k, v)
	}
	return sb.String()
}

// serializeJSON marshals stage input data for inclusion in a prompt
func serializeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize stage input: %w", err)
	}
	return string(data), nil
}
