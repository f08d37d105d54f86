package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// maxToolRounds bounds the tool-execution loop within one interaction. A
// model that keeps requesting tools past this is cut off with an error
// rather than looping forever.
const maxToolRounds = 8

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Complete runs one reasoning interaction using the Chat Completions API.
// Tools are exposed via function calling; each tool round executes the
// requested calls and feeds the results back until the model produces a
// final answer.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 4000
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
		{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
	}

	var tools []openai.Tool
	for _, t := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var responseFormat *openai.ChatCompletionResponseFormat
	if req.ForceJSON {
		responseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	totalTokens := 0
	for round := 0; round <= maxToolRounds; round++ {
		chatReq := openai.ChatCompletionRequest{
			Model:          model,
			Messages:       messages,
			Tools:          tools,
			MaxTokens:      maxTokens,
			Temperature:    temperature,
			ResponseFormat: responseFormat,
		}

		resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from OpenAI")
		}

		totalTokens += resp.Usage.TotalTokens
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			return &CompletionResponse{
				Text:       strings.TrimSpace(msg.Content),
				Model:      model,
				TokensUsed: totalTokens,
				ToolRounds: round,
			}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result, err := p.executeTool(ctxWithTimeout, req.Tools, call)
			if err != nil {
				// Tool failures go back to the model as text so it can
				// recover (try another source, answer without the tool).
				result = fmt.Sprintf("tool error: %v", err)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return nil, fmt.Errorf("model exceeded %d tool rounds without a final answer", maxToolRounds)
}

// executeTool dispatches one model-requested call to the matching tool.
func (p *OpenAIProvider) executeTool(ctx context.Context, tools []Tool, call openai.ToolCall) (string, error) {
	for _, t := range tools {
		if t.Name == call.Function.Name {
			return t.Call(ctx, json.RawMessage(call.Function.Arguments))
		}
	}
	return "", fmt.Errorf("unknown tool: %s", call.Function.Name)
}
