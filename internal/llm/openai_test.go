package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "Final answer text.",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 42},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	}
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System: "You are a test.",
		Prompt: "Say something.",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "Final answer text." {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
	if resp.ToolRounds != 0 {
		t.Errorf("Expected 0 tool rounds, got %d", resp.ToolRounds)
	}
}

func TestOpenAIProvider_Complete_ToolLoop(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var resp openai.ChatCompletionResponse
		if requests == 1 {
			// First round: model requests a tool call
			resp = openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{
						Message: openai.ChatCompletionMessage{
							Role: "assistant",
							ToolCalls: []openai.ToolCall{
								{
									ID:   "call_1",
									Type: openai.ToolTypeFunction,
									Function: openai.FunctionCall{
										Name:      "web_search",
										Arguments: `{"query":"quantum batteries"}`,
									},
								},
							},
						},
						FinishReason: "tool_calls",
					},
				},
				Usage: openai.Usage{TotalTokens: 10},
			}
		} else {
			// Second round: final answer after seeing tool output
			resp = openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{
						Message: openai.ChatCompletionMessage{
							Role:    "assistant",
							Content: "Answer using tool output.",
						},
						FinishReason: "stop",
					},
				},
				Usage: openai.Usage{TotalTokens: 20},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	var gotQuery string
	tool := Tool{
		Name:        "web_search",
		Description: "Search the web",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
		Call: func(ctx context.Context, args json.RawMessage) (string, error) {
			var parsed struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &parsed); err != nil {
				return "", err
			}
			gotQuery = parsed.Query
			return "search results here", nil
		},
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System: "You are a test.",
		Prompt: "Research this.",
		Tools:  []Tool{tool},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if gotQuery != "quantum batteries" {
		t.Errorf("Tool received query %q", gotQuery)
	}
	if resp.Text != "Answer using tool output." {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.ToolRounds != 1 {
		t.Errorf("Expected 1 tool round, got %d", resp.ToolRounds)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 total tokens, got %d", resp.TokensUsed)
	}
	if requests != 2 {
		t.Errorf("Expected 2 API requests, got %d", requests)
	}
}

func TestOpenAIProvider_Complete_ToolRoundsBounded(t *testing.T) {
	// A model that never stops requesting tools must be cut off.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role: "assistant",
						ToolCalls: []openai.ToolCall{
							{
								ID:   "call_loop",
								Type: openai.ToolTypeFunction,
								Function: openai.FunctionCall{
									Name:      "web_search",
									Arguments: `{"query":"again"}`,
								},
							},
						},
					},
					FinishReason: "tool_calls",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	tool := Tool{
		Name: "web_search",
		Call: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "more results", nil
		},
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{
		Prompt: "loop forever",
		Tools:  []Tool{tool},
	})
	if err == nil {
		t.Fatal("Expected error after exceeding tool rounds, got nil")
	}
}

func TestOpenAIProvider_Complete_UnknownToolReportedToModel(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var resp openai.ChatCompletionResponse
		if requests == 1 {
			resp = openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{
						Message: openai.ChatCompletionMessage{
							Role: "assistant",
							ToolCalls: []openai.ToolCall{
								{
									ID:       "call_x",
									Type:     openai.ToolTypeFunction,
									Function: openai.FunctionCall{Name: "no_such_tool", Arguments: `{}`},
								},
							},
						},
					},
				},
			}
		} else {
			// Verify the tool error came back as a tool message
			var chatReq openai.ChatCompletionRequest
			_ = json.NewDecoder(r.Body).Decode(&chatReq)
			last := chatReq.Messages[len(chatReq.Messages)-1]
			if last.Role != "tool" {
				t.Errorf("Expected tool message, got role %s", last.Role)
			}

			resp = openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "recovered"}},
				},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "go"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "recovered" {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	if err == nil {
		t.Fatal("Expected error for missing API key, got nil")
	}
}
