package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/briefly/internal/llm"
)

// Tools exposes the retrieval services as reasoning-service tool
// definitions for the stages that are allowed to retrieve.
func (c *Client) Tools() []llm.Tool {
	return []llm.Tool{
		{
			Name:        "web_search",
			Description: "Search the web for a query. Returns a ranked list of results with title, snippet, and URL.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"The search query"}},"required":["query"]}`),
			Call:        c.callSearch,
		},
		{
			Name:        "read_webpage",
			Description: "Fetch a URL and return the extracted plain text of the page. Use this to verify whether a page actually supports a claim.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"The URL to fetch"}},"required":["url"]}`),
			Call:        c.callFetch,
		},
		{
			Name:        "search_encyclopedia",
			Description: "Search Wikipedia for a topic and return the text of the top matching articles. Use this for background information and factual summaries.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"topic":{"type":"string","description":"The topic to look up"}},"required":["topic"]}`),
			Call:        c.callEncyclopedia,
		},
	}
}

func (c *Client) callSearch(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", fmt.Errorf("parse web_search arguments: %w", err)
	}

	results, err := c.Search(ctx, parsed.Query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No results found.", nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return sb.String(), nil
}

func (c *Client) callFetch(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", fmt.Errorf("parse read_webpage arguments: %w", err)
	}
	return c.FetchDocument(ctx, parsed.URL)
}

func (c *Client) callEncyclopedia(ctx context.Context, args json.RawMessage) (string, error) {
	var parsed struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", fmt.Errorf("parse search_encyclopedia arguments: %w", err)
	}
	return c.SearchEncyclopedia(ctx, parsed.Topic)
}
