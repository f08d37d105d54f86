// Package search implements the retrieval services the reasoning stages may
// call as tools: ranked web search, document fetch with robots.txt
// compliance, and encyclopedia lookup.
package search

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/briefly/internal/cache"
	"github.com/ppiankov/briefly/internal/model"
	"github.com/ppiankov/briefly/internal/util"
	"github.com/ppiankov/briefly/internal/worker"
)

const fetchMaxRetries = 3

// sleepFunc is the sleep function used between retries (injectable for tests)
var sleepFunc = time.Sleep

// Client provides the retrieval services backed by DuckDuckGo, direct page
// fetches, and the MediaWiki API. Responses are cached when a cache is
// configured; outbound requests are rate limited per domain and respect
// robots.txt for document fetches.
type Client struct {
	httpClient *http.Client
	store      cache.Cache // nil when caching is disabled
	limiter    *worker.Limiter
	robots     *util.RobotsChecker

	userAgent    string
	maxBytes     int64
	maxResults   int
	wikiArticles int

	searchBaseURL string
	wikiBaseURL   string
}

// NewClient creates a retrieval client from configuration. store may be nil
// to disable caching.
func NewClient(cfg *model.Config, store cache.Cache) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}
	if cfg.HTTP.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	wikiArticles := cfg.Search.EncyclopediaArticles
	if wikiArticles <= 0 {
		wikiArticles = 3
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		store:         store,
		limiter:       worker.NewLimiter(cfg.Search.RatePerSecond, cfg.Search.Burst),
		robots:        util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		userAgent:     cfg.HTTP.UserAgent,
		maxBytes:      cfg.HTTP.MaxBodyBytes,
		maxResults:    maxResults,
		wikiArticles:  wikiArticles,
		searchBaseURL: "https://html.duckduckgo.com/html/",
		wikiBaseURL:   "https://en.wikipedia.org/w/api.php",
	}
}

// Search runs a web search and returns up to MaxResults ranked results.
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	key := cache.Key("search", query)
	if c.store != nil {
		if data, found := c.store.Get(key); found {
			var results []model.SearchResult
			if err := json.Unmarshal(data, &results); err == nil {
				return results, nil
			}
		}
	}

	searchURL := c.searchBaseURL + "?q=" + url.QueryEscape(query)
	body, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	results, err := parseSearchResults(body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	if c.store != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = c.store.Set(key, data, 0)
		}
	}

	return results, nil
}

// FetchDocument fetches a URL and returns its extracted plain text. Fetches
// are robots.txt-checked and rate limited per domain; a disallowed path is
// an error, not a silent skip.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) (string, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	key := cache.Key("page", rawURL)
	if c.store != nil {
		if data, found := c.store.Get(key); found {
			return string(data), nil
		}
	}

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("robots.txt disallows fetching %s", rawURL)
	}

	if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	body, err := c.getWithRetry(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch document: %w", err)
	}

	text := ExtractText(body)
	if text == "" {
		return "", fmt.Errorf("no extractable text at %s", rawURL)
	}

	if c.store != nil {
		_ = c.store.Set(key, []byte(text), 0)
	}

	return text, nil
}

// SearchEncyclopedia searches Wikipedia and returns the concatenated plain
// text extracts of up to EncyclopediaArticles matching articles.
func (c *Client) SearchEncyclopedia(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("empty topic")
	}

	key := cache.Key("wiki", topic)
	if c.store != nil {
		if data, found := c.store.Get(key); found {
			return string(data), nil
		}
	}

	titles, err := c.wikiSearchTitles(ctx, topic)
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("no encyclopedia articles found for %q", topic)
	}

	text, err := c.wikiExtracts(ctx, titles)
	if err != nil {
		return "", err
	}

	if c.store != nil {
		_ = c.store.Set(key, []byte(text), 0)
	}

	return text, nil
}

// wikiSearchTitles finds article titles matching the topic.
func (c *Client) wikiSearchTitles(ctx context.Context, topic string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", topic)
	params.Set("srlimit", fmt.Sprintf("%d", c.wikiArticles))
	params.Set("format", "json")

	body, err := c.get(ctx, c.wikiBaseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("encyclopedia search: %w", err)
	}

	var parsed struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("parse encyclopedia search: %w", err)
	}

	titles := make([]string, 0, len(parsed.Query.Search))
	for _, s := range parsed.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// wikiExtracts fetches plain-text extracts for the given titles.
func (c *Client) wikiExtracts(ctx context.Context, titles []string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "0")
	params.Set("titles", strings.Join(titles, "|"))
	params.Set("format", "json")

	body, err := c.get(ctx, c.wikiBaseURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("encyclopedia extracts: %w", err)
	}

	var parsed struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return "", fmt.Errorf("parse encyclopedia extracts: %w", err)
	}

	var parts []string
	for _, page := range parsed.Query.Pages {
		if page.Extract != "" {
			parts = append(parts, page.Title+"\n\n"+page.Extract)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// get performs a single rate-limited GET and returns the body as a string.
func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, c.maxBytes)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

// getWithRetry retries transient failures with backoff. 4xx responses are
// permanent and not retried.
func (c *Client) getWithRetry(ctx context.Context, rawURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if attempt > 0 {
			sleepFunc(time.Duration(attempt) * time.Second)
		}

		body, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isTransient(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("after %d attempts: %w", fetchMaxRetries, lastErr)
}

// isTransient reports whether a fetch error is worth retrying.
func isTransient(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "unexpected status: 5") || strings.Contains(msg, "unexpected status: 429") {
		return true
	}
	if strings.Contains(msg, "unexpected status:") {
		return false
	}
	// Network-level errors (timeouts, resets) are transient
	return true
}
