package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/briefly/internal/cache"
	"github.com/ppiankov/briefly/internal/model"
)

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Search.RatePerSecond = 1000
	cfg.Search.Burst = 1000
	cfg.HTTP.Timeout = 5 * time.Second
	return cfg
}

const searchPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fquantum&rut=abc">Quantum Batteries Explained</a>
  <a class="result__snippet">A primer on <b>quantum</b> battery charging.</a>
</div>
<div class="result">
  <a class="result__a" href="https://other.example.org/paper">Superextensive charging</a>
  <a class="result__snippet">Peer reviewed results.</a>
</div>
</body></html>`

func TestSearch_ParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "quantum batteries" {
			t.Errorf("Unexpected query: %s", r.URL.Query().Get("q"))
		}
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)
	c.searchBaseURL = server.URL + "/html/"

	results, err := c.Search(context.Background(), "quantum batteries")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Quantum Batteries Explained" {
		t.Errorf("Wrong title: %q", results[0].Title)
	}
	// The redirect wrapper must be unwrapped to the destination.
	if results[0].URL != "https://example.com/quantum" {
		t.Errorf("Expected unwrapped URL, got %q", results[0].URL)
	}
	if !strings.Contains(results[0].Snippet, "quantum battery charging") {
		t.Errorf("Wrong snippet: %q", results[0].Snippet)
	}
	if results[1].URL != "https://other.example.org/paper" {
		t.Errorf("Direct URL mangled: %q", results[1].URL)
	}
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 15; i++ {
		sb.WriteString(`<a class="result__a" href="https://example.com/p">Result</a>`)
	}
	sb.WriteString("</body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sb.String()))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Search.MaxResults = 5
	c := NewClient(cfg, nil)
	c.searchBaseURL = server.URL + "/html/"

	results, err := c.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Expected 5 results, got %d", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient(testConfig(), nil)
	if _, err := c.Search(context.Background(), "  "); err == nil {
		t.Fatal("Expected error for empty query, got nil")
	}
}

func TestSearch_CacheHit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	c := NewClient(testConfig(), store)
	c.searchBaseURL = server.URL + "/html/"

	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "cached query"); err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
	}

	if requests != 1 {
		t.Errorf("Expected 1 upstream request, got %d", requests)
	}
}

func TestFetchDocument_ExtractsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		case "/article":
			_, _ = w.Write([]byte(`<html><head><style>p{color:red}</style></head>
<body><nav>Menu</nav><p>Charging power scales with cell count.</p>
<script>track()</script><footer>Legal</footer></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)

	text, err := c.FetchDocument(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}

	if !strings.Contains(text, "Charging power scales with cell count.") {
		t.Errorf("Expected article text, got %q", text)
	}
	for _, stripped := range []string{"Menu", "track()", "Legal", "color:red"} {
		if strings.Contains(text, stripped) {
			t.Errorf("Expected %q to be stripped, got %q", stripped, text)
		}
	}
}

func TestFetchDocument_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("<html><body><p>secret</p></body></html>"))
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)

	_, err := c.FetchDocument(context.Background(), server.URL+"/private/page")
	if err == nil {
		t.Fatal("Expected robots.txt rejection, got nil")
	}
	if !strings.Contains(err.Error(), "robots.txt disallows") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestFetchDocument_RetriesTransientErrors(t *testing.T) {
	origSleep := sleepFunc
	sleepFunc = func(time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html><body><p>finally up</p></body></html>"))
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)

	text, err := c.FetchDocument(context.Background(), server.URL+"/flaky")
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if !strings.Contains(text, "finally up") {
		t.Errorf("Unexpected text: %q", text)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestFetchDocument_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)

	if _, err := c.FetchDocument(context.Background(), server.URL+"/gone"); err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for a 404, got %d", attempts)
	}
}

func TestFetchDocument_InvalidURL(t *testing.T) {
	c := NewClient(testConfig(), nil)
	if _, err := c.FetchDocument(context.Background(), "not a url"); err == nil {
		t.Fatal("Expected error for invalid URL, got nil")
	}
}

func TestSearchEncyclopedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("list") {
		case "search":
			if r.URL.Query().Get("srsearch") != "quantum battery" {
				t.Errorf("Unexpected search term: %s", r.URL.Query().Get("srsearch"))
			}
			_, _ = w.Write([]byte(`{"query": {"search": [{"title": "Quantum battery"}]}}`))
		default:
			if r.URL.Query().Get("prop") != "extracts" {
				t.Errorf("Unexpected request: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"query": {"pages": {"123": {"title": "Quantum battery", "extract": "A quantum battery stores energy in quantum states."}}}}`))
		}
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)
	c.wikiBaseURL = server.URL + "/w/api.php"

	text, err := c.SearchEncyclopedia(context.Background(), "quantum battery")
	if err != nil {
		t.Fatalf("SearchEncyclopedia failed: %v", err)
	}
	if !strings.Contains(text, "Quantum battery") || !strings.Contains(text, "stores energy in quantum states") {
		t.Errorf("Unexpected extract: %q", text)
	}
}

func TestSearchEncyclopedia_NoArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query": {"search": []}}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(), nil)
	c.wikiBaseURL = server.URL + "/w/api.php"

	if _, err := c.SearchEncyclopedia(context.Background(), "zxqw nonsense"); err == nil {
		t.Fatal("Expected error for no articles, got nil")
	}
}
