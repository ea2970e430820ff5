package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsdigest/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sample Feed</title>
    <link>https://news.example.com</link>
    <item>
      <title>First article</title>
      <link>https://news.example.com/first</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    </item>
    <item>
      <title>Linkless entry</title>
      <description>should be skipped</description>
    </item>
    <item>
      <title>Second article</title>
      <link>https://news.example.com/second</link>
      <description>plain text body</description>
    </item>
  </channel>
</rss>`

func TestFetchMapsFeedEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), nil)
	src := domain.SourceDescriptor{ID: "sample", URL: server.URL, Kind: domain.SourceKindFeed, Family: "rss"}

	candidates, err := fetcher.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (linkless entry skipped), got %d", len(candidates))
	}

	first := candidates[0]
	if first.SourceID != "sample" || first.SourceKind != domain.SourceKindFeed || first.Family != "rss" {
		t.Fatalf("source fields not propagated: %+v", first)
	}
	if first.Title != "First article" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.CanonicalURL != "https://news.example.com/first" {
		t.Fatalf("unexpected url: %s", first.CanonicalURL)
	}
	if first.RawContent != "Hello world" {
		t.Fatalf("description markup must be flattened, got %q", first.RawContent)
	}

	want := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published time: %v", first.PublishedAt)
	}

	second := candidates[1]
	if second.PublishedAt.IsZero() {
		t.Fatalf("missing pubDate must fall back to the fetch time")
	}
	if second.RawContent != "plain text body" {
		t.Fatalf("unexpected content: %q", second.RawContent)
	}
}

func TestFetchDetailPrefersArticleElement(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
		<nav>site chrome</nav>
		<article><h1>Headline</h1><p>Main story text.</p></article>
		</body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), nil)

	detail, err := fetcher.FetchDetail(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDetail error: %v", err)
	}
	if detail.Body != "Headline Main story text." {
		t.Fatalf("unexpected body: %q", detail.Body)
	}
}

func TestFetchDetailRejectsNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), nil)

	if _, err := fetcher.FetchDetail(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error for a 404 page")
	}
}
