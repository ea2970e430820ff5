package forum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsdigest/internal/domain"
)

func TestFetchScrapesListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("expected a browser-like user agent, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`
		<div class="list_item">
		  <span class="list_title"><a href="/board/1">Hot thread</a> <span class="rSymph05">128</span></span>
		</div>
		<div class="list_item">
		  <span class="list_title"><a href="/board/2">Quiet thread</a></span>
		</div>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 50, nil)
	src := domain.SourceDescriptor{ID: "park", URL: server.URL, Kind: domain.SourceKindForum, Family: "community"}

	candidates, err := fetcher.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.SourceKind != domain.SourceKindForum || first.Family != "community" {
		t.Fatalf("source fields not propagated: %+v", first)
	}
	if first.Title != "Hot thread" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.EngagementScore != 128 {
		t.Fatalf("comment count must become the engagement score, got %d", first.EngagementScore)
	}
	if !strings.HasPrefix(first.CanonicalURL, server.URL) {
		t.Fatalf("relative link not resolved: %s", first.CanonicalURL)
	}
	if first.PublishedAt.IsZero() {
		t.Fatalf("listing candidates must carry a fetch timestamp")
	}

	if candidates[1].EngagementScore != 0 {
		t.Fatalf("missing counter must default to 0, got %d", candidates[1].EngagementScore)
	}
}

func TestFetchDetailAppliesCommentCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<div class="post_article"><div class="content">Thread body.</div></div>
		<div class="comment_row"><div class="comment_content">one</div></div>
		<div class="comment_row"><div class="comment_content">two</div></div>
		<div class="comment_row"><div class="comment_content">three</div></div>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 2, nil)

	detail, err := fetcher.FetchDetail(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDetail error: %v", err)
	}
	if detail.Body != "Thread body." {
		t.Fatalf("unexpected body: %q", detail.Body)
	}
	if len(detail.Comments) != 2 {
		t.Fatalf("expected comments capped at 2, got %d", len(detail.Comments))
	}
}

func TestFetchRejectsNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), 50, nil)
	src := domain.SourceDescriptor{ID: "park", URL: server.URL, Kind: domain.SourceKindForum}

	if _, err := fetcher.Fetch(context.Background(), src); err == nil {
		t.Fatalf("expected error for an unavailable listing")
	}
}
