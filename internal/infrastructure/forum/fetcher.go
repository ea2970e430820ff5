package forum

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// Browser-like agent; the forum serves a reduced page to unknown clients.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher scrapes a community-forum listing page and its article pages.
type Fetcher struct {
	client      *http.Client
	maxComments int
	logger      *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; the timeout defaults to 10s and the
// captured-comment cap to 50.
func NewFetcher(client *http.Client, maxComments int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if maxComments <= 0 {
		maxComments = 50
	}
	return &Fetcher{client: client, maxComments: maxComments, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (f *Fetcher) Kind() string {
	return domain.SourceKindForum
}

// Fetch scrapes the listing page and returns candidates in page order,
// carrying comment counts as engagement scores.
func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceDescriptor) ([]domain.Candidate, error) {
	doc, err := f.fetchDocument(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.URL, err)
	}

	items := ParseListing(doc, src.URL)

	now := time.Now().UTC()
	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, domain.Candidate{
			SourceID:        src.ID,
			SourceKind:      domain.SourceKindForum,
			Family:          src.Family,
			Title:           item.Title,
			CanonicalURL:    item.URL,
			PublishedAt:     now,
			EngagementScore: item.CommentCount,
		})
	}

	if f.logger != nil {
		f.logger.Debug("listing fetched", "source", src.ID, "items", len(candidates))
	}
	return candidates, nil
}

// FetchDetail retrieves one article page, returning its body text and up to
// maxComments discussion comments.
func (f *Fetcher) FetchDetail(ctx context.Context, pageURL string) (domain.Detail, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.Detail{}, fmt.Errorf("detail %s: %w", pageURL, err)
	}

	return ParseDetail(doc, f.maxComments), nil
}

func (f *Fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forum returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
