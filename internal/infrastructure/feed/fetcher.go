package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
	"newsdigest/pkg/htmltext"
)

const userAgent = "newsdigest/1.0"

// Fetcher pulls candidates from RSS/Atom feeds.
type Fetcher struct {
	parser *gofeed.Parser
	client *http.Client
	logger *slog.Logger
}

var _ ports.SourceFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; the timeout defaults to 10s.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &Fetcher{parser: parser, client: client, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (f *Fetcher) Kind() string {
	return domain.SourceKindFeed
}

// Fetch parses the feed and maps entries to candidates. Entry order is
// preserved as returned by the feed.
func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceDescriptor) ([]domain.Candidate, error) {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			SourceID:     src.ID,
			SourceKind:   domain.SourceKindFeed,
			Family:       src.Family,
			Title:        item.Title,
			CanonicalURL: item.Link,
			PublishedAt:  publishedAt(item),
			RawContent:   htmltext.Flatten(pickContent(item)),
			ImageURL:     imageURL(item),
		})
	}

	if f.logger != nil {
		f.logger.Debug("feed fetched", "source", src.ID, "entries", len(candidates))
	}
	return candidates, nil
}

// FetchDetail retrieves the linked article page and flattens its main text,
// preferring an <article> element over the whole body.
func (f *Fetcher) FetchDetail(ctx context.Context, pageURL string) (domain.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Detail{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Detail{}, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Detail{}, fmt.Errorf("article page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.Detail{}, fmt.Errorf("parse article page: %w", err)
	}

	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}

	return domain.Detail{Body: htmltext.FlattenSelection(sel)}, nil
}

func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}

func pickContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, key := range []string{"content", "thumbnail"} {
		for _, ext := range media[key] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}
