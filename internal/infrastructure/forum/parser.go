package forum

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/domain"
	"newsdigest/pkg/htmltext"
)

// ListingItem is one row extracted from the forum listing page.
type ListingItem struct {
	Title        string
	URL          string
	CommentCount int
}

// ParseListing extracts title/link/comment-count triples from a listing
// document. Rows live under .list_title elements; the comment counter
// (.rSymph05) sits either inside the title node or elsewhere in the
// enclosing .list_item row. Relative links are resolved against listingURL.
func ParseListing(doc *goquery.Document, listingURL string) []ListingItem {
	base, err := url.Parse(listingURL)
	if err != nil {
		base = nil
	}

	var items []ListingItem
	doc.Find(".list_title").Each(func(_ int, sel *goquery.Selection) {
		link := sel
		if !sel.Is("a") {
			link = sel.Find("a").First()
		}
		if link.Length() == 0 {
			return
		}

		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok || href == "" {
			return
		}

		items = append(items, ListingItem{
			Title:        title,
			URL:          resolveHref(base, href),
			CommentCount: commentCount(sel),
		})
	})

	return items
}

// ParseDetail extracts the article body and discussion comments from an
// article page. The body comes from .post_article with .content as the
// fallback container; comments come from .comment_row rows, falling back
// to scanning the .comment_view/.post_comment section.
func ParseDetail(doc *goquery.Document, maxComments int) domain.Detail {
	var body string

	article := doc.Find(".post_article").First()
	if article.Length() == 0 {
		article = doc.Find(".content").First()
	}
	if article.Length() > 0 {
		body = htmltext.FlattenSelection(article)
	}

	comments := extractComments(doc)
	if len(comments) > maxComments {
		comments = comments[:maxComments]
	}

	return domain.Detail{Body: body, Comments: comments}
}

func extractComments(doc *goquery.Document) []string {
	var comments []string

	rows := doc.Find(".comment_row")
	if rows.Length() == 0 {
		rows = doc.Find(`[data-role="comment-row"]`)
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		content := row.Find(".comment_content").First()
		if content.Length() == 0 {
			content = row.Find(".comment_msg").First()
		}
		if text := htmltext.FlattenSelection(content); text != "" {
			comments = append(comments, text)
		}
	})
	if len(comments) > 0 {
		return comments
	}

	section := doc.Find(".comment_view").First()
	if section.Length() == 0 {
		section = doc.Find(".post_comment").First()
	}
	if section.Length() == 0 {
		return nil
	}

	msgs := section.Find(".comment_msg")
	if msgs.Length() > 0 {
		msgs.Each(func(_ int, msg *goquery.Selection) {
			if text := htmltext.FlattenSelection(msg); text != "" {
				comments = append(comments, text)
			}
		})
		return comments
	}

	if text := htmltext.FlattenSelection(section); text != "" {
		comments = append(comments, text)
	}
	return comments
}

func commentCount(sel *goquery.Selection) int {
	span := sel.Find(".rSymph05").First()
	if span.Length() == 0 {
		if row := sel.Closest(".list_item"); row.Length() > 0 {
			span = row.Find(".rSymph05").First()
		}
	}
	if span.Length() == 0 {
		return 0
	}

	count, err := strconv.Atoi(strings.TrimSpace(span.Text()))
	if err != nil {
		return 0
	}
	return count
}

func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
