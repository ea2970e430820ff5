package usecase

import "strings"

const (
	articleMarker  = "---ARTICLE---"
	commentsMarker = "---COMMENTS---"
)

// summaryParts is the parsed form of a two-section generation response.
type summaryParts struct {
	Article    string
	Discussion string
}

// splitSummary parses the two-section response grammar: an article section
// introduced by ---ARTICLE--- followed by a discussion section introduced
// by ---COMMENTS---. The fallback is total: when either marker is missing
// the whole text becomes the article summary.
func splitSummary(text string) summaryParts {
	if !strings.Contains(text, articleMarker) || !strings.Contains(text, commentsMarker) {
		return summaryParts{Article: strings.TrimSpace(text)}
	}

	head, tail, _ := strings.Cut(text, commentsMarker)
	article := strings.ReplaceAll(head, articleMarker, "")

	return summaryParts{
		Article:    strings.TrimSpace(article),
		Discussion: strings.TrimSpace(tail),
	}
}
