package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"newsdigest/internal/domain"
	"newsdigest/internal/fetch"
	"newsdigest/internal/ports"
)

const summarizePrompt = `Analyze the following content and synthesize a concise summary.

Instructions:
1. Summarize the main points clearly.
2. Do not just copy text. Rewrite in your own words with a professional and objective tone.
3. Use Markdown formatting (bullet points, bolding) for readability.
4. Keep the summary up to 10 lines.

Content:
%s`

const discussionPrompt = `Analyze the following community content and provide two distinct summaries.

1. [ARTICLE SUMMARY]: A concise summary of the main news/article body.
2. [COMMENT SUMMARY]: A synthesis of the community's reaction, sentiment, and key discussion points from the comments.

Instructions:
- Be objective and professional.
- Use Markdown (bullet points, bolding).
- Keep the article summary up to 10 lines.
- Keep the comment summary concise but insightful.
- Format your response EXACTLY as follows:
---ARTICLE---
(Article summary here)
---COMMENTS---
(Comment summary here)

Article Body:
%s

Comments:
%s`

const articleOnlyPrompt = `Analyze the following community content and provide a summary.

1. [ARTICLE SUMMARY]: A concise summary of the main news/article body.
2. [COMMENT SUMMARY]: Return "No comments."

Instructions:
- Be objective and professional.
- Use Markdown (bullet points, bolding).
- Keep the article summary up to 10 lines.
- Format your response EXACTLY as follows:
---ARTICLE---
(Article summary here)
---COMMENTS---
No comments.

Article Body:
%s`

// EnricherDeps wires the collaborators of the enrichment pool.
type EnricherDeps struct {
	Text          ports.TextService
	Registry      *fetch.Registry
	Status        ports.StatusStore
	FallbackChars int
	Logger        *slog.Logger
}

// Enricher fans enrichment work out to a bounded pool. Selected candidates
// are summarized through the shared throttled text service; everything
// else passes through untouched. One item's failure never aborts the batch.
type Enricher struct {
	text          ports.TextService
	registry      *fetch.Registry
	status        ports.StatusStore
	fallbackChars int
	logger        *slog.Logger
}

// NewEnricher constructs the pool component.
func NewEnricher(deps EnricherDeps) *Enricher {
	fallbackChars := deps.FallbackChars
	if fallbackChars <= 0 {
		fallbackChars = 500
	}
	return &Enricher{
		text:          deps.Text,
		registry:      deps.Registry,
		status:        deps.Status,
		fallbackChars: fallbackChars,
		logger:        deps.Logger,
	}
}

// Run enriches the selected candidates and passes the rest through. The
// output has exactly one entry per input candidate, in input order. Each
// completion atomically bumps the shared counter and publishes a status
// update.
func (e *Enricher) Run(ctx context.Context, jobID string, candidates []domain.Candidate, selection map[int]struct{}, pol FamilyPolicy) []domain.EnrichedCandidate {
	total := len(candidates)
	results := make([]domain.EnrichedCandidate, total)

	var processed atomic.Int64

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(pol.workerLimit())

	for i, cand := range candidates {
		_, selected := selection[i]

		group.Go(func() error {
			item := domain.EnrichedCandidate{Candidate: cand, Selected: selected}
			if selected {
				item.Result = e.enrichOne(gctx, cand, pol)
			}
			results[i] = item

			done := processed.Add(1)
			e.publish(jobID, total, int(done))
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// enrichOne summarizes a single selected candidate, degrading to a
// truncated raw-content fallback on any failure.
func (e *Enricher) enrichOne(ctx context.Context, cand domain.Candidate, pol FamilyPolicy) domain.EnrichmentResult {
	body := cand.RawContent
	var comments []string

	if pol.FetchDetail {
		detail := e.fetchDetail(ctx, cand)
		if detail.Body != "" {
			body = detail.Body
		}
		comments = detail.Comments
	}

	if e.text == nil {
		return e.fallbackResult(cand)
	}

	prompt, opts := buildEnrichPrompt(body, comments, pol)
	response, err := e.text.Generate(ctx, prompt, opts)
	if err != nil {
		e.warn("summarization failed, using raw-content fallback",
			"url", cand.CanonicalURL, "error", err)
		return e.fallbackResult(cand)
	}

	if pol.DiscussionSummaries {
		parts := splitSummary(response)
		return domain.EnrichmentResult{
			Summary:           parts.Article,
			DiscussionSummary: parts.Discussion,
			Succeeded:         true,
		}
	}
	return domain.EnrichmentResult{Summary: strings.TrimSpace(response), Succeeded: true}
}

// fetchDetail is best-effort: any failure falls back to the already
// fetched listing content.
func (e *Enricher) fetchDetail(ctx context.Context, cand domain.Candidate) domain.Detail {
	if e.registry == nil {
		return domain.Detail{}
	}

	fetcher, err := e.registry.Resolve(cand.SourceKind)
	if err != nil {
		return domain.Detail{}
	}

	detail, err := fetcher.FetchDetail(ctx, cand.CanonicalURL)
	if err != nil {
		e.warn("detail fetch failed", "url", cand.CanonicalURL, "error", err)
		return domain.Detail{}
	}
	return detail
}

func (e *Enricher) fallbackResult(cand domain.Candidate) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Summary:   truncate(cand.RawContent, e.fallbackChars),
		Succeeded: false,
	}
}

func (e *Enricher) publish(jobID string, total, done int) {
	if e.status == nil {
		return
	}
	e.status.Set(jobID, domain.JobStatus{
		Phase:          domain.PhaseSummarizing,
		ProgressText:   fmt.Sprintf("Processing... %d/%d", done, total),
		TotalItems:     total,
		ProcessedItems: done,
	})
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func buildEnrichPrompt(body string, comments []string, pol FamilyPolicy) (string, ports.GenerateOptions) {
	opts := ports.GenerateOptions{DisableSafety: true}

	if !pol.DiscussionSummaries {
		return fmt.Sprintf(summarizePrompt, body), opts
	}
	if len(comments) == 0 {
		return fmt.Sprintf(articleOnlyPrompt, body), opts
	}

	lines := make([]string, 0, len(comments))
	for _, comment := range comments {
		lines = append(lines, "- "+comment)
	}
	return fmt.Sprintf(discussionPrompt, body, strings.Join(lines, "\n")), opts
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
