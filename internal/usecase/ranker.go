package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// RankMode selects how candidates are presented to the ranking call and
// which deterministic fallback applies.
type RankMode string

const (
	// RankByTitles lists index + title; fallback keeps input order.
	RankByTitles RankMode = "titles"
	// RankByEngagement lists index + comment count + title; fallback
	// sorts by engagement score descending.
	RankByEngagement RankMode = "engagement"
)

// RankCriteria parameterizes one selection call. SkipPrefix drops the
// first N prompt lines (pinned notice posts on some listings); indices in
// the prompt stay global so the decision maps back onto the full batch.
type RankCriteria struct {
	Mode       RankMode
	SkipPrefix int
}

const titleRankPrompt = `Select the top %d most important or interesting articles from the following list.
Please focus on economic and technical topics more. If there's no text to review, just ignore it.
Return ONLY the indices of the selected articles as a comma-separated list (e.g., 0, 2, 5, ...).
Do not include any other text.

Articles:
%s`

const engagementRankPrompt = `Select the top %d articles from the following list from a tech community.
Criteria:
1. High comment count.
2. Relevance to major consumer-technology vendors and products.

Prioritize articles that match the criteria and have high engagement as much as possible.
Return ONLY the indices of the selected articles as a comma-separated list.
Do not include any pinned notice or board-rules posts.
Try to fill out %d articles as much as possible.

Articles:
%s`

// Ranker selects an ordered subset of at most maxSelect candidates to
// enrich, delegating the judgment to the text service and falling back
// deterministically when that fails.
type Ranker struct {
	text      ports.TextService
	maxSelect int
	logger    *slog.Logger
}

// NewRanker builds a ranker; a nil text service forces the fallback path
// (AI disabled).
func NewRanker(text ports.TextService, maxSelect int, logger *slog.Logger) *Ranker {
	if maxSelect <= 0 {
		maxSelect = 10
	}
	return &Ranker{text: text, maxSelect: maxSelect, logger: logger}
}

// Select never fails: batches at or under the limit yield the identity
// decision, and any ranking-call problem degrades to the criteria's
// deterministic fallback.
func (r *Ranker) Select(ctx context.Context, candidates []domain.Candidate, crit RankCriteria) domain.RankingDecision {
	if len(candidates) <= r.maxSelect {
		return identityDecision(len(candidates))
	}

	if r.text == nil {
		return r.fallback(candidates, crit)
	}

	prompt := r.renderPrompt(candidates, crit)
	response, err := r.text.Generate(ctx, prompt, ports.GenerateOptions{})
	if err != nil {
		r.warn("ranking call failed, using fallback", "error", err)
		return r.fallback(candidates, crit)
	}

	decision := parseIndexList(response, len(candidates), r.maxSelect)
	if len(decision) == 0 {
		r.warn("ranking response had no usable indices, using fallback", "response", response)
		return r.fallback(candidates, crit)
	}

	return decision
}

func (r *Ranker) renderPrompt(candidates []domain.Candidate, crit RankCriteria) string {
	lines := make([]string, 0, len(candidates))
	for i, cand := range candidates {
		switch crit.Mode {
		case RankByEngagement:
			lines = append(lines, fmt.Sprintf("%d. [Comments: %d] %s", i, cand.EngagementScore, cand.Title))
		default:
			lines = append(lines, fmt.Sprintf("%d. %s", i, cand.Title))
		}
	}

	if crit.SkipPrefix > 0 && crit.SkipPrefix < len(lines) {
		lines = lines[crit.SkipPrefix:]
	}
	listing := strings.Join(lines, "\n")

	if crit.Mode == RankByEngagement {
		return fmt.Sprintf(engagementRankPrompt, r.maxSelect, r.maxSelect, listing)
	}
	return fmt.Sprintf(titleRankPrompt, r.maxSelect, listing)
}

// fallback is total and deterministic: same input always yields the same
// decision.
func (r *Ranker) fallback(candidates []domain.Candidate, crit RankCriteria) domain.RankingDecision {
	if crit.Mode == RankByEngagement {
		indices := make([]int, len(candidates))
		for i := range indices {
			indices[i] = i
		}
		sort.SliceStable(indices, func(a, b int) bool {
			return candidates[indices[a]].EngagementScore > candidates[indices[b]].EngagementScore
		})
		if len(indices) > r.maxSelect {
			indices = indices[:r.maxSelect]
		}
		return indices
	}

	n := len(candidates)
	if n > r.maxSelect {
		n = r.maxSelect
	}
	return identityDecision(n)
}

func (r *Ranker) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func identityDecision(n int) domain.RankingDecision {
	decision := make(domain.RankingDecision, n)
	for i := range decision {
		decision[i] = i
	}
	return decision
}

// parseIndexList parses a comma-separated integer list, dropping anything
// non-numeric, out of range, or duplicated, and truncates to max entries.
func parseIndexList(response string, batchSize, max int) domain.RankingDecision {
	var decision domain.RankingDecision
	seen := map[int]struct{}{}

	for _, field := range strings.Split(strings.TrimSpace(response), ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || idx < 0 || idx >= batchSize {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}

		decision = append(decision, idx)
		if len(decision) == max {
			break
		}
	}

	return decision
}
