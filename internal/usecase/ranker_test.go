package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

type scriptedText struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (s *scriptedText) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.respond == nil {
		return "", nil
	}
	return s.respond(prompt)
}

func (s *scriptedText) recordedPrompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func makeCandidates(n int) []domain.Candidate {
	candidates := make([]domain.Candidate, n)
	for i := range candidates {
		candidates[i] = domain.Candidate{
			Title:           fmt.Sprintf("title %02d", i),
			CanonicalURL:    fmt.Sprintf("https://example.com/%d", i),
			EngagementScore: i * 10,
		}
	}
	return candidates
}

func TestSelectIdentityForSmallBatch(t *testing.T) {
	t.Parallel()

	text := &scriptedText{respond: func(string) (string, error) {
		t.Error("text service must not be called for a small batch")
		return "", nil
	}}
	ranker := NewRanker(text, 10, nil)

	decision := ranker.Select(context.Background(), makeCandidates(3), RankCriteria{Mode: RankByTitles})
	if len(decision) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(decision))
	}
	for i, idx := range decision {
		if idx != i {
			t.Fatalf("expected identity decision, got %v", decision)
		}
	}
}

func TestSelectParsesModelResponse(t *testing.T) {
	t.Parallel()

	text := &scriptedText{respond: func(string) (string, error) {
		return "3, 1, 99, x, 1, 5", nil
	}}
	ranker := NewRanker(text, 10, nil)

	decision := ranker.Select(context.Background(), makeCandidates(12), RankCriteria{Mode: RankByTitles})

	want := []int{3, 1, 5}
	if len(decision) != len(want) {
		t.Fatalf("expected %v, got %v", want, decision)
	}
	for i := range want {
		if decision[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, decision)
		}
	}
}

func TestSelectFallsBackOnError(t *testing.T) {
	t.Parallel()

	text := &scriptedText{respond: func(string) (string, error) {
		return "", errors.New("backend down")
	}}
	ranker := NewRanker(text, 10, nil)

	decision := ranker.Select(context.Background(), makeCandidates(12), RankCriteria{Mode: RankByTitles})
	if len(decision) != 10 {
		t.Fatalf("expected 10 indices, got %d", len(decision))
	}
	for i, idx := range decision {
		if idx != i {
			t.Fatalf("titles fallback must keep input order, got %v", decision)
		}
	}
}

func TestSelectFallsBackOnUnusableResponse(t *testing.T) {
	t.Parallel()

	text := &scriptedText{respond: func(string) (string, error) {
		return "I cannot rank these articles.", nil
	}}
	ranker := NewRanker(text, 10, nil)

	decision := ranker.Select(context.Background(), makeCandidates(12), RankCriteria{Mode: RankByTitles})
	if len(decision) != 10 {
		t.Fatalf("expected fallback of 10 indices, got %d", len(decision))
	}
}

func TestEngagementFallbackOrdersByScore(t *testing.T) {
	t.Parallel()

	ranker := NewRanker(nil, 10, nil)
	candidates := makeCandidates(12)

	decision := ranker.Select(context.Background(), candidates, RankCriteria{Mode: RankByEngagement})
	if len(decision) != 10 {
		t.Fatalf("expected 10 indices, got %d", len(decision))
	}
	for i, idx := range decision {
		if idx != 11-i {
			t.Fatalf("engagement fallback must order by score descending, got %v", decision)
		}
	}
}

func TestEngagementFallbackIsStable(t *testing.T) {
	t.Parallel()

	ranker := NewRanker(nil, 2, nil)
	candidates := []domain.Candidate{
		{Title: "a", EngagementScore: 5},
		{Title: "b", EngagementScore: 5},
		{Title: "c", EngagementScore: 5},
	}

	decision := ranker.Select(context.Background(), candidates, RankCriteria{Mode: RankByEngagement})
	if len(decision) != 2 || decision[0] != 0 || decision[1] != 1 {
		t.Fatalf("ties must keep input order, got %v", decision)
	}
}

func TestPromptSkipsPinnedRows(t *testing.T) {
	t.Parallel()

	text := &scriptedText{respond: func(string) (string, error) {
		return "10, 11", nil
	}}
	ranker := NewRanker(text, 10, nil)

	decision := ranker.Select(context.Background(), makeCandidates(12),
		RankCriteria{Mode: RankByEngagement, SkipPrefix: 2})

	prompts := text.recordedPrompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one ranking call, got %d", len(prompts))
	}

	prompt := prompts[0]
	if strings.Contains(prompt, "title 00") || strings.Contains(prompt, "title 01") {
		t.Fatalf("prompt must not list skipped rows:\n%s", prompt)
	}
	if !strings.Contains(prompt, "2. [Comments: 20] title 02") {
		t.Fatalf("prompt must keep global indices for the remaining rows:\n%s", prompt)
	}
	if !strings.Contains(prompt, "title 11") {
		t.Fatalf("prompt must list the last row:\n%s", prompt)
	}

	if len(decision) != 2 || decision[0] != 10 || decision[1] != 11 {
		t.Fatalf("unexpected decision %v", decision)
	}
}

func TestParseIndexListTruncatesAtLimit(t *testing.T) {
	t.Parallel()

	decision := parseIndexList("0, 1, 2, 3, 4", 10, 3)
	if len(decision) != 3 {
		t.Fatalf("expected 3 indices, got %v", decision)
	}
}

func TestParseIndexListEmptyInput(t *testing.T) {
	t.Parallel()

	if decision := parseIndexList("   ", 10, 3); len(decision) != 0 {
		t.Fatalf("expected no indices, got %v", decision)
	}
}
