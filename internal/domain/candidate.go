package domain

import "time"

// Source kinds understood by the fetcher registry.
const (
	SourceKindFeed  = "feed"
	SourceKindForum = "forum"
)

// SourceDescriptor identifies one configured upstream source.
type SourceDescriptor struct {
	ID     string
	Name   string
	URL    string
	Kind   string
	Family string
}

// Candidate is a prospective article pending the enrich-or-passthrough decision.
// Created fresh each cycle; never mutated after creation.
type Candidate struct {
	SourceID        string
	SourceKind      string
	Family          string
	Title           string
	CanonicalURL    string
	PublishedAt     time.Time
	RawContent      string
	EngagementScore int
	ImageURL        string
}

// EnrichmentResult holds the generated summaries for a candidate chosen for
// enrichment. Succeeded is false both for passthroughs and for items whose
// enrichment call ultimately failed (their Summary then holds the truncated
// raw-content fallback).
type EnrichmentResult struct {
	Summary           string
	DiscussionSummary string
	Succeeded         bool
}

// EnrichedCandidate pairs a candidate with its enrichment outcome.
type EnrichedCandidate struct {
	Candidate Candidate
	Selected  bool
	Result    EnrichmentResult
}

// Detail is the best-effort full content of a single item's page.
type Detail struct {
	Body     string
	Comments []string
}

// RankingDecision is an ordered list of indices into the candidate batch it
// was computed against: no duplicates, every index in range, length capped
// by the ranker's selection limit.
type RankingDecision []int

// Set returns the decision as a membership set for the enrichment pool.
func (d RankingDecision) Set() map[int]struct{} {
	set := make(map[int]struct{}, len(d))
	for _, idx := range d {
		set[idx] = struct{}{}
	}
	return set
}
