package usecase

// FamilyPolicy bundles the per-family knobs of a refresh cycle. Each
// source family is ranked, enriched, and persisted independently.
type FamilyPolicy struct {
	// Name tags candidates and storage rows.
	Name string
	// Criteria drives ranking and its fallback.
	Criteria RankCriteria
	// Workers bounds the enrichment pool. The shared throttle already
	// serializes the expensive calls; this bound only caps how many
	// workers queue on the cooldown at once.
	Workers int
	// FetchDetail enables the per-item full-page fetch before
	// summarization.
	FetchDetail bool
	// DiscussionSummaries requests the two-part article+discussion
	// summary format.
	DiscussionSummaries bool
}

func (p FamilyPolicy) workerLimit() int {
	if p.Workers <= 0 {
		return 3
	}
	return p.Workers
}
