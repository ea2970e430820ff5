package ports

import (
	"context"
	"time"

	"newsdigest/internal/domain"
)

// SourceFetcher pulls raw candidates from one upstream source. Fetch
// failures never block sibling sources; the orchestrator swallows and logs
// them. FetchDetail retrieves the full page for a single selected item and
// is equally best-effort.
type SourceFetcher interface {
	Kind() string
	Fetch(ctx context.Context, src domain.SourceDescriptor) ([]domain.Candidate, error)
	FetchDetail(ctx context.Context, pageURL string) (domain.Detail, error)
}

// GenerateOptions tunes a single text-generation call.
type GenerateOptions struct {
	// DisableSafety relaxes the provider's content filters; used for
	// summarization of community content, never for ranking.
	DisableSafety bool
}

// TextService is the ranking/summarization backend. Implementations must
// classify rate-limit and quota failures by wrapping domain.ErrRateLimited.
type TextService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Storage persists cycle output and source bookkeeping.
type Storage interface {
	RecordIfNew(ctx context.Context, item domain.EnrichedCandidate) (bool, error)
	Clear(ctx context.Context, family string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) error
	ListEnabledSources(ctx context.Context) ([]domain.SourceDescriptor, error)
	MarkSourceFetched(ctx context.Context, sourceID string, at time.Time) error
	UpsertSource(ctx context.Context, src domain.SourceDescriptor) error
}

// StatusStore exposes cycle progress to concurrent pollers.
type StatusStore interface {
	Set(jobID string, status domain.JobStatus)
	Get(jobID string) domain.JobStatus
}

// Scheduler controls when refresh cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
