package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"newsdigest/internal/domain"
	"newsdigest/internal/fetch"
	"newsdigest/internal/ports"
)

// JobID keys the refresh cycle's status record. A single record is
// overwritten each cycle; pollers read it through the status store.
const JobID = "current_refresh"

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Registry  *fetch.Registry
	Storage   ports.Storage
	Ranker    *Ranker
	Enricher  *Enricher
	Status    ports.StatusStore
	Logger    *slog.Logger
	Families  []FamilyPolicy
	Retention time.Duration

	// Quiet-hours window in Location local time; scheduled runs inside
	// it are skipped entirely.
	QuietStartHour int
	QuietEndHour   int
	Location       *time.Location
}

// Pipeline drives one full refresh cycle per source family:
// fetch fan-out, aggregation, ranking, enrichment, persistence, cleanup.
type Pipeline struct {
	registry  *fetch.Registry
	storage   ports.Storage
	ranker    *Ranker
	enricher  *Enricher
	status    ports.StatusStore
	logger    *slog.Logger
	families  []FamilyPolicy
	retention time.Duration

	quietStart int
	quietEnd   int
	location   *time.Location
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	retention := deps.Retention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}

	return &Pipeline{
		registry:   deps.Registry,
		storage:    deps.Storage,
		ranker:     deps.Ranker,
		enricher:   deps.Enricher,
		status:     deps.Status,
		logger:     deps.Logger,
		families:   deps.Families,
		retention:  retention,
		quietStart: deps.QuietStartHour,
		quietEnd:   deps.QuietEndHour,
		location:   location,
	}
}

// RunCycle refreshes one source family end to end. Fetch failures are
// swallowed per source; persistence failures and a family with no active
// sources are cycle-fatal.
func (p *Pipeline) RunCycle(ctx context.Context, pol FamilyPolicy) error {
	p.setStatus(domain.PhaseFetching, fmt.Sprintf("Starting %s refresh...", pol.Name), 0, 0)

	if err := p.storage.Clear(ctx, pol.Name); err != nil {
		return p.fail(fmt.Errorf("clear family %s: %w", pol.Name, err))
	}

	sources, err := p.enabledSources(ctx, pol.Name)
	if err != nil {
		return p.fail(fmt.Errorf("list sources: %w", err))
	}
	if len(sources) == 0 {
		return p.fail(fmt.Errorf("no active sources for family %s", pol.Name))
	}

	p.setStatus(domain.PhaseFetching, fmt.Sprintf("Fetching %d sources...", len(sources)), len(sources), 0)
	candidates := p.fetchAll(ctx, sources)

	p.setStatus(domain.PhaseProcessing,
		fmt.Sprintf("Found %d articles. Selecting top candidates...", len(candidates)),
		len(candidates), 0)

	if len(candidates) == 0 {
		p.info("no articles found", "family", pol.Name)
		p.setStatus(domain.PhaseCompleted, "No articles found.", 0, 0)
		return nil
	}

	// The merged list must reach the enrichment pool unmodified: the
	// decision's indices refer to positions in exactly this slice.
	decision := p.ranker.Select(ctx, candidates, pol.Criteria)
	p.info("selection done", "family", pol.Name, "selected", len(decision), "total", len(candidates))

	p.setStatus(domain.PhaseSummarizing, "Summarizing articles...", len(candidates), 0)
	enriched := p.enricher.Run(ctx, JobID, candidates, decision.Set(), pol)

	for _, item := range enriched {
		if _, err := p.storage.RecordIfNew(ctx, item); err != nil {
			return p.fail(fmt.Errorf("persist %s: %w", item.Candidate.CanonicalURL, err))
		}
	}

	if err := p.storage.PurgeOlderThan(ctx, time.Now().Add(-p.retention)); err != nil {
		p.warn("retention cleanup failed", "error", err)
	}

	p.setStatus(domain.PhaseCompleted,
		fmt.Sprintf("%s refresh completed.", pol.Name),
		len(candidates), len(candidates))
	return nil
}

// RunGated runs every configured family unless the current local time
// falls inside the quiet-hours window.
func (p *Pipeline) RunGated(ctx context.Context) {
	now := time.Now().In(p.location)
	if inQuietHours(now, p.quietStart, p.quietEnd) {
		p.info("quiet hours, skipping scheduled refresh", "local_time", now.Format("15:04"))
		return
	}

	for _, pol := range p.families {
		if err := p.RunCycle(ctx, pol); err != nil {
			p.warn("refresh cycle failed", "family", pol.Name, "error", err)
		}
	}
}

// FamilyByName resolves a configured family policy for external callers.
func (p *Pipeline) FamilyByName(name string) (FamilyPolicy, bool) {
	for _, pol := range p.families {
		if pol.Name == name {
			return pol, true
		}
	}
	return FamilyPolicy{}, false
}

// fetchAll fans fetches out concurrently and joins before returning so the
// ranking stage sees the complete candidate pool. Per-source order is
// preserved; failures are logged and yield empty slices.
func (p *Pipeline) fetchAll(ctx context.Context, sources []domain.SourceDescriptor) []domain.Candidate {
	results := make([][]domain.Candidate, len(sources))

	group, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		group.Go(func() error {
			fetcher, err := p.registry.Resolve(src.Kind)
			if err != nil {
				p.warn("source skipped", "source", src.ID, "error", err)
				return nil
			}

			items, err := fetcher.Fetch(gctx, src)
			if err != nil {
				p.warn("fetch failed", "source", src.ID, "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = group.Wait()

	var merged []domain.Candidate
	for i, items := range results {
		if len(items) == 0 {
			continue
		}
		if err := p.storage.MarkSourceFetched(ctx, sources[i].ID, time.Now()); err != nil {
			p.warn("mark source fetched failed", "source", sources[i].ID, "error", err)
		}
		merged = append(merged, items...)
	}
	return merged
}

func (p *Pipeline) enabledSources(ctx context.Context, family string) ([]domain.SourceDescriptor, error) {
	all, err := p.storage.ListEnabledSources(ctx)
	if err != nil {
		return nil, err
	}

	var sources []domain.SourceDescriptor
	for _, src := range all {
		if src.Family == family {
			sources = append(sources, src)
		}
	}
	return sources, nil
}

func (p *Pipeline) fail(err error) error {
	p.setStatus(domain.PhaseFailed, fmt.Sprintf("Refresh failed: %v", err), 0, 0)
	return err
}

func (p *Pipeline) setStatus(phase domain.JobPhase, text string, total, processed int) {
	if p.status == nil {
		return
	}
	p.status.Set(JobID, domain.JobStatus{
		Phase:          phase,
		ProgressText:   text,
		TotalItems:     total,
		ProcessedItems: processed,
	})
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

// inQuietHours reports whether t falls inside the [start, end) hour
// window, handling windows that wrap past midnight.
func inQuietHours(t time.Time, startHour, endHour int) bool {
	if startHour == endHour {
		return false
	}

	h := t.Hour()
	if startHour < endHour {
		return h >= startHour && h < endHour
	}
	return h >= startHour || h < endHour
}
