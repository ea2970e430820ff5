package app

import (
	"context"
	"fmt"
	"log/slog"

	"newsdigest/internal/config"
	"newsdigest/internal/domain"
	"newsdigest/internal/fetch"
	"newsdigest/internal/infrastructure/feed"
	"newsdigest/internal/infrastructure/forum"
	"newsdigest/internal/infrastructure/llm"
	"newsdigest/internal/infrastructure/scheduler"
	"newsdigest/internal/infrastructure/storage"
	"newsdigest/internal/logging"
	"newsdigest/internal/ports"
	"newsdigest/internal/status"
	"newsdigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	storage   *storage.SQLiteRepository
	gemini    *llm.Gemini
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	statuses  *status.Store
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	repo, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	var gemini *llm.Gemini
	var text ports.TextService
	if cfg.Gemini.APIKey != "" {
		gemini, err = llm.NewGemini(ctx, cfg.Gemini)
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		text = llm.NewThrottle(gemini,
			cfg.Gemini.MinInterval(), cfg.Gemini.BaseBackoff(), cfg.Gemini.MaxRetries,
			baseLogger.With("component", "throttle"))
	} else {
		baseLogger.Warn("gemini api key not set, AI ranking and summarization disabled")
	}

	registry := fetch.NewRegistry()
	registry.Register(feed.NewFetcher(nil, baseLogger.With("component", "fetcher.feed")))
	registry.Register(forum.NewFetcher(nil, cfg.Enrichment.MaxComments, baseLogger.With("component", "fetcher.forum")))

	statuses := status.NewStore()

	ranker := usecase.NewRanker(text, cfg.Ranking.MaxSelect, baseLogger.With("component", "ranker"))
	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Text:          text,
		Registry:      registry,
		Status:        statuses,
		FallbackChars: cfg.Enrichment.FallbackChars,
		Logger:        baseLogger.With("component", "enricher"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:       registry,
		Storage:        repo,
		Ranker:         ranker,
		Enricher:       enricher,
		Status:         statuses,
		Logger:         baseLogger.With("component", "pipeline"),
		Families:       familyPolicies(cfg.Families),
		Retention:      cfg.Retention.Horizon(),
		QuietStartHour: cfg.Scheduler.QuietStartHour,
		QuietEndHour:   cfg.Scheduler.QuietEndHour,
		Location:       cfg.Scheduler.Location(),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		storage:   repo,
		gemini:    gemini,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline),
		statuses:  statuses,
	}, nil
}

// Run seeds configured sources and drives refresh cycles until the context
// is cancelled. With auto-refresh disabled a single gated cycle runs.
func (a *Application) Run(ctx context.Context) error {
	if err := a.seedSources(ctx); err != nil {
		return err
	}

	if !a.cfg.Scheduler.AutoRefresh {
		a.logger.Info("auto-refresh disabled, running a single cycle")
		a.pipeline.RunGated(ctx)
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval())

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases storage and provider resources.
func (a *Application) Close() error {
	if a.gemini != nil {
		_ = a.gemini.Close()
	}
	return a.storage.Close()
}

// Status exposes the current refresh status for external pollers.
func (a *Application) Status() ports.StatusStore {
	return a.statuses
}

func (a *Application) seedSources(ctx context.Context) error {
	for _, src := range a.cfg.Sources {
		if src.Disabled {
			continue
		}
		descriptor := sourceDescriptor(src)
		if err := a.storage.UpsertSource(ctx, descriptor); err != nil {
			return fmt.Errorf("seed source %s: %w", src.ID, err)
		}
	}
	return nil
}

func sourceDescriptor(src config.SourceConfig) domain.SourceDescriptor {
	return domain.SourceDescriptor{
		ID:     src.ID,
		Name:   src.Name,
		URL:    src.URL,
		Kind:   src.Kind,
		Family: src.Family,
	}
}

func familyPolicies(cfgs []config.FamilyConfig) []usecase.FamilyPolicy {
	policies := make([]usecase.FamilyPolicy, 0, len(cfgs))
	for _, fam := range cfgs {
		policies = append(policies, usecase.FamilyPolicy{
			Name: fam.Name,
			Criteria: usecase.RankCriteria{
				Mode:       usecase.RankMode(fam.Criteria),
				SkipPrefix: fam.SkipPrefix,
			},
			Workers:             fam.Workers,
			FetchDetail:         fam.FetchDetail,
			DiscussionSummaries: fam.DiscussionSummaries,
		})
	}
	return policies
}
