package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    url             TEXT NOT NULL,
    kind            TEXT NOT NULL,
    family          TEXT NOT NULL,
    is_active       INTEGER NOT NULL DEFAULT 1,
    last_fetched_at TEXT
);

CREATE TABLE IF NOT EXISTS articles (
    id              TEXT PRIMARY KEY,
    source_id       TEXT NOT NULL,
    family          TEXT NOT NULL,
    title           TEXT NOT NULL,
    canonical_url   TEXT NOT NULL UNIQUE,
    published_at    TEXT NOT NULL,
    raw_content     TEXT,
    summary         TEXT,
    comment_summary TEXT,
    comment_count   INTEGER NOT NULL DEFAULT 0,
    image_url       TEXT,
    is_top          INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL
);
`

// SQLiteRepository persists cycle output and source bookkeeping in SQLite.
// Timestamps are stored as RFC 3339 UTC strings, which compare correctly
// as text.
type SQLiteRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.Storage = (*SQLiteRepository)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// RecordIfNew inserts the item unless an article with the same canonical
// URL already exists; reports whether a row was inserted. Passthrough items
// store their raw content as the display summary.
func (r *SQLiteRepository) RecordIfNew(ctx context.Context, item domain.EnrichedCandidate) (bool, error) {
	summary := item.Result.Summary
	if summary == "" {
		summary = item.Candidate.RawContent
	}

	query := r.sb.Insert("articles").
		Columns("id", "source_id", "family", "title", "canonical_url",
			"published_at", "raw_content", "summary", "comment_summary",
			"comment_count", "image_url", "is_top", "created_at").
		Values(uuid.NewString(),
			item.Candidate.SourceID,
			item.Candidate.Family,
			item.Candidate.Title,
			item.Candidate.CanonicalURL,
			formatTime(item.Candidate.PublishedAt),
			item.Candidate.RawContent,
			summary,
			item.Result.DiscussionSummary,
			item.Candidate.EngagementScore,
			item.Candidate.ImageURL,
			item.Selected,
			formatTime(time.Now())).
		Suffix("ON CONFLICT(canonical_url) DO NOTHING")

	res, err := query.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

// Clear removes every article belonging to one source family.
func (r *SQLiteRepository) Clear(ctx context.Context, family string) error {
	query := r.sb.Delete("articles").Where(sq.Eq{"family": family})

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear family %s: %w", family, err)
	}
	return nil
}

// PurgeOlderThan removes articles published before the cutoff.
func (r *SQLiteRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	query := r.sb.Delete("articles").Where(sq.Lt{"published_at": formatTime(cutoff)})

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("purge articles: %w", err)
	}
	return nil
}

// ListEnabledSources returns every active source descriptor.
func (r *SQLiteRepository) ListEnabledSources(ctx context.Context) ([]domain.SourceDescriptor, error) {
	query := r.sb.Select("id", "name", "url", "kind", "family").
		From("sources").
		Where(sq.Eq{"is_active": 1})

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.SourceDescriptor
	for rows.Next() {
		var src domain.SourceDescriptor
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.Kind, &src.Family); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// MarkSourceFetched records the last successful fetch time for a source.
func (r *SQLiteRepository) MarkSourceFetched(ctx context.Context, sourceID string, at time.Time) error {
	query := r.sb.Update("sources").
		Set("last_fetched_at", formatTime(at)).
		Where(sq.Eq{"id": sourceID})

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("mark source fetched: %w", err)
	}
	return nil
}

// UpsertSource inserts or refreshes a configured source, re-enabling it.
func (r *SQLiteRepository) UpsertSource(ctx context.Context, src domain.SourceDescriptor) error {
	query := r.sb.Insert("sources").
		Columns("id", "name", "url", "kind", "family", "is_active").
		Values(src.ID, src.Name, src.URL, src.Kind, src.Family, 1).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            url = excluded.url,
            kind = excluded.kind,
            family = excluded.family,
            is_active = 1`)

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("upsert source %s: %w", src.ID, err)
	}
	return nil
}

// DisableSource flags a source so future cycles skip it.
func (r *SQLiteRepository) DisableSource(ctx context.Context, sourceID string) error {
	query := r.sb.Update("sources").
		Set("is_active", 0).
		Where(sq.Eq{"id": sourceID})

	if _, err := query.RunWith(r.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("disable source %s: %w", sourceID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
