package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// Entry is one browsable catalog row.
type Entry struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

// Store provides access to catalog entries in postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// List returns all entries ordered by id.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, `SELECT id, title FROM catalog_entries ORDER BY id`); err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	logger.CAT.Debug("entries loaded",
		slog.String("event", "catalog.list"),
		slog.Int("entries", len(entries)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return entries, nil
}

// Add inserts a new entry and returns it.
func (s *Store) Add(ctx context.Context, title string) (Entry, error) {
	var e Entry
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO catalog_entries (title) VALUES ($1) RETURNING id, title`, title,
	).StructScan(&e)
	if err != nil {
		return Entry{}, fmt.Errorf("catalog add: %w", err)
	}
	logger.CAT.Info("entry added",
		slog.String("event", "catalog.add"),
		slog.Int64("entry_id", e.ID),
	)
	return e, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM catalog_entries`); err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}
	return n, nil
}

// Titles flattens entries into display lines for pagination.
func Titles(entries []Entry) []string {
	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	return titles
}
