package catalog

import (
	"context"
	"fmt"

	"github.com/m3rciful/pagebot/core/bootstrap"
	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// Seeder inserts default entries into an empty catalog.
type Seeder struct {
	Titles []string
}

var _ bootstrap.Seeder = (*Seeder)(nil)

// Seed inserts the configured titles when the catalog has no rows yet.
func (s *Seeder) Seed(ctx context.Context, storage bootstrap.Storage) error {
	store, ok := storage.(*Store)
	if !ok {
		return fmt.Errorf("catalog seeder: unsupported storage %T", storage)
	}
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.SEED.Debug("catalog already seeded",
			slog.String("event", "seed.skip"),
			slog.Int("entries", n),
		)
		return nil
	}
	for _, title := range s.Titles {
		if _, err := store.Add(ctx, title); err != nil {
			return err
		}
	}
	logger.SEED.Info("catalog seeded",
		slog.String("event", "seed.done"),
		slog.Int("entries", len(s.Titles)),
	)
	return nil
}
