package pager

import (
	"context"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// tryCleanup runs a best-effort cleanup operation. By the time cleanup fails
// there is nothing further to clean, so the error is logged and dropped.
func (s *Session) tryCleanup(ctx context.Context, op string, fn func() error) {
	if err := fn(); err != nil {
		logger.Debug(ctx, "pager", "cleanup.skip",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}
