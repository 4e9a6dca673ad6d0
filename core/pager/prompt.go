package pager

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// numberedPage runs the "type a page number" sub-session. Every message it
// creates (prompt, user reply, notices) is deleted together when it
// concludes, regardless of outcome; deletion failures never propagate.
func (s *Session) numberedPage(ctx context.Context) error {
	prompt, err := s.tr.Send(ctx, "What page do you want to go to?")
	if err != nil {
		return err
	}
	toDelete := []MessageRef{prompt}
	defer func() {
		s.tryCleanup(ctx, "prompt.delete", func() error { return s.tr.DeleteAll(ctx, toDelete) })
	}()

	reply, err := s.tr.AwaitReply(ctx, func(r Reply) bool {
		return r.Actor == s.actor && isPageNumber(r.Text)
	}, s.opts.PromptTimeout)

	switch {
	case errors.Is(err, ErrTimeout):
		if notice, nerr := s.tr.Send(ctx, "Took too long."); nerr == nil {
			toDelete = append(toDelete, notice)
		}
		// Give the user a moment to read the notice before it disappears.
		s.pause(ctx, s.opts.NoticeDelay)
		return nil
	case err != nil:
		return err
	}

	toDelete = append(toDelete, reply.Message)
	page, convErr := strconv.Atoi(reply.Text)
	if convErr == nil && page != 0 && page <= s.maxPages {
		if rerr := s.showPage(ctx, page, false); rerr != nil {
			logger.Warn(ctx, "pager", "page.render.fail",
				slog.Int("page", page),
				slog.String("err", rerr.Error()),
			)
		}
		return nil
	}

	notice, nerr := s.tr.Send(ctx, fmt.Sprintf("Invalid page given. (%d/%d)", page, s.maxPages))
	if nerr == nil {
		toDelete = append(toDelete, notice)
	}
	s.pause(ctx, s.opts.NoticeDelay)
	return nil
}

// isPageNumber reports whether text is a non-negative integer literal. The
// reply predicate uses it so non-numeric messages are never consumed.
func isPageNumber(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
