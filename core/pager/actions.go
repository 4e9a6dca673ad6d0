package pager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// Symbols recognized as navigation signals, in registration order.
const (
	SymbolFirst    = "⏮"
	SymbolPrevious = "◀"
	SymbolNext     = "▶"
	SymbolLast     = "⏭"
	SymbolNumbered = "\U0001f522" // 🔢
	SymbolStop     = "⏹"
	SymbolHelp     = "ℹ"
)

type actionKind int

const (
	actionNone actionKind = iota
	actionFirst
	actionPrevious
	actionNext
	actionLast
	actionNumbered
	actionStop
	actionHelp
)

// signalBinding ties a symbol to its action and the line shown by help.
type signalBinding struct {
	Symbol      string
	Kind        actionKind
	Description string
}

// Order matters: it is both the registration order on the render target and
// the iteration order of the help legend.
var signalBindings = []signalBinding{
	{SymbolFirst, actionFirst, "goes to the first page"},
	{SymbolPrevious, actionPrevious, "goes to the previous page"},
	{SymbolNext, actionNext, "goes to the next page"},
	{SymbolLast, actionLast, "goes to the last page"},
	{SymbolNumbered, actionNumbered, "lets you type a page number to go to"},
	{SymbolStop, actionStop, "stops the pagination session"},
	{SymbolHelp, actionHelp, "shows this message"},
}

// bindingsFor drops the first/last shortcuts on two-page sessions, where they
// are redundant with previous/next.
func bindingsFor(maximumPages int) []signalBinding {
	out := make([]signalBinding, 0, len(signalBindings))
	for _, b := range signalBindings {
		if maximumPages == 2 && (b.Kind == actionFirst || b.Kind == actionLast) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *Session) dispatch(ctx context.Context, kind actionKind) error {
	switch kind {
	case actionFirst:
		return s.showPage(ctx, 1, false)
	case actionPrevious:
		return s.checkedShowPage(ctx, s.CurrentPage()-1)
	case actionNext:
		return s.checkedShowPage(ctx, s.CurrentPage()+1)
	case actionLast:
		return s.showPage(ctx, s.maxPages, false)
	case actionNumbered:
		return s.numberedPage(ctx)
	case actionStop:
		return s.stop(ctx)
	case actionHelp:
		return s.showHelp(ctx)
	}
	return nil
}

// stop deletes the render target and ends the session. Terminal: the loop
// observes paginating == false and exits.
func (s *Session) stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveTarget {
		target := s.target
		s.tryCleanup(ctx, "target.delete", func() error { return s.tr.Delete(ctx, target) })
	}
	s.paginating = false
	return nil
}

// showHelp replaces the current page with the signal legend and schedules a
// deferred restore of the page the user was on.
func (s *Session) showHelp(ctx context.Context) error {
	s.mu.Lock()
	lines := []string{
		"Welcome to the interactive paginator!",
		"",
		"Navigate pages of text with the buttons below. They are as follows:",
		"",
	}
	for _, b := range s.registered {
		lines = append(lines, b.Symbol+" "+b.Description)
	}
	lines = append(lines, "", fmt.Sprintf("We were on page %d before this message.", s.currentPage))
	err := s.tr.Edit(ctx, s.target, strings.Join(lines, "\n"))

	s.helpGen++
	gen := s.helpGen
	s.mu.Unlock()

	go s.revertHelp(ctx, gen)
	return err
}

// revertHelp restores the current page after the help delay. It re-checks
// liveness at fire time: a stopped session or a newer help invocation wins.
func (s *Session) revertHelp(ctx context.Context, gen int) {
	t := time.NewTimer(s.opts.HelpRevertDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paginating || gen != s.helpGen {
		return
	}
	if err := s.showPageLocked(ctx, s.currentPage, false); err != nil {
		logger.Debug(ctx, "pager", "help.revert.fail",
			slog.Int("page", s.currentPage),
			slog.String("err", err.Error()),
		)
	}
}
