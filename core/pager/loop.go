package pager

import (
	"context"
	"errors"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// Paginate renders the entries and runs the interactive loop if necessary.
// Single-page sessions send one message and return. Multi-page sessions loop
// until the user stops the session, the inactivity timeout fires, or ctx is
// cancelled. Only a *PermissionError from the lazy first-render check is
// surfaced; every other failure is absorbed into a state transition or log.
func (s *Session) Paginate(ctx context.Context) error {
	if !s.Paginating() {
		return s.showPage(ctx, 1, true)
	}

	// Detached first render: signal registration happens inside it, so the
	// loop can already start waiting while the message is being set up.
	renderDone := make(chan error, 1)
	go func() { renderDone <- s.showPage(ctx, 1, true) }()

	drainRender := func() error {
		if renderDone == nil {
			return nil
		}
		select {
		case err := <-renderDone:
			renderDone = nil
			return err
		default:
			return nil
		}
	}

	for s.Paginating() {
		sig, err := s.tr.AwaitSignal(ctx, s.matchSignal, s.opts.SessionTimeout)

		if rerr := drainRender(); rerr != nil {
			var perm *PermissionError
			if errors.As(rerr, &perm) {
				s.setStopped()
				return rerr
			}
			logger.Warn(ctx, "pager", "render.fail", slog.String("err", rerr.Error()))
		}

		switch {
		case errors.Is(err, ErrTimeout):
			s.stopOnTimeout(ctx)
			return nil
		case err != nil:
			s.setStopped()
			return err
		}

		if target, ok := s.renderTarget(); ok {
			s.tryCleanup(ctx, "signal.retract", func() error {
				return s.tr.RetractSignal(ctx, target, sig.Symbol, sig.Actor)
			})
		}

		if derr := s.dispatch(ctx, s.takeMatch()); derr != nil {
			logger.Warn(ctx, "pager", "action.fail",
				slog.String("symbol", sig.Symbol),
				slog.String("err", derr.Error()),
			)
		}
	}
	return nil
}

// matchSignal is the predicate handed to the transport: same actor, same
// message as the current render target, and a registered symbol. On match it
// records the resolved action in the single slot consumed by the loop.
func (s *Session) matchSignal(sig Signal) bool {
	if sig.Actor != s.actor {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveTarget || sig.Message != s.target {
		return false
	}
	for _, b := range s.registered {
		if b.Symbol == sig.Symbol {
			s.match = b.Kind
			return true
		}
	}
	return false
}

func (s *Session) takeMatch() actionKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := s.match
	s.match = actionNone
	return kind
}

func (s *Session) setStopped() {
	s.mu.Lock()
	s.paginating = false
	s.mu.Unlock()
}

// stopOnTimeout ends the session after an inactivity timeout, clearing the
// registered signals best-effort so the stale message stops looking live.
func (s *Session) stopOnTimeout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paginating = false
	if s.haveTarget {
		target := s.target
		s.tryCleanup(ctx, "signals.clear", func() error { return s.tr.ClearSignals(ctx, target) })
	}
}
