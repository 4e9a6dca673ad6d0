package pager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/pagebot/core/logger"
	"log/slog"
)

// DefaultPerPage is the page size used when Options leaves PerPage unset.
const DefaultPerPage = 12

const (
	defaultSessionTimeout  = 120 * time.Second
	defaultPromptTimeout   = 30 * time.Second
	defaultNoticeDelay     = 5 * time.Second
	defaultHelpRevertDelay = 60 * time.Second
)

// Options configures a session. Zero values fall back to the defaults above;
// the timeouts are inactivity windows, restarted every time a wait begins.
type Options struct {
	PerPage         int
	SessionTimeout  time.Duration
	PromptTimeout   time.Duration
	NoticeDelay     time.Duration
	HelpRevertDelay time.Duration
}

func (o Options) normalized() Options {
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = defaultSessionTimeout
	}
	if o.PromptTimeout <= 0 {
		o.PromptTimeout = defaultPromptTimeout
	}
	if o.NoticeDelay <= 0 {
		o.NoticeDelay = defaultNoticeDelay
	}
	if o.HelpRevertDelay <= 0 {
		o.HelpRevertDelay = defaultHelpRevertDelay
	}
	return o
}

// Session paginates an entry list for a single user over a single message.
// Pages are 1-indexed. All navigation runs serialized on the Paginate loop;
// the mutex exists only for the detached first render and help revert tasks.
type Session struct {
	tr         Transport
	entries    []string
	perPage    int
	maxPages   int
	actor      int64
	caps       CapabilitySet
	registered []signalBinding
	opts       Options

	mu          sync.Mutex
	currentPage int
	paginating  bool
	target      MessageRef
	haveTarget  bool
	match       actionKind
	helpGen     int
}

// New builds a session for the given actor over entries. It fails with a
// *PermissionError when the transport cannot render rich content; signal and
// history capabilities are only required for multi-page sessions and are
// checked lazily at first render.
func New(tr Transport, actor int64, entries []string, opts Options) (*Session, error) {
	if tr == nil {
		return nil, errors.New("pager: nil transport")
	}
	opts = opts.normalized()

	caps := tr.Capabilities()
	if !caps.RenderRichContent {
		return nil, &PermissionError{Capability: "rich content rendering"}
	}

	pages := (len(entries) + opts.PerPage - 1) / opts.PerPage
	if pages < 1 {
		pages = 1
	}

	s := &Session{
		tr:         tr,
		entries:    entries,
		perPage:    opts.PerPage,
		maxPages:   pages,
		actor:      actor,
		caps:       caps,
		opts:       opts,
		paginating: len(entries) > opts.PerPage,
	}
	s.registered = bindingsFor(pages)
	return s, nil
}

// GetPage returns the slice of entries shown on the given 1-based page.
// Out-of-range pages yield an empty slice; bounds are the caller's problem.
func (s *Session) GetPage(page int) []string {
	base := (page - 1) * s.perPage
	if base < 0 || base >= len(s.entries) {
		return nil
	}
	end := base + s.perPage
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[base:end]
}

// MaximumPages reports the total page count; always >= 1.
func (s *Session) MaximumPages() int { return s.maxPages }

// CurrentPage reports the page shown by the latest render.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// Paginating reports whether the session is (still) interactive.
func (s *Session) Paginating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paginating
}

func (s *Session) renderTarget() (MessageRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.haveTarget
}

func (s *Session) renderContent(page int, first bool) string {
	pageEntries := s.GetPage(page)
	lines := make([]string, 0, len(pageEntries)+4)
	for i, entry := range pageEntries {
		lines = append(lines, fmt.Sprintf("%d. %s", (page-1)*s.perPage+i+1, entry))
	}
	if first && s.paginating {
		lines = append(lines, "", fmt.Sprintf("Confused? Press %s for more info.", SymbolHelp))
	}
	lines = append(lines, "", fmt.Sprintf("Page %d/%d (%d entries)", page, s.maxPages, len(s.entries)))
	return strings.Join(lines, "\n")
}

func (s *Session) showPage(ctx context.Context, page int, first bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showPageLocked(ctx, page, first)
}

// showPageLocked commits currentPage before any transport I/O so a failed
// render leaves the session consistent for the next navigation.
func (s *Session) showPageLocked(ctx context.Context, page int, first bool) error {
	s.currentPage = page
	content := s.renderContent(page, first)

	if !s.paginating {
		_, err := s.tr.Send(ctx, content)
		return err
	}

	if !first {
		return s.tr.Edit(ctx, s.target, content)
	}

	// Verify we can actually run the interactive part of the session.
	if !s.caps.AddSignals {
		return &PermissionError{Capability: "signal registration"}
	}
	if !s.caps.ReadHistory {
		return &PermissionError{Capability: "input history"}
	}

	ref, err := s.tr.Send(ctx, content)
	if err != nil {
		return err
	}
	s.target = ref
	s.haveTarget = true

	for _, b := range s.registered {
		if err := s.tr.AddSignal(ctx, ref, b.Symbol); err != nil {
			logger.Warn(ctx, "pager", "signal.register.fail",
				slog.String("symbol", b.Symbol),
				slog.String("err", err.Error()),
			)
		}
	}
	return nil
}

// checkedShowPage renders the page only when it is in range; out-of-range
// requests are silent no-ops so relative navigation never errors at the ends.
func (s *Session) checkedShowPage(ctx context.Context, page int) error {
	if page < 1 || page > s.maxPages {
		return nil
	}
	return s.showPage(ctx, page, false)
}

// pause sleeps for d unless ctx is cancelled first.
func (s *Session) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
