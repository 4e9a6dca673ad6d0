package pager

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMaximumPages(t *testing.T) {
	cases := []struct {
		entries, perPage, want int
	}{
		{30, 12, 3},
		{24, 12, 2},
		{10, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{1, 1, 1},
		{0, 12, 1},
	}
	for _, tc := range cases {
		s, err := New(newFakeTransport(), 7, makeEntries(tc.entries), Options{PerPage: tc.perPage})
		if err != nil {
			t.Fatalf("New(%d/%d): %v", tc.entries, tc.perPage, err)
		}
		if got := s.MaximumPages(); got != tc.want {
			t.Fatalf("MaximumPages(%d/%d) = %d, want %d", tc.entries, tc.perPage, got, tc.want)
		}
	}
}

func TestGetPagePartitionsEntries(t *testing.T) {
	entries := makeEntries(30)
	s, err := New(newFakeTransport(), 7, entries, Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var joined []string
	for page := 1; page <= s.MaximumPages(); page++ {
		joined = append(joined, s.GetPage(page)...)
	}
	if len(joined) != len(entries) {
		t.Fatalf("partition length = %d, want %d", len(joined), len(entries))
	}
	for i := range entries {
		if joined[i] != entries[i] {
			t.Fatalf("partition[%d] = %q, want %q", i, joined[i], entries[i])
		}
	}
	if got := s.GetPage(0); len(got) != 0 {
		t.Fatalf("GetPage(0) = %v, want empty", got)
	}
	if got := s.GetPage(s.MaximumPages() + 1); len(got) != 0 {
		t.Fatalf("GetPage(max+1) = %v, want empty", got)
	}
}

func TestPaginatingFlag(t *testing.T) {
	s, err := New(newFakeTransport(), 7, makeEntries(30), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.Paginating() {
		t.Fatal("30 entries over 12 per page should paginate")
	}
	s, err = New(newFakeTransport(), 7, makeEntries(10), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Paginating() {
		t.Fatal("10 entries over 12 per page should not paginate")
	}
}

func TestMissingRichContentCapability(t *testing.T) {
	tr := newFakeTransport()
	tr.caps.RenderRichContent = false
	_, err := New(tr, 7, makeEntries(30), Options{PerPage: 12})
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("New = %v, want *PermissionError", err)
	}
}

func TestTwoPageSessionSkipsShortcutSignals(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, 7, makeEntries(24), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.showPage(context.Background(), 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, ok := s.renderTarget()
	if !ok {
		t.Fatal("expected render target after first render")
	}
	registered := tr.signalsOn(target)
	want := []string{SymbolPrevious, SymbolNext, SymbolNumbered, SymbolStop, SymbolHelp}
	if len(registered) != len(want) {
		t.Fatalf("registered = %v, want %v", registered, want)
	}
	for i := range want {
		if registered[i] != want[i] {
			t.Fatalf("registered[%d] = %q, want %q", i, registered[i], want[i])
		}
	}
}

func TestThreePageSessionRegistersAllSignals(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, 7, makeEntries(30), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.showPage(context.Background(), 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, _ := s.renderTarget()
	if got := len(tr.signalsOn(target)); got != len(signalBindings) {
		t.Fatalf("registered %d signals, want %d", got, len(signalBindings))
	}
}

func TestRenderContent(t *testing.T) {
	s, err := New(newFakeTransport(), 7, makeEntries(30), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	content := s.renderContent(3, false)
	if !strings.Contains(content, "25. entry 25") {
		t.Fatalf("page 3 should start at global index 25:\n%s", content)
	}
	if !strings.HasSuffix(content, "Page 3/3 (30 entries)") {
		t.Fatalf("missing footer:\n%s", content)
	}
	first := s.renderContent(1, true)
	if !strings.Contains(first, SymbolHelp) {
		t.Fatalf("first render should carry the help hint:\n%s", first)
	}
}

func TestCheckedShowPageBounds(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, 7, makeEntries(30), Options{PerPage: 12})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.showPage(ctx, 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, _ := s.renderTarget()

	if err := s.checkedShowPage(ctx, 0); err != nil {
		t.Fatalf("checkedShowPage(0): %v", err)
	}
	if err := s.checkedShowPage(ctx, 4); err != nil {
		t.Fatalf("checkedShowPage(4): %v", err)
	}
	if got := tr.editCount(target); got != 0 {
		t.Fatalf("out-of-range navigation edited the target %d times", got)
	}
	if got := s.CurrentPage(); got != 1 {
		t.Fatalf("CurrentPage = %d, want 1", got)
	}

	if err := s.checkedShowPage(ctx, 2); err != nil {
		t.Fatalf("checkedShowPage(2): %v", err)
	}
	if got := s.CurrentPage(); got != 2 {
		t.Fatalf("CurrentPage = %d, want 2", got)
	}
	if got := tr.editCount(target); got != 1 {
		t.Fatalf("in-range navigation should edit in place once, got %d", got)
	}
}
