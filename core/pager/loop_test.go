package pager

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testActor int64 = 7

func firstTarget(tr *fakeTransport) MessageRef {
	return MessageRef{ID: "1", ChatID: tr.chatID}
}

func TestPaginateNavigatesAndStops(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := firstTarget(tr)
	tr.signalScript = [][]Signal{
		{{Symbol: SymbolNext, Actor: testActor, Message: target}},
		{{Symbol: SymbolNext, Actor: testActor, Message: target}},
		{{Symbol: SymbolNext, Actor: testActor, Message: target}}, // page 3 is last: no-op
		{{Symbol: SymbolStop, Actor: testActor, Message: target}},
	}

	if err := s.Paginate(context.Background()); err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if got := s.CurrentPage(); got != 3 {
		t.Fatalf("CurrentPage = %d, want 3", got)
	}
	if s.Paginating() {
		t.Fatal("session should be stopped")
	}
	// Two in-range flips edit the target; the third next is silent.
	if got := tr.editCount(target); got != 2 {
		t.Fatalf("target edited %d times, want 2", got)
	}
	deleted := tr.deletedRefs()
	if len(deleted) != 1 || deleted[0] != target {
		t.Fatalf("stop should delete the render target, deleted %v", deleted)
	}
}

func TestPaginateIgnoresForeignSignals(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	target := firstTarget(tr)
	tr.signalScript = [][]Signal{
		{
			{Symbol: SymbolNext, Actor: 999, Message: target},                         // wrong actor
			{Symbol: SymbolNext, Actor: testActor, Message: MessageRef{ID: "x"}},      // wrong message
			{Symbol: "??", Actor: testActor, Message: target},                         // unknown symbol
			{Symbol: SymbolStop, Actor: testActor, Message: target},
		},
	}

	if err := s.Paginate(context.Background()); err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if got := s.CurrentPage(); got != 1 {
		t.Fatalf("foreign signals moved the page to %d", got)
	}
}

func TestPaginateInactivityTimeout(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// No scripted signals: the first wait times out.
	if err := s.Paginate(context.Background()); err != nil {
		t.Fatalf("Paginate after timeout = %v, want nil", err)
	}
	if s.Paginating() {
		t.Fatal("timeout should stop the session")
	}
	target := firstTarget(tr)
	if len(tr.cleared) != 1 || tr.cleared[0] != target {
		t.Fatalf("timeout should clear signals on the target, cleared %v", tr.cleared)
	}
}

func TestPaginateSinglePage(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(10), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Paginate(context.Background()); err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if got := tr.sentCount(); got != 1 {
		t.Fatalf("single-page session sent %d messages, want 1", got)
	}
	if tr.signalCalls != 0 {
		t.Fatal("single-page session must not wait for signals")
	}
	for ref, symbols := range tr.signals {
		if len(symbols) > 0 {
			t.Fatalf("single-page session registered signals on %v: %v", ref, symbols)
		}
	}
}

func TestPaginateLazyPermissionCheck(t *testing.T) {
	tr := newFakeTransport()
	tr.caps.AddSignals = false
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New should defer the signal capability check: %v", err)
	}
	err = s.Paginate(context.Background())
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Paginate = %v, want *PermissionError", err)
	}
	if s.Paginating() {
		t.Fatal("failed session should not stay paginating")
	}

	tr = newFakeTransport()
	tr.caps.ReadHistory = false
	s, err = New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Paginate(context.Background()); !errors.As(err, &perm) {
		t.Fatalf("Paginate = %v, want *PermissionError", err)
	}
}

func TestSinglePageNeedsNoSignalCapabilities(t *testing.T) {
	tr := newFakeTransport()
	tr.caps.AddSignals = false
	tr.caps.ReadHistory = false
	s, err := New(tr, testActor, makeEntries(5), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Paginate(context.Background()); err != nil {
		t.Fatalf("single-page Paginate = %v, want nil", err)
	}
}

func TestStopIsIdempotentInEffect(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.showPage(ctx, 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	if err := s.dispatch(ctx, actionStop); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.Paginating() {
		t.Fatal("stop should end the session")
	}
	// Deleting an already-gone target must stay swallowed.
	tr.failDelete = errAny
	if err := s.dispatch(ctx, actionStop); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if s.Paginating() {
		t.Fatal("session resurrected by second stop")
	}
}

func TestHelpRevertRestoresCurrentPage(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.showPage(ctx, 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, _ := s.renderTarget()

	if err := s.dispatch(ctx, actionHelp); err != nil {
		t.Fatalf("help: %v", err)
	}
	// help legend edit
	if got := tr.editCount(target); got != 1 {
		t.Fatalf("help should edit the target once, got %d", got)
	}

	deadline := time.Now().Add(time.Second)
	for tr.editCount(target) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("help revert never re-rendered the page")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHelpRevertNoopAfterStop(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.showPage(ctx, 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, _ := s.renderTarget()

	if err := s.dispatch(ctx, actionHelp); err != nil {
		t.Fatalf("help: %v", err)
	}
	if err := s.dispatch(ctx, actionStop); err != nil {
		t.Fatalf("stop: %v", err)
	}
	edits := tr.editCount(target)

	time.Sleep(50 * time.Millisecond)
	if got := tr.editCount(target); got != edits {
		t.Fatalf("help revert mutated a stopped session: %d -> %d edits", edits, got)
	}
}

func TestSecondHelpSupersedesFirstRevert(t *testing.T) {
	tr := newFakeTransport()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.showPage(ctx, 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	target, _ := s.renderTarget()

	if err := s.dispatch(ctx, actionHelp); err != nil {
		t.Fatalf("help: %v", err)
	}
	if err := s.dispatch(ctx, actionHelp); err != nil {
		t.Fatalf("help: %v", err)
	}
	// 2 legend edits so far; only the newest revert may add one more.
	time.Sleep(100 * time.Millisecond)
	if got := tr.editCount(target); got != 3 {
		t.Fatalf("expected exactly one surviving revert (3 edits), got %d", got)
	}
}
