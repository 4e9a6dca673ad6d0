package pager

import (
	"context"
	"strings"
	"testing"
)

func promptSession(t *testing.T, tr *fakeTransport) *Session {
	t.Helper()
	s, err := New(tr, testActor, makeEntries(30), fastOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.showPage(context.Background(), 1, true); err != nil {
		t.Fatalf("showPage: %v", err)
	}
	return s
}

func TestNumberedPageValidReply(t *testing.T) {
	tr := newFakeTransport()
	s := promptSession(t, tr)
	target, _ := s.renderTarget()
	replyRef := MessageRef{ID: "reply", ChatID: tr.chatID}
	tr.replyScript = [][]Reply{
		{{Message: replyRef, Actor: testActor, Text: "2"}},
	}

	if err := s.numberedPage(context.Background()); err != nil {
		t.Fatalf("numberedPage: %v", err)
	}
	if got := s.CurrentPage(); got != 2 {
		t.Fatalf("CurrentPage = %d, want 2", got)
	}
	if got := tr.editCount(target); got != 1 {
		t.Fatalf("target edited %d times, want 1", got)
	}

	// Cleanup removes exactly the prompt and the user's reply.
	deleted := tr.deletedRefs()
	if len(deleted) != 2 {
		t.Fatalf("deleted %v, want prompt + reply", deleted)
	}
	if deleted[1] != replyRef {
		t.Fatalf("reply message not cleaned up: %v", deleted)
	}
	if deleted[0] == target || deleted[1] == target {
		t.Fatal("prompt cleanup must not delete the render target")
	}
}

func TestNumberedPageOutOfRange(t *testing.T) {
	for _, text := range []string{"0", "4", "9999"} {
		tr := newFakeTransport()
		s := promptSession(t, tr)
		target, _ := s.renderTarget()
		tr.replyScript = [][]Reply{
			{{Message: MessageRef{ID: "reply", ChatID: tr.chatID}, Actor: testActor, Text: text}},
		}

		if err := s.numberedPage(context.Background()); err != nil {
			t.Fatalf("numberedPage(%q): %v", text, err)
		}
		if got := s.CurrentPage(); got != 1 {
			t.Fatalf("reply %q moved the page to %d", text, got)
		}
		last := tr.sent[len(tr.sent)-1]
		if !strings.HasPrefix(last, "Invalid page given.") {
			t.Fatalf("reply %q: expected invalid-page notice, got %q", text, last)
		}
		if !strings.Contains(last, "/3)") {
			t.Fatalf("notice should cite the bound: %q", last)
		}
		// prompt + reply + notice all removed
		if got := len(tr.deletedRefs()); got != 3 {
			t.Fatalf("reply %q: deleted %d messages, want 3", text, got)
		}
		_ = target
	}
}

func TestNumberedPageNonNumericNeverMatches(t *testing.T) {
	tr := newFakeTransport()
	s := promptSession(t, tr)
	tr.replyScript = [][]Reply{
		{{Message: MessageRef{ID: "reply", ChatID: tr.chatID}, Actor: testActor, Text: "abc"}},
	}

	if err := s.numberedPage(context.Background()); err != nil {
		t.Fatalf("numberedPage: %v", err)
	}
	last := tr.sent[len(tr.sent)-1]
	if last != "Took too long." {
		t.Fatalf("non-numeric reply should time out, got notice %q", last)
	}
	// prompt + timeout notice removed; the user's message stays.
	if got := len(tr.deletedRefs()); got != 2 {
		t.Fatalf("deleted %d messages, want 2", got)
	}
}

func TestNumberedPageTimeout(t *testing.T) {
	tr := newFakeTransport()
	s := promptSession(t, tr)

	if err := s.numberedPage(context.Background()); err != nil {
		t.Fatalf("numberedPage: %v", err)
	}
	if got := s.CurrentPage(); got != 1 {
		t.Fatalf("timeout moved the page to %d", got)
	}
	last := tr.sent[len(tr.sent)-1]
	if last != "Took too long." {
		t.Fatalf("expected timeout notice, got %q", last)
	}
}

func TestNumberedPageCleanupFailuresSwallowed(t *testing.T) {
	tr := newFakeTransport()
	s := promptSession(t, tr)
	tr.failDelete = errAny
	tr.replyScript = [][]Reply{
		{{Message: MessageRef{ID: "reply", ChatID: tr.chatID}, Actor: testActor, Text: "3"}},
	}

	if err := s.numberedPage(context.Background()); err != nil {
		t.Fatalf("cleanup failure escaped: %v", err)
	}
	if got := s.CurrentPage(); got != 3 {
		t.Fatalf("CurrentPage = %d, want 3", got)
	}
}

func TestIsPageNumber(t *testing.T) {
	valid := []string{"0", "1", "42", "007"}
	for _, v := range valid {
		if !isPageNumber(v) {
			t.Fatalf("isPageNumber(%q) = false", v)
		}
	}
	invalid := []string{"", "abc", "-1", "1.5", " 2", "2 ", "two"}
	for _, v := range invalid {
		if isPageNumber(v) {
			t.Fatalf("isPageNumber(%q) = true", v)
		}
	}
}
