package catalog

import (
	"testing"

	coreconfig "github.com/m3rciful/pagebot/core/config"
)

func testPagerConfig() coreconfig.PagerConfig {
	return coreconfig.PagerConfig{PerPage: 12}
}

func TestTitles(t *testing.T) {
	entries := []Entry{
		{ID: 1, Title: "first"},
		{ID: 2, Title: "second"},
	}
	titles := Titles(entries)
	if len(titles) != 2 || titles[0] != "first" || titles[1] != "second" {
		t.Fatalf("unexpected titles: %v", titles)
	}
	if got := Titles(nil); len(got) != 0 {
		t.Fatalf("want empty slice for nil entries, got %v", got)
	}
}

func TestTrackSupersedesPreviousSession(t *testing.T) {
	h := NewHandler(nil, nil, testPagerConfig())

	ctx1, handle1 := h.track(7)
	ctx2, handle2 := h.track(7)

	select {
	case <-ctx1.Done():
	default:
		t.Fatal("first session must be cancelled when superseded")
	}
	select {
	case <-ctx2.Done():
		t.Fatal("second session must stay active")
	default:
	}

	// The finished first session must not remove the newer tracking entry.
	h.untrack(7, handle1)
	h.mu.Lock()
	current := h.sessions[7]
	h.mu.Unlock()
	if current != handle2 {
		t.Fatal("stale untrack removed the active session")
	}

	h.untrack(7, handle2)
	h.mu.Lock()
	remaining := len(h.sessions)
	h.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("want no tracked sessions, got %d", remaining)
	}
}

func TestTrackSeparateUsers(t *testing.T) {
	h := NewHandler(nil, nil, testPagerConfig())

	ctx1, _ := h.track(1)
	ctx2, _ := h.track(2)

	select {
	case <-ctx1.Done():
		t.Fatal("user 1 session cancelled by user 2")
	default:
	}
	select {
	case <-ctx2.Done():
		t.Fatal("user 2 session cancelled unexpectedly")
	default:
	}
}
