package interact

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/pagebot/core/config"
	"github.com/m3rciful/pagebot/core/pager"
)

func TestMarkupForSymbols(t *testing.T) {
	markup := markupForSymbols([]string{"◀", "▶", "⏹"})
	if len(markup.InlineKeyboard) != 1 {
		t.Fatalf("want a single row, got %d", len(markup.InlineKeyboard))
	}
	row := markup.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("want 3 buttons, got %d", len(row))
	}
	for i, want := range []string{"◀", "▶", "⏹"} {
		if row[i].Text != want {
			t.Fatalf("button %d text = %q, want %q", i, row[i].Text, want)
		}
	}
}

func TestPagerOptionsTranslation(t *testing.T) {
	opts := PagerOptions(coreconfig.PagerConfig{
		PerPage:               10,
		SessionTimeoutSeconds: 90,
		PromptTimeoutSeconds:  15,
		NoticeDelaySeconds:    3,
		HelpRevertSeconds:     45,
	})
	if opts.PerPage != 10 {
		t.Fatalf("PerPage = %d, want 10", opts.PerPage)
	}
	if opts.SessionTimeout != 90*time.Second {
		t.Fatalf("SessionTimeout = %v, want 90s", opts.SessionTimeout)
	}
	if opts.PromptTimeout != 15*time.Second {
		t.Fatalf("PromptTimeout = %v, want 15s", opts.PromptTimeout)
	}
	if opts.NoticeDelay != 3*time.Second {
		t.Fatalf("NoticeDelay = %v, want 3s", opts.NoticeDelay)
	}
	if opts.HelpRevertDelay != 45*time.Second {
		t.Fatalf("HelpRevertDelay = %v, want 45s", opts.HelpRevertDelay)
	}
}

func TestPagerOptionsZeroConfigKeepsDefaults(t *testing.T) {
	opts := PagerOptions(coreconfig.PagerConfig{})
	if opts != (pager.Options{}) {
		t.Fatalf("zero config must map to zero options, got %+v", opts)
	}
}

func TestSymbolTrackingForget(t *testing.T) {
	tr := &Transport{symbols: make(map[pager.MessageRef][]string)}
	ref := pager.MessageRef{ID: "1", ChatID: 5}
	tr.symbols[ref] = []string{"◀", "▶"}

	if markup := tr.markupFor(ref); markup == nil || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("markup before forget: %+v", markup)
	}
	tr.forget(ref)
	if markup := tr.markupFor(ref); markup != nil {
		t.Fatal("markup must be nil after forget")
	}
}
