package interact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/pagebot/core/pager"
)

func TestHubDeliversMatchingSignal(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	var got pager.Signal
	var gotErr error
	go func() {
		defer close(done)
		got, gotErr = h.AwaitSignal(context.Background(), func(s pager.Signal) bool {
			return s.Actor == 7 && s.Symbol == "▶"
		}, time.Second)
	}()

	sig := pager.Signal{Symbol: "▶", Actor: 7, Message: pager.MessageRef{ID: "1", ChatID: 100}}
	// The waiter registers asynchronously; retry until it claims the signal.
	deadline := time.Now().Add(time.Second)
	for !h.offerSignal(sig) {
		if time.Now().After(deadline) {
			t.Fatal("signal never claimed")
		}
		time.Sleep(time.Millisecond)
	}

	<-done
	if gotErr != nil {
		t.Fatalf("await: %v", gotErr)
	}
	if got != sig {
		t.Fatalf("got %+v, want %+v", got, sig)
	}
}

func TestHubIgnoresNonMatchingSignal(t *testing.T) {
	h := NewHub()
	foreign := pager.Signal{Symbol: "▶", Actor: 99, Message: pager.MessageRef{ID: "1", ChatID: 100}}

	errCh := make(chan error, 1)
	go func() {
		_, err := h.AwaitSignal(context.Background(), func(s pager.Signal) bool {
			return s.Actor == 7
		}, 50*time.Millisecond)
		errCh <- err
	}()

	// Unclaimed updates report false so routing can fall through.
	time.Sleep(10 * time.Millisecond)
	if h.offerSignal(foreign) {
		t.Fatal("foreign signal must not be consumed")
	}
	if err := <-errCh; !errors.Is(err, pager.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
}

func TestHubSignalTimeout(t *testing.T) {
	h := NewHub()
	start := time.Now()
	_, err := h.AwaitSignal(context.Background(), func(pager.Signal) bool { return true }, 20*time.Millisecond)
	if !errors.Is(err, pager.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned before timeout: %v", elapsed)
	}
	h.mu.Lock()
	waiters := len(h.signals)
	h.mu.Unlock()
	if waiters != 0 {
		t.Fatalf("want no waiters after timeout, got %d", waiters)
	}
}

func TestHubAwaitSignalContextCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := h.AwaitSignal(ctx, func(pager.Signal) bool { return true }, time.Minute)
		errCh <- err
	}()
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestHubDeliversMatchingReply(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	var got pager.Reply
	var gotErr error
	go func() {
		defer close(done)
		got, gotErr = h.AwaitReply(context.Background(), func(r pager.Reply) bool {
			return r.Actor == 7
		}, time.Second)
	}()

	reply := pager.Reply{Message: pager.MessageRef{ID: "2", ChatID: 100}, Actor: 7, Text: "3"}
	deadline := time.Now().Add(time.Second)
	for !h.offerReply(reply) {
		if time.Now().After(deadline) {
			t.Fatal("reply never claimed")
		}
		time.Sleep(time.Millisecond)
	}

	<-done
	if gotErr != nil {
		t.Fatalf("await: %v", gotErr)
	}
	if got != reply {
		t.Fatalf("got %+v, want %+v", got, reply)
	}
}

func TestHubReplyConsumedByOneWaiterOnly(t *testing.T) {
	h := NewHub()
	first := make(chan pager.Reply, 1)
	go func() {
		r, err := h.AwaitReply(context.Background(), func(r pager.Reply) bool { return true }, time.Second)
		if err == nil {
			first <- r
		}
	}()

	reply := pager.Reply{Message: pager.MessageRef{ID: "5", ChatID: 1}, Actor: 1, Text: "hi"}
	deadline := time.Now().Add(time.Second)
	for !h.offerReply(reply) {
		if time.Now().After(deadline) {
			t.Fatal("reply never claimed")
		}
		time.Sleep(time.Millisecond)
	}
	<-first

	// The waiter was removed on delivery; a second offer finds nobody.
	if h.offerReply(reply) {
		t.Fatal("second offer must not be consumed")
	}
}
