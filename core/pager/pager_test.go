package pager

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

var errAny = errors.New("transport unavailable")

// fakeTransport is a scripted transport: each AwaitSignal/AwaitReply call
// consumes the next batch of events and returns the first one the predicate
// accepts; an exhausted or unmatched batch is a timeout. This keeps loop
// tests deterministic without real clocks.
type fakeTransport struct {
	mu     sync.Mutex
	caps   CapabilitySet
	chatID int64
	nextID int

	sent      []string
	sends     []MessageRef
	edits     map[MessageRef][]string
	deleted   []MessageRef
	cleared   []MessageRef
	retracted []string
	signals   map[MessageRef][]string

	failSend   error
	failDelete error

	signalScript [][]Signal
	replyScript  [][]Reply
	signalCalls  int
	replyCalls   int

	rendered     chan struct{}
	renderedOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		caps:     CapabilitySet{RenderRichContent: true, AddSignals: true, ReadHistory: true},
		chatID:   1,
		edits:    make(map[MessageRef][]string),
		signals:  make(map[MessageRef][]string),
		rendered: make(chan struct{}),
	}
}

func (f *fakeTransport) Send(_ context.Context, content string) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return MessageRef{}, f.failSend
	}
	f.nextID++
	ref := MessageRef{ID: strconv.Itoa(f.nextID), ChatID: f.chatID}
	f.sent = append(f.sent, content)
	f.sends = append(f.sends, ref)
	f.renderedOnce.Do(func() { close(f.rendered) })
	return ref, nil
}

func (f *fakeTransport) Edit(_ context.Context, ref MessageRef, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[ref] = append(f.edits[ref], content)
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeTransport) DeleteAll(_ context.Context, refs []MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, refs...)
	return nil
}

func (f *fakeTransport) AddSignal(_ context.Context, ref MessageRef, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.signals[ref] {
		if s == symbol {
			return nil
		}
	}
	f.signals[ref] = append(f.signals[ref], symbol)
	return nil
}

func (f *fakeTransport) ClearSignals(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, ref)
	delete(f.signals, ref)
	return nil
}

func (f *fakeTransport) RetractSignal(_ context.Context, _ MessageRef, symbol string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retracted = append(f.retracted, symbol)
	return nil
}

func (f *fakeTransport) AwaitSignal(_ context.Context, match SignalMatchFunc, _ time.Duration) (Signal, error) {
	// Let the detached first render land before matching against it.
	select {
	case <-f.rendered:
	case <-time.After(200 * time.Millisecond):
	}

	f.mu.Lock()
	idx := f.signalCalls
	f.signalCalls++
	var batch []Signal
	if idx < len(f.signalScript) {
		batch = f.signalScript[idx]
	}
	f.mu.Unlock()

	for _, sig := range batch {
		if match(sig) {
			return sig, nil
		}
	}
	return Signal{}, ErrTimeout
}

func (f *fakeTransport) AwaitReply(_ context.Context, match ReplyMatchFunc, _ time.Duration) (Reply, error) {
	f.mu.Lock()
	idx := f.replyCalls
	f.replyCalls++
	var batch []Reply
	if idx < len(f.replyScript) {
		batch = f.replyScript[idx]
	}
	f.mu.Unlock()

	for _, r := range batch {
		if match(r) {
			return r, nil
		}
	}
	return Reply{}, ErrTimeout
}

func (f *fakeTransport) Capabilities() CapabilitySet { return f.caps }

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) editCount(ref MessageRef) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits[ref])
}

func (f *fakeTransport) signalsOn(ref MessageRef) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.signals[ref]...)
}

func (f *fakeTransport) deletedRefs() []MessageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MessageRef(nil), f.deleted...)
}

func makeEntries(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "entry " + strconv.Itoa(i+1)
	}
	return out
}

func fastOptions() Options {
	return Options{
		SessionTimeout:  50 * time.Millisecond,
		PromptTimeout:   50 * time.Millisecond,
		NoticeDelay:     time.Millisecond,
		HelpRevertDelay: 5 * time.Millisecond,
	}
}
