package interact

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/m3rciful/pagebot/core/pager"
	"github.com/m3rciful/pagebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// SignalKey is the callback unique under which pager buttons are registered.
// The button payload carries the signal symbol.
const SignalKey = "pgsig"

type signalWaiter struct {
	match pager.SignalMatchFunc
	ch    chan pager.Signal
}

type replyWaiter struct {
	match pager.ReplyMatchFunc
	ch    chan pager.Reply
}

// Hub fans incoming updates out to waiting sessions. An update is consumed
// by at most one waiter; unclaimed updates fall through to normal routing.
type Hub struct {
	mu      sync.Mutex
	signals map[*signalWaiter]struct{}
	replies map[*replyWaiter]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		signals: make(map[*signalWaiter]struct{}),
		replies: make(map[*replyWaiter]struct{}),
	}
}

// OfferCallback decodes a pager button press and hands it to a waiting
// session. It reports whether some session consumed the update.
func (h *Hub) OfferCallback(c tele.Context) bool {
	cb := c.Callback()
	if cb == nil || cb.Message == nil || c.Sender() == nil {
		return false
	}
	key, symbol := callbacks.ParseCallbackData(cb)
	if key != SignalKey || symbol == "" {
		return false
	}
	sig := pager.Signal{
		Symbol: symbol,
		Actor:  c.Sender().ID,
		Message: pager.MessageRef{
			ID:     strconv.Itoa(cb.Message.ID),
			ChatID: cb.Message.Chat.ID,
		},
	}
	return h.offerSignal(sig)
}

// OfferText hands a plain text message to a waiting session and reports
// whether it was consumed.
func (h *Hub) OfferText(c tele.Context) bool {
	msg := c.Message()
	if msg == nil || c.Sender() == nil {
		return false
	}
	r := pager.Reply{
		Message: pager.MessageRef{
			ID:     strconv.Itoa(msg.ID),
			ChatID: msg.Chat.ID,
		},
		Actor: c.Sender().ID,
		Text:  c.Text(),
	}
	return h.offerReply(r)
}

func (h *Hub) offerSignal(sig pager.Signal) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.signals {
		if w.match(sig) {
			delete(h.signals, w)
			w.ch <- sig
			return true
		}
	}
	return false
}

func (h *Hub) offerReply(r pager.Reply) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.replies {
		if w.match(r) {
			delete(h.replies, w)
			w.ch <- r
			return true
		}
	}
	return false
}

func (h *Hub) removeSignalWaiter(w *signalWaiter) {
	h.mu.Lock()
	delete(h.signals, w)
	h.mu.Unlock()
}

func (h *Hub) removeReplyWaiter(w *replyWaiter) {
	h.mu.Lock()
	delete(h.replies, w)
	h.mu.Unlock()
}

// AwaitSignal blocks until a matching signal arrives, the inactivity timeout
// fires (pager.ErrTimeout), or ctx is cancelled.
func (h *Hub) AwaitSignal(ctx context.Context, match pager.SignalMatchFunc, timeout time.Duration) (pager.Signal, error) {
	w := &signalWaiter{match: match, ch: make(chan pager.Signal, 1)}
	h.mu.Lock()
	h.signals[w] = struct{}{}
	h.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case sig := <-w.ch:
		return sig, nil
	case <-ctx.Done():
		h.removeSignalWaiter(w)
		return pager.Signal{}, ctx.Err()
	case <-timer.C:
		h.removeSignalWaiter(w)
		// A delivery may have raced the timer; prefer it.
		select {
		case sig := <-w.ch:
			return sig, nil
		default:
		}
		return pager.Signal{}, pager.ErrTimeout
	}
}

// AwaitReply blocks until a matching message arrives, the timeout fires
// (pager.ErrTimeout), or ctx is cancelled.
func (h *Hub) AwaitReply(ctx context.Context, match pager.ReplyMatchFunc, timeout time.Duration) (pager.Reply, error) {
	w := &replyWaiter{match: match, ch: make(chan pager.Reply, 1)}
	h.mu.Lock()
	h.replies[w] = struct{}{}
	h.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-w.ch:
		return r, nil
	case <-ctx.Done():
		h.removeReplyWaiter(w)
		return pager.Reply{}, ctx.Err()
	case <-timer.C:
		h.removeReplyWaiter(w)
		select {
		case r := <-w.ch:
			return r, nil
		default:
		}
		return pager.Reply{}, pager.ErrTimeout
	}
}
