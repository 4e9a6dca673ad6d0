package pager

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitSignal and AwaitReply when no matching input
// arrives within the given inactivity window. It is a normal terminal
// transition for a session, not a failure.
var ErrTimeout = errors.New("pager: wait timed out")

// PermissionError indicates the transport lacks a capability the session
// needs. It is the only error a session surfaces to its caller.
type PermissionError struct {
	Capability string
}

func (e *PermissionError) Error() string {
	return "pager: missing " + e.Capability + " capability"
}

// MessageRef identifies a single message owned by the session. It is
// comparable so signals can be scoped to the current render target.
type MessageRef struct {
	ID     string
	ChatID int64
}

// IsZero reports whether the reference identifies no message.
func (r MessageRef) IsZero() bool {
	return r == MessageRef{}
}

// Signal is one input event: a symbol emitted by an actor against a message.
type Signal struct {
	Symbol  string
	Actor   int64
	Message MessageRef
}

// Reply is a plain message sent by an actor in the session's channel.
type Reply struct {
	Message MessageRef
	Actor   int64
	Text    string
}

// CapabilitySet is a snapshot of what the bot identity may do in the channel.
type CapabilitySet struct {
	RenderRichContent bool
	AddSignals        bool
	ReadHistory       bool
}

// SignalMatchFunc reports whether an incoming signal belongs to the waiter.
// On a positive match the waiter may record which action the signal resolved
// to; there is at most one outstanding wait per session.
type SignalMatchFunc func(Signal) bool

// ReplyMatchFunc reports whether an incoming message belongs to the waiter.
type ReplyMatchFunc func(Reply) bool

// Transport abstracts the channel/message collaborator a session drives.
// Delete, DeleteAll, ClearSignals and RetractSignal are best-effort from the
// session's point of view: their errors are logged and swallowed.
type Transport interface {
	Send(ctx context.Context, content string) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, content string) error
	Delete(ctx context.Context, ref MessageRef) error
	DeleteAll(ctx context.Context, refs []MessageRef) error

	// AddSignal registers a symbol on a message; idempotent per symbol.
	AddSignal(ctx context.Context, ref MessageRef, symbol string) error
	ClearSignals(ctx context.Context, ref MessageRef) error
	RetractSignal(ctx context.Context, ref MessageRef, symbol string, actor int64) error

	// AwaitSignal blocks until a signal matches, the inactivity timeout
	// elapses (ErrTimeout), or ctx is cancelled.
	AwaitSignal(ctx context.Context, match SignalMatchFunc, timeout time.Duration) (Signal, error)
	// AwaitReply blocks until a channel message matches, the timeout elapses
	// (ErrTimeout), or ctx is cancelled.
	AwaitReply(ctx context.Context, match ReplyMatchFunc, timeout time.Duration) (Reply, error)

	Capabilities() CapabilitySet
}
