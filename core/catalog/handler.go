package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	coreconfig "github.com/m3rciful/pagebot/core/config"
	"github.com/m3rciful/pagebot/core/logger"
	"github.com/m3rciful/pagebot/core/pager"
	tg "github.com/m3rciful/pagebot/core/telegram"
	"github.com/m3rciful/pagebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/pagebot/core/telegram/helpers"
	"github.com/m3rciful/pagebot/core/telegram/interact"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Handler owns the catalog commands and the pager sessions they spawn.
type Handler struct {
	store *Store
	hub   *interact.Hub
	cfg   coreconfig.PagerConfig

	mu       sync.Mutex
	sessions map[int64]*sessionHandle
}

type sessionHandle struct {
	cancel context.CancelFunc
}

// NewHandler builds the command handler.
func NewHandler(store *Store, hub *interact.Hub, cfg coreconfig.PagerConfig) *Handler {
	return &Handler{
		store:    store,
		hub:      hub,
		cfg:      cfg,
		sessions: make(map[int64]*sessionHandle),
	}
}

// Register wires /list and /additem into the registry.
func (h *Handler) Register(reg *tg.Registry) {
	reg.RegisterCommand("/list", commands.Command{
		Handler:     h.List,
		Description: "Browse the catalog page by page",
	})
	reg.RegisterCommand("/additem", commands.Command{
		Handler:     h.AddItem,
		Description: "Add a catalog entry",
		AdminOnly:   true,
	})
}

// List starts a paginated browse session for the sender. A repeated /list
// from the same user cancels the previous session's tracking.
func (h *Handler) List(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	entries, err := h.store.List(ctx)
	if err != nil {
		logger.CAT.Error("list failed",
			slog.String("event", "catalog.list"),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Could not load the catalog, try again later.")
	}
	if len(entries) == 0 {
		return tghelpers.SendText(c, "The catalog is empty.")
	}

	tr := interact.NewTransport(c.Bot().(*tele.Bot), c.Chat(), h.hub)
	session, err := pager.New(tr, c.Sender().ID, Titles(entries), interact.PagerOptions(h.cfg))
	if err != nil {
		var perm *pager.PermissionError
		if errors.As(err, &perm) {
			return tghelpers.SendText(c, "Bot does not have the permission to send rich messages in this channel.")
		}
		return err
	}

	sessionCtx, handle := h.track(c.Sender().ID)
	go func() {
		defer h.untrack(c.Sender().ID, handle)
		if err := session.Paginate(sessionCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.CAT.Debug("session superseded",
					slog.String("event", "catalog.paginate"),
					slog.Int64("user_id", c.Sender().ID),
				)
				return
			}
			var perm *pager.PermissionError
			if errors.As(err, &perm) {
				logger.CAT.Warn("session lacks permissions",
					slog.String("event", "catalog.paginate"),
					slog.Int64("user_id", c.Sender().ID),
					slog.String("err", err.Error()),
				)
				return
			}
			logger.CAT.Error("session failed",
				slog.String("event", "catalog.paginate"),
				slog.Int64("user_id", c.Sender().ID),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

// AddItem inserts a new entry. Admin gating happens at registration.
func (h *Handler) AddItem(c tele.Context) error {
	title := strings.TrimSpace(c.Message().Payload)
	if title == "" {
		return tghelpers.SendText(c, "Usage: /additem <title>")
	}
	ctx := tghelpers.BuildContext(c)
	entry, err := h.store.Add(ctx, title)
	if err != nil {
		logger.CAT.Error("add failed",
			slog.String("event", "catalog.add"),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Could not store the entry.")
	}
	return tghelpers.SendText(c, "Added: "+entry.Title)
}

// track cancels any previous session of the user and registers a new one.
func (h *Handler) track(userID int64) (context.Context, *sessionHandle) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &sessionHandle{cancel: cancel}
	h.mu.Lock()
	if prev, ok := h.sessions[userID]; ok {
		prev.cancel()
	}
	h.sessions[userID] = handle
	h.mu.Unlock()
	return ctx, handle
}

// untrack removes the tracking entry unless a newer session replaced it.
func (h *Handler) untrack(userID int64, handle *sessionHandle) {
	handle.cancel()
	h.mu.Lock()
	if h.sessions[userID] == handle {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()
}
