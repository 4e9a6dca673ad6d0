package interact

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/pagebot/core/config"
	"github.com/m3rciful/pagebot/core/logger"
	"github.com/m3rciful/pagebot/core/pager"
	"github.com/m3rciful/pagebot/core/telegram/keyboard"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Transport binds a pager session to one Telegram chat. Signals render as a
// single row of inline keyboard buttons on the target message, so
// registration and clearing are markup edits rather than reactions.
type Transport struct {
	bot  *tele.Bot
	chat *tele.Chat
	hub  *Hub
	caps pager.CapabilitySet

	mu      sync.Mutex
	symbols map[pager.MessageRef][]string
}

var _ pager.Transport = (*Transport)(nil)

// NewTransport builds a transport for the given chat. The capability
// snapshot is taken once, here.
func NewTransport(bot *tele.Bot, chat *tele.Chat, hub *Hub) *Transport {
	return &Transport{
		bot:     bot,
		chat:    chat,
		hub:     hub,
		caps:    detectCapabilities(bot, chat),
		symbols: make(map[pager.MessageRef][]string),
	}
}

// detectCapabilities inspects the bot's member rights in the chat. Private
// chats and lookup failures default to permissive: the send itself will fail
// loudly if Telegram disagrees.
func detectCapabilities(bot *tele.Bot, chat *tele.Chat) pager.CapabilitySet {
	caps := pager.CapabilitySet{RenderRichContent: true, AddSignals: true, ReadHistory: true}
	if bot == nil || chat == nil || chat.Type == tele.ChatPrivate {
		return caps
	}
	member, err := bot.ChatMemberOf(chat, bot.Me)
	if err != nil {
		logger.TG.Warn("member rights lookup failed",
			slog.String("event", "pager.caps"),
			slog.Int64("chat_id", chat.ID),
			slog.String("err", err.Error()),
		)
		return caps
	}
	if member.Role == tele.Restricted {
		caps.RenderRichContent = member.CanSendMessages
		caps.AddSignals = member.CanSendMessages
		caps.ReadHistory = member.CanSendMessages
	}
	return caps
}

func stored(ref pager.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: ref.ID, ChatID: ref.ChatID}
}

func (t *Transport) Send(_ context.Context, content string) (pager.MessageRef, error) {
	msg, err := t.bot.Send(t.chat, content)
	if err != nil {
		return pager.MessageRef{}, err
	}
	return pager.MessageRef{ID: strconv.Itoa(msg.ID), ChatID: msg.Chat.ID}, nil
}

func (t *Transport) Edit(_ context.Context, ref pager.MessageRef, content string) error {
	if markup := t.markupFor(ref); markup != nil {
		_, err := t.bot.Edit(stored(ref), content, markup)
		return err
	}
	_, err := t.bot.Edit(stored(ref), content)
	return err
}

func (t *Transport) Delete(_ context.Context, ref pager.MessageRef) error {
	t.forget(ref)
	return t.bot.Delete(stored(ref))
}

func (t *Transport) DeleteAll(ctx context.Context, refs []pager.MessageRef) error {
	var errs []error
	for _, ref := range refs {
		if err := t.Delete(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Transport) AddSignal(_ context.Context, ref pager.MessageRef, symbol string) error {
	t.mu.Lock()
	for _, s := range t.symbols[ref] {
		if s == symbol {
			t.mu.Unlock()
			return nil
		}
	}
	t.symbols[ref] = append(t.symbols[ref], symbol)
	markup := markupForSymbols(t.symbols[ref])
	t.mu.Unlock()

	_, err := t.bot.EditReplyMarkup(stored(ref), markup)
	return err
}

func (t *Transport) ClearSignals(_ context.Context, ref pager.MessageRef) error {
	t.forget(ref)
	_, err := t.bot.EditReplyMarkup(stored(ref), nil)
	return err
}

// RetractSignal is a no-op on Telegram: button presses leave nothing on the
// message to remove, and the callback is acknowledged at routing time.
func (t *Transport) RetractSignal(context.Context, pager.MessageRef, string, int64) error {
	return nil
}

func (t *Transport) AwaitSignal(ctx context.Context, match pager.SignalMatchFunc, timeout time.Duration) (pager.Signal, error) {
	scoped := func(sig pager.Signal) bool {
		return sig.Message.ChatID == t.chat.ID && match(sig)
	}
	return t.hub.AwaitSignal(ctx, scoped, timeout)
}

func (t *Transport) AwaitReply(ctx context.Context, match pager.ReplyMatchFunc, timeout time.Duration) (pager.Reply, error) {
	scoped := func(r pager.Reply) bool {
		return r.Message.ChatID == t.chat.ID && match(r)
	}
	return t.hub.AwaitReply(ctx, scoped, timeout)
}

func (t *Transport) Capabilities() pager.CapabilitySet { return t.caps }

func (t *Transport) markupFor(ref pager.MessageRef) *tele.ReplyMarkup {
	t.mu.Lock()
	defer t.mu.Unlock()
	symbols := t.symbols[ref]
	if len(symbols) == 0 {
		return nil
	}
	return markupForSymbols(symbols)
}

func (t *Transport) forget(ref pager.MessageRef) {
	t.mu.Lock()
	delete(t.symbols, ref)
	t.mu.Unlock()
}

func markupForSymbols(symbols []string) *tele.ReplyMarkup {
	row := make([]keyboard.InlineBtn, 0, len(symbols))
	for _, s := range symbols {
		row = append(row, keyboard.InlineBtn{Text: s, Unique: SignalKey, Data: s})
	}
	return keyboard.InlineButtonsRows(row)
}

// PagerOptions translates the pager config section into session options,
// leaving zero values to the pager defaults.
func PagerOptions(cfg coreconfig.PagerConfig) pager.Options {
	return pager.Options{
		PerPage:         cfg.PerPage,
		SessionTimeout:  time.Duration(cfg.SessionTimeoutSeconds) * time.Second,
		PromptTimeout:   time.Duration(cfg.PromptTimeoutSeconds) * time.Second,
		NoticeDelay:     time.Duration(cfg.NoticeDelaySeconds) * time.Second,
		HelpRevertDelay: time.Duration(cfg.HelpRevertSeconds) * time.Second,
	}
}
