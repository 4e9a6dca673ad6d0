// Package interact routes incoming Telegram updates to pagination sessions
// waiting on them and provides the telebot-backed pager transport. It plays
// the role a per-user FSM manager would: while a session is awaiting input,
// the hub owns that user's next matching update.
package interact
