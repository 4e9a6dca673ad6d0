// Package pager implements an interactive, page-based content browser driven
// by input signals on a single rendered message. It is transport-agnostic so
// it can be reused across chat platforms; the Telegram binding lives in
// core/telegram/interact.
package pager
