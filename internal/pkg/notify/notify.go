// Package notify sends short operational alerts to administrators.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Noop is used when no bot is configured.
type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts Markdown messages to one admin chat.
type Telegram struct {
	bot    sender
	chatID int64
}

// NewTelegram connects to the Bot API; it fails on an invalid token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("telegram notifier ready", "bot", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// ArrivalAlert formats a late or absent check-in for the admin chat.
func ArrivalAlert(fullName, matricule, status, clock string) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }
	return fmt.Sprintf("*%s* check-in\n%s (%s) scanned at %s", esc(status), esc(fullName), esc(matricule), esc(clock))
}
