package telegram

import (
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Telegram limit for one text message.
const MaxMessageLength = 4096

const sendTimeout = 10 * time.Second

// Notifier sends operator notifications about orders, reports and alerts.
type Notifier interface {
	SendMessage(text string) error
}

type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient connects the bot and verifies the token.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// NewNotifier returns a real client when a bot token is configured and a no-op notifier otherwise.
func NewNotifier(botToken string, chatID int64) (Notifier, error) {
	if botToken == "" || chatID == 0 {
		return NopNotifier{}, nil
	}
	return NewClient(botToken, chatID)
}

// SendMessage sends text without a parse mode; broker errors and job names are
// not valid Markdown.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, Truncate(text, MaxMessageLength))
	msg.DisableWebPagePreview = true
	_, err := c.bot.Send(msg)
	return err
}

// Truncate shortens text to at most limit runes.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) SendMessage(string) error { return nil }
