package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tele "gopkg.in/telebot.v4"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const defaultTelegramURL = "https://api.telegram.org"

// chatRecipient addresses a chat by numeric id or @channel username.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

// TelegramChannel sends alert text to one chat through the Bot API.
type TelegramChannel struct {
	bot    *tele.Bot
	chat   chatRecipient
	apiURL string
	client *http.Client
}

// TelegramOption configures a TelegramChannel.
type TelegramOption func(*TelegramChannel)

// WithTelegramAPIURL overrides the Bot API root.
func WithTelegramAPIURL(u string) TelegramOption {
	return func(t *TelegramChannel) {
		t.apiURL = u
	}
}

// WithTelegramHTTPClient sets a custom HTTP client for Bot API calls.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramChannel) {
		t.client = c
	}
}

// NewTelegramChannel creates a channel for the bot identified by token.
// The bot is built offline so construction makes no network calls.
func NewTelegramChannel(token, chatID string, opts ...TelegramOption) (*TelegramChannel, error) {
	t := &TelegramChannel{
		chat:   chatRecipient(chatID),
		apiURL: defaultTelegramURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     t.apiURL,
		Token:   token,
		Client:  t.client,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	t.bot = bot

	return t, nil
}

// Name implements Channel.
func (t *TelegramChannel) Name() string { return "telegram" }

// Send implements Channel via sendMessage.
func (t *TelegramChannel) Send(ctx context.Context, event domain.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := truncateText(event.Message, telegramTextLimit)
	if _, err := t.bot.Send(t.chat, text, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
