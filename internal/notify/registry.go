package notify

import (
	"fmt"
	"log/slog"

	"github.com/donaldgifford/vaccine-alert/internal/config"
)

// channelBuilder constructs one kind of channel from configuration.
type channelBuilder struct {
	kind    string
	enabled func(*config.NotificationsConfig) bool
	build   func(*config.NotificationsConfig) (Channel, error)
}

// registry lists every channel kind in dispatch order.
var registry = []channelBuilder{
	{
		kind:    "telegram",
		enabled: func(c *config.NotificationsConfig) bool { return c.Telegram.Enabled },
		build: func(c *config.NotificationsConfig) (Channel, error) {
			var opts []TelegramOption
			if c.Telegram.APIURL != "" {
				opts = append(opts, WithTelegramAPIURL(c.Telegram.APIURL))
			}
			return NewTelegramChannel(c.Telegram.Token, c.Telegram.ChatID, opts...)
		},
	},
	{
		kind:    "desktop",
		enabled: func(c *config.NotificationsConfig) bool { return c.Desktop.Enabled },
		build: func(c *config.NotificationsConfig) (Channel, error) {
			return NewDesktopChannel(c.Desktop.Platform, c.Desktop.Title), nil
		},
	},
	{
		kind:    "discord",
		enabled: func(c *config.NotificationsConfig) bool { return c.Discord.Enabled },
		build: func(c *config.NotificationsConfig) (Channel, error) {
			return NewDiscordChannel(c.Discord.WebhookURL), nil
		},
	},
	{
		kind:    "webhook",
		enabled: func(c *config.NotificationsConfig) bool { return c.Webhook.Enabled },
		build: func(c *config.NotificationsConfig) (Channel, error) {
			return NewWebhookChannel(c.Webhook.URL,
				WithWebhookSecret(c.Webhook.Secret),
				WithWebhookHeaders(c.Webhook.Headers),
			), nil
		},
	},
	{
		kind:    "email",
		enabled: func(c *config.NotificationsConfig) bool { return c.Email.Enabled },
		build: func(c *config.NotificationsConfig) (Channel, error) {
			return NewEmailChannel(c.Email.Host, c.Email.Port, c.Email.From, c.Email.To,
				WithSMTPAuth(c.Email.Username, c.Email.Password),
			), nil
		},
	},
}

// Kinds returns every registered channel kind in dispatch order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for _, b := range registry {
		kinds = append(kinds, b.kind)
	}
	return kinds
}

// Build constructs every enabled channel. When none is enabled the result
// holds a single NoOpChannel.
func Build(cfg *config.NotificationsConfig, log *slog.Logger) ([]Channel, error) {
	var channels []Channel
	for _, b := range registry {
		if !b.enabled(cfg) {
			continue
		}
		ch, err := b.build(cfg)
		if err != nil {
			return nil, fmt.Errorf("building %s channel: %w", b.kind, err)
		}
		log.Debug("notification channel enabled", "channel", b.kind)
		channels = append(channels, ch)
	}

	if len(channels) == 0 {
		log.Warn("no notification channels enabled, alerts will only be logged")
		channels = append(channels, NewNoOpChannel(log))
	}

	return channels, nil
}
