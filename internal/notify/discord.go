package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const (
	colorGreen = 0x2ECC71

	// Discord embed limits.
	discordMaxFields     = 25
	discordFieldValueMax = 1024
	discordDescMax       = 4096
)

// DiscordChannel delivers alerts via a Discord webhook.
type DiscordChannel struct {
	webhookURL string
	client     *http.Client
}

// DiscordOption configures a DiscordChannel.
type DiscordOption func(*DiscordChannel)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordChannel) {
		d.client = c
	}
}

// NewDiscordChannel creates a new DiscordChannel.
func NewDiscordChannel(webhookURL string, opts ...DiscordOption) *DiscordChannel {
	d := &DiscordChannel{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordFooter      `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// Name implements Channel.
func (d *DiscordChannel) Name() string { return "discord" }

// Send posts the event as a single embed with one field per open center.
func (d *DiscordChannel) Send(ctx context.Context, event domain.AlertEvent) error {
	return d.post(ctx, discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(&event)}})
}

func buildEmbed(event *domain.AlertEvent) discordEmbed {
	embed := discordEmbed{
		Title:       fmt.Sprintf("Vaccine slots open: %s", event.Location),
		Color:       colorGreen,
		Description: fmt.Sprintf("%d center(s) with open capacity.", len(event.OpenCenters)),
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
		Footer:      &discordFooter{Text: event.ID},
	}

	limit := min(len(event.OpenCenters), discordMaxFields)
	for i := range limit {
		c := &event.OpenCenters[i]
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("Center %d", c.ID)
		}
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  name,
			Value: truncateText(sessionSummary(c), discordFieldValueMax),
		})
	}

	if len(event.OpenCenters) > discordMaxFields {
		embed.Description = truncateText(fmt.Sprintf("%s Showing the first %d.",
			embed.Description, discordMaxFields), discordDescMax)
	}

	return embed
}

func sessionSummary(c *domain.Center) string {
	var b bytes.Buffer
	for i := range c.Sessions {
		s := &c.Sessions[i]
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d dose(s), %d+", s.Date, s.AvailableCapacity, s.MinAgeLimit)
		if s.Vaccine != "" {
			fmt.Fprintf(&b, ", %s", s.Vaccine)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func (d *DiscordChannel) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
