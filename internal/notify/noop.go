package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// NoOpChannel logs and discards alerts. It is used when no channel is
// configured so that availability changes still show up in the log.
type NoOpChannel struct {
	log *slog.Logger
}

// NewNoOpChannel creates a channel that discards alerts with a log message.
func NewNoOpChannel(log *slog.Logger) *NoOpChannel {
	return &NoOpChannel{log: log}
}

// Name implements Channel.
func (n *NoOpChannel) Name() string { return "noop" }

// Send logs and discards the event.
func (n *NoOpChannel) Send(_ context.Context, event domain.AlertEvent) error {
	n.log.Info("notification discarded (no channel configured)",
		"event_id", event.ID,
		"location", event.Location.String(),
		"open_centers", len(event.OpenCenters),
	)
	return nil
}
