package realtime

import (
	"context"

	"github.com/channelsync/backend/internal/domain/channel"
)

// NopBroadcaster discards all events. Used when the realtime sink is
// disabled in configuration.
type NopBroadcaster struct{}

// Publish discards the event.
func (NopBroadcaster) Publish(ctx context.Context, event channel.ActionEvent) error {
	return nil
}

var _ channel.Broadcaster = NopBroadcaster{}
