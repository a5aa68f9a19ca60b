package fanout

import (
	"context"
	"log/slog"

	"github.com/corray333/backend-labs/pos/internal/service/models/event"
)

type localSink interface {
	Broadcast(ctx context.Context, clientID int64, evt event.Event)
}

type remoteSink interface {
	Broadcast(ctx context.Context, clientID int64, evt event.Event) error
}

// Broadcaster pushes each event to connected screens and to the broker.
// Failures are logged and never reach the caller.
type Broadcaster struct {
	local  localSink
	remote remoteSink
}

// NewBroadcaster creates a new Broadcaster. remote may be nil.
func NewBroadcaster(local localSink, remote remoteSink) *Broadcaster {
	return &Broadcaster{
		local:  local,
		remote: remote,
	}
}

func (b *Broadcaster) Broadcast(ctx context.Context, clientID int64, evt event.Event) {
	b.local.Broadcast(ctx, clientID, evt)

	if b.remote == nil {
		return
	}

	if err := b.remote.Broadcast(context.WithoutCancel(ctx), clientID, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "event", evt.Name, "client_id", clientID, "error", err)
	}
}
