package services

import (
	"context"

	"github.com/suitewell/suitewell-backend/internal/clients/redis"
	"github.com/suitewell/suitewell-backend/internal/sse"
)

// FeedEmitter decouples services from how change-feed messages reach the
// displays: straight into the local hub, or through Redis when several
// instances share one feed.
type FeedEmitter interface {
	Emit(ctx context.Context, msg sse.FeedMessage)
}

type HubEmitter struct{ Hub *sse.Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg sse.FeedMessage) {
	e.Hub.Broadcast(msg)
}

type BusEmitter struct{ Bus redis.FeedBus }

func (e *BusEmitter) Emit(ctx context.Context, msg sse.FeedMessage) {
	_ = e.Bus.Publish(ctx, msg)
}
