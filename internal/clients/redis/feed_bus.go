package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suitewell/suitewell-backend/internal/logger"
	"github.com/suitewell/suitewell-backend/internal/sse"
)

// FeedBus bridges session change-feed messages across server instances
// over a Redis pub/sub channel, so a display may be connected to any
// instance and still see every write.
type FeedBus interface {
	Publish(ctx context.Context, msg sse.FeedMessage) error
	StartForwarder(ctx context.Context, onMsg func(m sse.FeedMessage)) error
	Close() error
}

type feedBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewFeedBus(log *logger.Logger) (FeedBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "session-feed"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &feedBus{
		log:     log.With("service", "RedisFeedBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *feedBus) Publish(ctx context.Context, msg sse.FeedMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis feed bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *feedBus) StartForwarder(ctx context.Context, onMsg func(m sse.FeedMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis feed bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg sse.FeedMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis feed payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (b *feedBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
