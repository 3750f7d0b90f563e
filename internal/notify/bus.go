package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "exchange:"

// Deliverer hands an encoded event to the subscribers of channel.
type Deliverer interface {
	Deliver(channel string, data []byte)
}

// LocalBus delivers events in-process. Used when no Redis is configured.
type LocalBus struct {
	sink Deliverer
}

func NewLocalBus(sink Deliverer) *LocalBus {
	return &LocalBus{sink: sink}
}

func (b *LocalBus) Publish(_ context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	b.sink.Deliver(channel, data)
	return nil
}

// RedisBus fans events out through Redis pub/sub so every instance's hub sees them.
type RedisBus struct {
	client redis.UniversalClient
}

func NewRedisBus(client redis.UniversalClient) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, channelPrefix+channel, data).Err()
}

// Run forwards every published event to sink until ctx is done.
func (b *RedisBus) Run(ctx context.Context, sink Deliverer) error {
	sub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	zap.L().Info("subscribed to notification channels", zap.String("pattern", channelPrefix+"*"))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			sink.Deliver(strings.TrimPrefix(msg.Channel, channelPrefix), []byte(msg.Payload))
		}
	}
}
