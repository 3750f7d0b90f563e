package notify

import (
	"context"
	"time"

	"github.com/GlebRadaev/exchange/internal/metrics"
	"go.uber.org/zap"
)

//go:generate mockgen -source=relay.go -destination=mock_relay.go -package=notify

const publishTimeout = 2 * time.Second

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// Relay publishes events on behalf of the services. Delivery is best effort:
// publish errors are logged and counted, never returned.
type Relay struct {
	bus Publisher
}

func NewRelay(bus Publisher) *Relay {
	return &Relay{bus: bus}
}

// NotifyStatusChange tells the owner and the admin sessions that a transaction reached a terminal status.
func (r *Relay) NotifyStatusChange(ctx context.Context, userID int, change StatusChange) {
	event := Event{Kind: KindStatusChange, Data: change}
	r.publish(ctx, UserChannel(userID), event)
	r.publish(ctx, AdminChannel, event)
}

func (r *Relay) NotifyNewPending(ctx context.Context, summary PendingSummary) {
	r.publish(ctx, AdminChannel, Event{Kind: KindNewPending, Data: summary})
}

func (r *Relay) publish(ctx context.Context, channel string, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := r.bus.Publish(ctx, channel, event)
	metrics.Notifications.WithLabelValues(string(event.Kind), metrics.Result(err)).Inc()
	if err != nil {
		zap.L().Warn("failed to publish notification",
			zap.String("channel", channel),
			zap.String("kind", string(event.Kind)),
			zap.Error(err),
		)
	}
}
