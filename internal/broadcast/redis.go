package broadcast

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

// RedisPublisher sends events to a Redis channel instead of local clients.
// Every instance runs a Relay that forwards the channel into its own Hub.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event string, payload any) error {
	msg, err := Encode(event, payload)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, msg).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish to %s", p.channel)
	}
	return nil
}

type Relay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	pubsub  *redis.PubSub
	done    chan struct{}
}

func NewRelay(rdb *redis.Client, channel string, hub *Hub) *Relay {
	return &Relay{rdb: rdb, channel: channel, hub: hub}
}

// Start subscribes to the channel and forwards messages until Stop.
func (r *Relay) Start(ctx context.Context) error {
	r.pubsub = r.rdb.Subscribe(ctx, r.channel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		r.pubsub.Close()
		return errors.Wrapf(err, "failed to subscribe to %s", r.channel)
	}

	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		for msg := range r.pubsub.Channel() {
			r.hub.Broadcast([]byte(msg.Payload))
		}
	}()

	logger.Log.Info("Relaying broadcasts from Redis", zap.String("channel", r.channel))
	return nil
}

func (r *Relay) Stop() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	<-r.done
	return err
}
