package channel

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"talentgate/internal/alert/models"
	"talentgate/pkg/platform/repository"
	"talentgate/pkg/platform/upstream"
)

const (
	DefaultDashboardTopic = "alerts:dashboard"
	defaultFeedSize       = 200
)

// RedisPublisher is the subset of the go-redis client the dashboard uses.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Dashboard pushes alerts to live dashboards. With a Redis client it
// publishes on a pub/sub channel; without one it keeps an in-process feed
// of the most recent alerts.
type Dashboard struct {
	redis RedisPublisher
	topic string
	feed  *repository.Ring[models.Alert]
}

// NewDashboard builds the dashboard route. A nil publisher selects the
// in-process feed.
func NewDashboard(publisher RedisPublisher, topic string) *Dashboard {
	if topic == "" {
		topic = DefaultDashboardTopic
	}
	return &Dashboard{
		redis: publisher,
		topic: topic,
		feed:  repository.NewRing[models.Alert](defaultFeedSize),
	}
}

func (d *Dashboard) Channel() models.Channel {
	return models.ChannelDashboard
}

func (d *Dashboard) Send(ctx context.Context, alert models.Alert) error {
	if d.redis == nil {
		d.feed.AppendCapped(alert.Clone())
		return nil
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return deliveryError(models.ChannelDashboard, upstream.New(upstream.CategoryInternal, "dashboard", "encode alert", err))
	}
	if err := d.redis.Publish(ctx, d.topic, payload).Err(); err != nil {
		return deliveryError(models.ChannelDashboard, upstream.FromTransport(ctx, "dashboard", err))
	}
	return nil
}

// Recent returns the in-process feed, oldest first. It is empty when
// publishing to Redis.
func (d *Dashboard) Recent() []models.Alert {
	return d.feed.Items()
}
