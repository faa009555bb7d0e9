package channel

import (
	"context"
	"encoding/json"

	"talentgate/internal/alert/models"
	"talentgate/internal/platform/kafka/producer"
	"talentgate/pkg/platform/upstream"
)

// Producer is the subset of the Kafka producer the push route needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Push publishes alerts to a Kafka topic consumed by the mobile push gateway.
// Records are keyed by subject so a subject's alerts stay ordered.
type Push struct {
	producer Producer
	topic    string
}

func NewPush(p Producer, topic string) *Push {
	return &Push{producer: p, topic: topic}
}

func (p *Push) Channel() models.Channel {
	return models.ChannelPush
}

func (p *Push) Send(ctx context.Context, alert models.Alert) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return deliveryError(models.ChannelPush, upstream.New(upstream.CategoryInternal, "push", "encode alert", err))
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(alert.SubjectID),
		Value: value,
		Headers: map[string]string{
			"alert_type": string(alert.Type),
			"priority":   string(alert.Priority),
		},
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		return deliveryError(models.ChannelPush, upstream.FromTransport(ctx, "push", err))
	}
	return nil
}
