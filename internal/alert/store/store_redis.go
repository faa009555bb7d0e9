package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"talentgate/internal/alert/models"
	"talentgate/pkg/platform/sentinel"
)

const (
	redisAlertKeyPrefix = "alerts:alert:"
	redisAlertIndexKey  = "alerts:index"
	maxUpdateRetries    = 5
)

// RedisStore persists alerts as JSON blobs with a sorted-set index ordered by
// alert timestamp.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis constructs a Redis-backed alert store.
func NewRedis(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Save(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, alertKey(alert.ID), payload, 0)
		pipe.ZAdd(ctx, redisAlertIndexKey, redis.Z{Score: float64(alert.Timestamp.UnixMilli()), Member: alert.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Alert, error) {
	data, err := s.client.Get(ctx, alertKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Alert{}, sentinel.ErrNotFound
		}
		return models.Alert{}, fmt.Errorf("find alert: %w", err)
	}
	var alert models.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return models.Alert{}, fmt.Errorf("decode alert %s: %w: %w", id, sentinel.ErrCorrupt, err)
	}
	return alert, nil
}

// Update runs mutate under WATCH so concurrent writers to the same alert
// retry instead of overwriting each other.
func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*models.Alert) error) (models.Alert, error) {
	key := alertKey(id)
	var updated models.Alert

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("load alert: %w", err)
		}
		var alert models.Alert
		if err := json.Unmarshal(data, &alert); err != nil {
			return fmt.Errorf("decode alert %s: %w: %w", id, sentinel.ErrCorrupt, err)
		}
		if err := mutate(&alert); err != nil {
			return err
		}
		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("encode alert: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = alert
		return nil
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return models.Alert{}, err
		}
		return updated, nil
	}
	return models.Alert{}, fmt.Errorf("update alert %s: too much contention", id)
}

// List returns every decodable alert. Undecodable blobs are skipped with a
// warning so one bad record never hides the rest.
func (s *RedisStore) List(ctx context.Context) ([]models.Alert, error) {
	ids, err := s.client.ZRevRange(ctx, redisAlertIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list alert index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = alertKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	alerts := make([]models.Alert, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var alert models.Alert
		if err := json.Unmarshal([]byte(raw), &alert); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping undecodable alert",
					"alert_id", ids[i],
					"error", err,
				)
			}
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func alertKey(id string) string {
	return redisAlertKeyPrefix + id
}
