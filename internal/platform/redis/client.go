// Package redis opens the shared go-redis client used by the alert store and
// the dashboard channel.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Open parses url, connects and pings. When reg is non-nil the pool stats
// are exported as talentgate_redis_pool_* series.
func Open(ctx context.Context, url string, reg prometheus.Registerer) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if reg != nil {
		if err := reg.Register(NewPoolCollector(client)); err != nil {
			client.Close() //nolint:errcheck
			return nil, fmt.Errorf("register redis metrics: %w", err)
		}
	}
	return client, nil
}

// Check returns a readiness probe for client.
func Check(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// StatsSource is the part of *redis.Client the collector reads.
type StatsSource interface {
	PoolStats() *redis.PoolStats
}

// PoolCollector exports go-redis pool statistics at scrape time.
type PoolCollector struct {
	src StatsSource

	hits, misses, timeouts, stale *prometheus.Desc
	total, idle                   *prometheus.Desc
}

func NewPoolCollector(src StatsSource) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("talentgate_redis_pool_"+name, help, nil, nil)
	}
	return &PoolCollector{
		src:      src,
		hits:     desc("hits_total", "Times a free connection was found in the pool"),
		misses:   desc("misses_total", "Times a free connection was not found in the pool"),
		timeouts: desc("timeouts_total", "Times a wait for a connection timed out"),
		stale:    desc("stale_conns_total", "Stale connections removed from the pool"),
		total:    desc("total_conns", "Connections in the pool"),
		idle:     desc("idle_conns", "Idle connections in the pool"),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.hits, c.misses, c.timeouts, c.stale, c.total, c.idle} {
		ch <- d
	}
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.PoolStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.stale, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns))
}
