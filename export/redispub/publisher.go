// Package redispub publishes JSON-encoded snapshots to Redis: a
// PUBLISH for live subscribers plus a latest-snapshot key for pollers.
package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/itsneelabh/pulse/core"
	"github.com/itsneelabh/pulse/metric"
)

// Options configures the publisher.
type Options struct {
	// Addr is the Redis host:port. Required.
	Addr     string
	Password string
	DB       int

	// Channel receives one PUBLISH per snapshot. Defaults to
	// "pulse.snapshots".
	Channel string

	// LatestKey holds the most recent snapshot. Defaults to
	// "pulse:snapshot:latest".
	LatestKey string

	// KeyTTL expires the latest-snapshot key so a stopped process does
	// not serve stale data forever. Defaults to 5 minutes.
	KeyTTL time.Duration
}

// Publisher implements report.Reporter over a Redis connection.
type Publisher struct {
	client    *redis.Client
	channel   string
	latestKey string
	keyTTL    time.Duration
	closed    atomic.Bool
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(ctx context.Context, opts Options) (*Publisher, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis publisher requires an address")
	}
	if opts.Channel == "" {
		opts.Channel = "pulse.snapshots"
	}
	if opts.LatestKey == "" {
		opts.LatestKey = "pulse:snapshot:latest"
	}
	if opts.KeyTTL <= 0 {
		opts.KeyTTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &Publisher{
		client:    client,
		channel:   opts.Channel,
		latestKey: opts.LatestKey,
		keyTTL:    opts.KeyTTL,
	}, nil
}

// Name implements report.Reporter.
func (p *Publisher) Name() string { return "redis" }

// ReportSnapshot implements report.Reporter.
func (p *Publisher) ReportSnapshot(ctx context.Context, snapshot *metric.Snapshot) error {
	if p.closed.Load() {
		return fmt.Errorf("redis publisher: %w", core.ErrReporterStopped)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snapshot.ID, err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.channel, data)
	pipe.Set(ctx, p.latestKey, data, p.keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

// Close releases the Redis connection. Later ReportSnapshot calls fail
// with core.ErrReporterStopped. Idempotent.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.client.Close()
}
