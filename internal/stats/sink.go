// Package stats publishes a best-effort, observational snapshot of queue
// depths and pairing counts to Redis, using a single long-lived client
// verified with a ping on connect. It is a pure side channel: losing
// Redis never blocks or slows matching, and nothing here is read back to
// make matching decisions.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"randomchat/config"
	"randomchat/internal/logx"
	"randomchat/internal/matchengine"
)

const (
	snapshotKey     = "randomchat:stats:snapshot"
	snapshotChannel = "randomchat:stats:updates"
)

// Sink periodically publishes Engine snapshots to Redis.
type Sink struct {
	client *redis.Client
}

// Connect dials Redis and verifies connectivity. Returns an error if the
// initial ping fails; callers may choose to run without a Sink rather than
// fail startup, since stats are diagnostic only.
func Connect(cfg config.RedisConfig) (*Sink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Sink{client: client}, nil
}

// Close releases the underlying Redis connection.
func (s *Sink) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Run publishes snapshots on interval until ctx is canceled. Every
// publish is best-effort: a Redis error is logged and the loop continues,
// never propagated to the caller — the matching path must never depend
// on this succeeding.
func (s *Sink) Run(ctx context.Context, engine *matchengine.Engine, interval time.Duration) {
	if s == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publish(ctx, engine.Snapshot())
		}
	}
}

func (s *Sink) publish(ctx context.Context, snap matchengine.Snapshot) {
	data, err := json.Marshal(snapshotView{
		Connections: snap.Connections,
		Paired:      snap.Paired,
		QueueDepths: snap.QueueDepths,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		logx.Error(err, "failed to marshal stats snapshot")
		return
	}

	if err := s.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		logx.Warn("failed to publish stats snapshot to redis", "err", err.Error())
		return
	}
	if err := s.client.Publish(ctx, snapshotChannel, data).Err(); err != nil {
		logx.Warn("failed to publish stats update to redis channel", "err", err.Error())
	}
}

type snapshotView struct {
	Connections int                            `json:"connections"`
	Paired      int                            `json:"paired"`
	QueueDepths map[matchengine.Preference]int `json:"queue_depths"`
	PublishedAt time.Time                      `json:"published_at"`
}
