package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ridepool/ridepool-backend/internal/models"
)

// InitRedis connects and pings. Redis is optional; callers skip the cache
// and the pub/sub notifier when it is absent.
func InitRedis(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisNotifier publishes lifecycle events on a Redis channel so other
// processes (or a future fan-out worker) can observe them. Fire-and-forget:
// publish failures are logged and dropped.
type RedisNotifier struct {
	Client  *redis.Client
	Channel string
	Log     *slog.Logger
}

type redisEvent struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

func (n *RedisNotifier) Publish(topic string, payload any) {
	data, err := json.Marshal(redisEvent{Type: topic, Data: payload, Timestamp: time.Now().Unix()})
	if err != nil {
		n.Log.Warn("marshal event", "topic", topic, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Client.Publish(ctx, n.Channel, data).Err(); err != nil {
		n.Log.Warn("publish event", "topic", topic, "err", err)
	}
}

// SearchCache keeps recent search responses keyed by the resolved query.
// The TTL is short; staleness only delays a new ride's visibility, never
// corrupts booking state.
type SearchCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func (c *SearchCache) Get(ctx context.Context, key string) ([]models.Ride, bool) {
	data, err := c.Client.Get(ctx, "search:"+key).Result()
	if err != nil {
		return nil, false
	}

	var rides []models.Ride
	if err := json.Unmarshal([]byte(data), &rides); err != nil {
		return nil, false
	}
	return rides, true
}

func (c *SearchCache) Set(ctx context.Context, key string, rides []models.Ride) {
	data, err := json.Marshal(rides)
	if err != nil {
		return
	}
	// best effort; a missed cache write is just a query next time
	_ = c.Client.Set(ctx, "search:"+key, data, c.TTL).Err()
}
