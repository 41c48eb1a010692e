package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ingestedStream   = "games.ingested.baseball"
	recomputedStream = "stats.recomputed.baseball"
)

// RedisPublisher publishes ingest events to Redis streams so downstream
// consumers (scoreboards, notification bots) can react to new games.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on an existing Redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// PublishGameIngested appends a game-ingested event to the stream.
func (rp *RedisPublisher) PublishGameIngested(ctx context.Context, event interface{}) error {
	return rp.publish(ctx, ingestedStream, event)
}

// PublishStatsRecomputed appends a stats-recomputed marker to the stream.
func (rp *RedisPublisher) PublishStatsRecomputed(ctx context.Context, league, season string) error {
	return rp.publish(ctx, recomputedStream, map[string]string{
		"league": league,
		"season": season,
	})
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
