package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis list analysis jobs are pushed to.
const DefaultKey = "matcher:analysis:jobs"

// RedisQueue is a FIFO job list: producers LPUSH, workers BRPOP.
type RedisQueue struct {
	Client *redis.Client
	Key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{Client: client, Key: key}
}

// Send pushes an encoded message onto the list.
func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode queue message: %w", err)
	}
	if err := q.Client.LPush(ctx, q.Key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", q.Key, err)
	}
	return nil
}

// Receive pops the oldest message, waiting up to wait.
func (q *RedisQueue) Receive(ctx context.Context, wait time.Duration) (string, bool, error) {
	res, err := q.Client.BRPop(ctx, wait, q.Key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis brpop %s: %w", q.Key, err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return "", false, fmt.Errorf("redis brpop %s: unexpected reply length %d", q.Key, len(res))
	}
	return res[1], true, nil
}

var (
	_ Client   = (*RedisQueue)(nil)
	_ Receiver = (*RedisQueue)(nil)
)
