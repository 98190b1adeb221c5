package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EmailQueueKey is the list shared by the API server and the notify worker.
const EmailQueueKey = "notify:email"

var ErrQueueEmpty = errors.New("queue empty")

// ListQueue is a FIFO on a Redis list: LPUSH to enqueue, BRPOP to dequeue.
type ListQueue struct {
	client *redis.Client
	key    string
}

func NewListQueue(client *redis.Client, key string) *ListQueue {
	return &ListQueue{
		client: client,
		key:    key,
	}
}

func (q *ListQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

// Dequeue waits up to wait for an item. It returns ErrQueueEmpty when the
// wait elapses with nothing to read.
func (q *ListQueue) Dequeue(ctx context.Context, wait time.Duration) ([]byte, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("brpop %s: %w", q.key, err)
	}

	// res is [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("brpop %s: unexpected reply %v", q.key, res)
	}
	return []byte(res[1]), nil
}

// Len reports the number of queued items.
func (q *ListQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
