package redisclient

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestListQueue(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR_TEST")
	if addr == "" {
		t.Skip("REDIS_ADDR_TEST not set")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, "", "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	key := "test:queue:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })
	q := NewListQueue(rdb, key)

	for _, p := range []string{"first", "second"} {
		if err := q.Enqueue(ctx, []byte(p)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	if n, err := q.Len(ctx); err != nil || n != 2 {
		t.Fatalf("len: %d %v", n, err)
	}

	for _, want := range []string{"first", "second"} {
		got, err := q.Dequeue(ctx, time.Second)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if string(got) != want {
			t.Errorf("got %q want %q", got, want)
		}
	}

	if _, err := q.Dequeue(ctx, 100*time.Millisecond); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("expected ErrQueueEmpty, got %v", err)
	}
}
