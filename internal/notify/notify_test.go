package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (n *recordingNotifier) Send(ctx context.Context, msg Message) error {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type panickingNotifier struct{}

func (panickingNotifier) Send(context.Context, Message) error {
	panic("smtp exploded")
}

type memoryQueue struct {
	items [][]byte
	err   error
}

func (q *memoryQueue) Enqueue(_ context.Context, payload []byte) error {
	if q.err != nil {
		return q.err
	}
	q.items = append(q.items, payload)
	return nil
}

var activation = Message{To: "ann@example.com", Subject: "Account Activation", Body: "Please activate your account."}

func TestDispatcherDelivers(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDispatcher(n, time.Second, zap.NewNop())

	d.Dispatch(activation)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if len(n.sent) != 1 || n.sent[0] != activation {
		t.Fatalf("sent: %+v", n.sent)
	}
}

func TestDispatcherLogsAndDropsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := &recordingNotifier{err: errors.New("connection refused")}
	d := NewDispatcher(n, time.Second, zap.New(core))

	d.Dispatch(activation)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	entries := logs.FilterMessage("notification failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["to"]; got != activation.To {
		t.Errorf("to field: got %v", got)
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := NewDispatcher(panickingNotifier{}, time.Second, zap.New(core))

	d.Dispatch(activation)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if logs.FilterMessage("notifier panicked").Len() != 1 {
		t.Error("expected panic to be logged")
	}
}

func TestDispatcherDoesNotBlockCaller(t *testing.T) {
	n := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(n, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		d.Dispatch(activation)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a slow notifier")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline while send is in flight, got %v", err)
	}

	close(n.block)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestDispatcherTimesOutSend(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(n, 10*time.Millisecond, zap.New(core))

	d.Dispatch(activation)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if logs.FilterMessage("notification failed").Len() != 1 {
		t.Error("expected timed out send to be logged")
	}
}

func TestQueueNotifierRoundTrip(t *testing.T) {
	q := &memoryQueue{}
	n := NewQueueNotifier(q)

	if err := n.Send(context.Background(), activation); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(q.items) != 1 {
		t.Fatalf("expected 1 queued item, got %d", len(q.items))
	}

	got, err := DecodeMessage(q.items[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != activation {
		t.Errorf("got %+v", got)
	}
}

func TestQueueNotifierEnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	n := NewQueueNotifier(&memoryQueue{err: boom})

	if err := n.Send(context.Background(), activation); !errors.Is(err, boom) {
		t.Errorf("expected wrapped enqueue error, got %v", err)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	if err := n.Send(context.Background(), activation); err != nil {
		t.Fatalf("send: %v", err)
	}
	if logs.FilterField(zap.String("to", activation.To)).Len() != 1 {
		t.Error("expected message to be logged")
	}
}
