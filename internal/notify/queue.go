package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Enqueuer is the write side of a message queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload []byte) error
}

// QueueNotifier hands messages to a queue for a worker to deliver.
type QueueNotifier struct {
	queue Enqueuer
}

func NewQueueNotifier(queue Enqueuer) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := n.queue.Enqueue(ctx, payload); err != nil {
		return fmt.Errorf("enqueue message for %s: %w", msg.To, err)
	}
	return nil
}

// DecodeMessage is the inverse of the payload written by QueueNotifier.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}
