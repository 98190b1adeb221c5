package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher sends messages in the background. A failed send is logged and
// dropped; there is no retry.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		log:      log,
	}
}

// Dispatch returns immediately. The send runs on its own context so that the
// end of the originating request does not cancel it.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notifier panicked", zap.String("to", msg.To), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Send(ctx, msg); err != nil {
			d.log.Warn("notification failed", zap.String("to", msg.To), zap.Error(err))
			return
		}
		d.log.Debug("notification sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
