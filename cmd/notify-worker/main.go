package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/logging"
	"github.com/hackgods/appointment-booking/internal/notify"
	redisclient "github.com/hackgods/appointment-booking/internal/redis"
)

const pollWait = 5 * time.Second

func main() {
	os.Exit(work())
}

func work() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if cfg.EmailUser == "" {
		log.Error("EMAIL_USER is required for the notify worker")
		return 1
	}

	log.Info("notify-worker starting up", zap.String("env", cfg.Env), zap.String("queue", redisclient.EmailQueueKey))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Error("redis connection error", zap.Error(err))
		return 1
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("error closing redis", zap.Error(err))
		}
	}()
	log.Info("connected to Redis")

	queue := redisclient.NewListQueue(rdb, redisclient.EmailQueueKey)
	mailer := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping notify worker")
			return 0
		default:
		}

		payload, err := queue.Dequeue(rootCtx, pollWait)
		if err != nil {
			if errors.Is(err, redisclient.ErrQueueEmpty) || rootCtx.Err() != nil {
				continue
			}
			log.Warn("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		deliver(rootCtx, mailer, payload, cfg.NotifyTimeout, log)
	}
}

// deliver sends one queued message. Failures are logged and the message is
// dropped.
func deliver(ctx context.Context, n notify.Notifier, payload []byte, timeout time.Duration, log *zap.Logger) {
	msg, err := notify.DecodeMessage(payload)
	if err != nil {
		log.Warn("discarding malformed message", zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	if err := n.Send(sendCtx, msg); err != nil {
		log.Warn("notification failed", zap.String("to", msg.To), zap.Error(err))
		return
	}
	log.Info("notification sent", zap.String("to", msg.To), zap.Duration("took", time.Since(start)))
}
