package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/db"
	"github.com/hackgods/appointment-booking/internal/logging"
	"github.com/hackgods/appointment-booking/internal/notify"
	redisclient "github.com/hackgods/appointment-booking/internal/redis"
)

const version = "0.1.0"

func main() {
	os.Exit(serve())
}

// serve returns the process exit code so deferred log flushing runs first.
func serve() int {
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

	if err := run(cfg, log); err != nil {
		log.Error("api-server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
		zap.String("notifier", cfg.Notifier),
	)
	if !cfg.HashPasswords {
		log.Warn("HASH_PASSWORDS is off: passwords are stored as submitted")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCtx, cancelStore := context.WithTimeout(rootCtx, 10*time.Second)
	repo, closeStore, err := db.OpenRepository(storeCtx, cfg)
	cancelStore()
	if err != nil {
		return fmt.Errorf("store connection: %w", err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.Warn("error closing store", zap.Error(err))
		}
	}()
	log.Info("connected to store", zap.String("driver", cfg.StoreDriver))

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("error closing redis", zap.Error(err))
			}
		}()
		log.Info("connected to Redis")
	}

	dispatcher := notify.NewDispatcher(buildNotifier(cfg, rdb, log), cfg.NotifyTimeout, log)
	svc := booking.NewService(repo, dispatcher, cfg, log)

	handler := api.NewRouter(api.RouterConfig{
		Service:         svc,
		Redis:           rdb,
		RegisterLimiter: api.NewRateLimiter(rootCtx, cfg.RegisterRate, cfg.RegisterBurst),
		Logger:          log,
		Env:             cfg.Env,
		Version:         version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
		log.Info("shutting down api-server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn("pending notifications dropped", zap.Error(err))
	}

	return nil
}

func buildNotifier(cfg config.Config, rdb *redis.Client, log *zap.Logger) notify.Notifier {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	case config.NotifierQueue:
		return notify.NewQueueNotifier(redisclient.NewListQueue(rdb, redisclient.EmailQueueKey))
	default:
		return notify.NewLogNotifier(log)
	}
}
