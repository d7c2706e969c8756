// cmd/intake-consumer/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"intake-service/internal/broker"
	"intake-service/internal/common/config"
	"intake-service/internal/common/database"
	"intake-service/internal/common/logger"
	"intake-service/internal/models"
	"intake-service/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake consumer...",
		zap.String("topic", cfg.Broker.Topic),
		zap.String("group", cfg.Broker.Group),
		zap.String("consumer", cfg.Broker.ConsumerName),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *database.RedisClient
	for attempt := 1; ; attempt++ {
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = rdb.Ping(ctx)
		}
		if err == nil {
			break
		}
		if attempt >= 10 {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		zapLog.Warn("Redis connection failed, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt),
		)
		time.Sleep(2 * time.Second)
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// Email notification is an optional side effect of consumption; message
	// acknowledgment never depends on it.
	var notifier *notify.EmailNotifier
	if cfg.Notifications.Email.Enabled {
		notifier, err = notify.NewEmailNotifier(ctx, notify.Config{
			FromEmail: cfg.Notifications.Email.FromEmail,
			ToEmail:   cfg.Notifications.Email.ToEmail,
			AWSRegion: cfg.Notifications.AWS.Region,
		}, log)
		if err != nil {
			zapLog.Fatal("email notifier init failed", zap.Error(err))
		}
		zapLog.Info("Email notification enabled", zap.String("to", cfg.Notifications.Email.ToEmail))
	}

	handler := func(ctx context.Context, event *models.ApplicationEvent) error {
		if notifier == nil {
			return nil
		}
		return notifier.NotifyNewApplication(ctx, event)
	}

	consumer := broker.NewConsumer(rdb.Client, cfg.Broker, handler, log)
	if err := consumer.EnsureGroup(ctx); err != nil {
		zapLog.Fatal("consumer group create failed", zap.Error(err))
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		zapLog.Info("Shutting down intake consumer...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		zapLog.Fatal("consumer stopped with error", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
