package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/notify"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.Mailgun.APIKey != "" {
		mailgun, err := notify.NewMailgunSender(cfg.Mailgun)
		if err != nil {
			logger.Fatal("failed to init mailgun", zap.Error(err))
		}
		sender = mailgun
	} else {
		logger.Warn("mailgun not configured, emails are only logged")
	}

	conn, err := amqp.Dial(cfg.Queue.URL)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := notify.DeclareQueue(ch, cfg.Queue.EmailQueue); err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}
	if err := ch.Qos(cfg.Queue.Prefetch, 0, false); err != nil {
		logger.Fatal("failed to set prefetch", zap.Error(err))
	}

	deliveries, err := ch.Consume(cfg.Queue.EmailQueue, cfg.App.Name+"-email-worker", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("failed to consume queue", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deliverer := &notify.Deliverer{
		Sender:  sender,
		Retrier: notify.NewQueueRetrier(ch, cfg.Queue.EmailQueue),
		Policy:  notify.NewRetryPolicy(cfg.Queue),
		Logger:  logger,
	}

	logger.Info("email worker started",
		zap.String("queue", cfg.Queue.EmailQueue),
		zap.Int("max_attempts", cfg.Queue.MaxAttempts))
	worker.RunEmailConsumer(ctx, deliveries, deliverer, logger)
	logger.Info("email worker stopped")
}
