package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/debt-ledger/internal/config"
	gateway "github.com/nimasrn/debt-ledger/internal/gateways"
	"github.com/nimasrn/debt-ledger/internal/notifier"
	"github.com/nimasrn/debt-ledger/internal/queue"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/prom"
	"github.com/nimasrn/debt-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)
	logger.Info("starting notifier", "version", version, "commit", commit, "date", date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-notifier",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	consumer, err := queue.NewQueue(ctx, redisAdap, queue.QueueConfig{
		Name:              cfg.QueueName,
		ConsumerGroup:     cfg.QueueConsumerGroup,
		ConsumerName:      cfg.QueueConsumerName,
		MaxRetries:        cfg.QueueMaxRetries,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		PollInterval:      cfg.QueuePollInterval,
		BatchSize:         cfg.QueueBatchSize,
		MaxLen:            cfg.QueueMaxLen,
		EnableDLQ:         cfg.QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	relays := make([]gateway.RelayConfig, 0, 2)
	for i, url := range cfg.MailRelayURLs() {
		relays = append(relays, gateway.RelayConfig{Name: relayName(i), URL: url})
	}
	client, err := gateway.NewClient(&gateway.Config{
		Relays:                  relays,
		Timeout:                 cfg.MailRelayTimeout,
		MaxRetries:              cfg.MailRelayRetries,
		RetryDelay:              cfg.MailRelayRetryDelay,
		MaxConns:                256,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
	})
	if err != nil {
		logger.Error("failed to create mail gateway", "error", err)
		return
	}
	for name, up := range client.Ping(ctx) {
		if !up {
			logger.Warn("mail relay is not healthy at startup", "relay", name)
		}
	}

	idempotencyConfig := notifier.DefaultIdempotencyConfig()
	idempotencyConfig.ProcessedTTL = cfg.NotifierIdempotency
	idempotency := notifier.NewIdempotencyService(redisAdap, idempotencyConfig)

	service := notifier.NewService(consumer, notifier.NewDebtorNotifier(client, idempotency, cfg.NotifierRecipient), cfg.NotifierWorkers)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNS); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsAddr, cfg.MetricsURI)

	if err = service.Start(ctx); err != nil {
		logger.Error("failed to start notifier", "error", err)
		return
	}

	<-ctx.Done()
	service.Stop()
	for _, st := range client.Stats() {
		logger.Info("mail relay stats", "relay", st.Name, "requests", st.TotalRequests,
			"failed", st.FailedReqs, "success_rate", st.SuccessRate, "avg_latency_ms", st.AvgLatencyMs)
	}
	logger.Sync()
}

func relayName(i int) string {
	if i == 0 {
		return "primary"
	}
	return fmt.Sprintf("fallback-%d", i)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if path, ok := strings.CutPrefix(v, "--env="); ok {
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}
