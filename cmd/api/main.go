package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/nimasrn/debt-ledger/internal/auth"
	"github.com/nimasrn/debt-ledger/internal/config"
	"github.com/nimasrn/debt-ledger/internal/handlers"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/queue"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/nimasrn/debt-ledger/internal/storage"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/pg"
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

	zone, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		logger.Error("invalid business timezone", "timezone", cfg.BusinessTimezone, "error", err)
		return
	}
	model.SetBusinessZone(zone)
	logger.Info("starting api", "version", version, "commit", commit, "date", date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pg.CreateReadWrite(cfg.ReadDB(), cfg.WriteDB(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName,
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	events, err := queue.NewQueue(ctx, redisAdap, queue.QueueConfig{
		Name:          cfg.QueueName,
		ConsumerGroup: cfg.QueueConsumerGroup,
		MaxRetries:    cfg.QueueMaxRetries,
		MaxLen:        cfg.QueueMaxLen,
		EnableDLQ:     cfg.QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	store, err := storage.New(ctx, cfg.StorageDriver, cfg.StorageLocalDir, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Error("failed creating file storage", "error", err)
		return
	}

	// repositories
	debtorRepo := repository.NewDebtorRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// services
	tokens := auth.NewJWTManager(cfg.JwtSecret, cfg.JwtIssuer, cfg.JwtTTL)
	uploadService := services.NewUploadService(store, userRepo)
	ledgerService := services.NewLedgerService(debtorRepo, transactionRepo, uploadService)
	debtorService := services.NewDebtorService(debtorRepo, transactionRepo, ledgerService, events, services.DebtorOptions{
		Limit:     cfg.DebtorLimit,
		Retention: cfg.PurgeRetention,
		Recipient: cfg.NotifierRecipient,
	})
	authService := services.NewAuthService(userRepo, tokens, cfg.BcryptCost)
	reportService := services.NewReportService(debtorRepo, transactionRepo, userRepo, debtorService)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPass, cfg.AdminEmail); err != nil {
		logger.Error("failed to bootstrap admin", "error", err)
		return
	}

	// transport
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(cfg.HttpCorsOrigin))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))

	guard := handlers.NewGuard(tokens)
	g := s.Router.Group("/api/v1")
	handlers.RegisterAuthRoutes(g, handlers.NewAuthHandler(authService, uploadService), guard)
	handlers.RegisterDebtorRoutes(g, handlers.NewDebtorHandler(debtorService), guard)
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(ledgerService), guard)
	handlers.RegisterVoucherRoutes(g, handlers.NewVoucherHandler(uploadService, debtorService, ledgerService), guard)
	handlers.RegisterReportRoutes(g, handlers.NewReportHandler(reportService), guard)
	handlers.RegisterAdminRoutes(g, handlers.NewAdminHandler(reportService, debtorService), guard)
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": db,
		"redis":    redisAdap,
	}))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNS); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsAddr, cfg.MetricsURI)

	go services.NewPurgeSweeper(debtorService, cfg.PurgeInterval).Run(ctx)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	s.Shutdown()
	logger.Sync()
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
