package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/config"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/router"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"
	"github.com/agastya71/mysl-pos-project-sub006/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.AutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	// Without Redis the API still sells; receipts wait for a manual retry.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL empty: job queues and lookup cache disabled")
	}

	var (
		processor infra.PaymentProcessor
		breaker   *infra.CircuitBreaker
	)
	switch cfg.PaymentProcessor {
	case "gateway":
		breaker = infra.NewCircuitBreaker(infra.DefaultCBConfig("payment-gateway"))
		processor = infra.NewGatewayProcessor(cfg.ProcessorURL, cfg.ProcessorAPIKey,
			time.Duration(cfg.ProcessorTimeoutSeconds)*time.Second, breaker)
	default:
		processor = infra.NewMockProcessor()
	}
	log.Info().Str("processor", processor.Name()).Bool("auto_capture", cfg.CardAutoCapture).Msg("payment processor ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async receipt pipeline, wired at the composition root
	var (
		receipts service.ReceiptEnqueuer
		pool     *worker.Pool
	)
	if rdb != nil {
		dispatcher := worker.NewDispatcher(rdb)
		receipts = dispatcher

		receiptSvc := service.NewReceiptService(
			repository.NewReceiptRepository(db),
			repository.NewTransactionRepository(db),
			cfg.OrgName, cfg.ReceiptStoragePath,
		)
		handlers := map[string]worker.Handler{}

		var emails worker.EmailEnqueuer
		mailer := infra.NewMailer(cfg)
		if mailer.Enabled() {
			emails = dispatcher
			smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
			handlers[worker.JobEmail] = worker.NewEmailWorker(mailer, receiptSvc, smtpCB)
		} else {
			log.Warn().Msg("SMTP_HOST empty: receipts will not be emailed")
		}

		receiptWorker := worker.NewReceiptWorker(receiptSvc, emails, cfg.OrgName)
		handlers[worker.JobReceipt] = receiptWorker

		pool = worker.NewPool(rdb, handlers)
		pool.Start(ctx, cfg.WorkerPoolSize)
		worker.StartRetryCron(ctx, worker.RetryCronConfig{Receipts: receiptSvc, Worker: receiptWorker, RDB: rdb})
	}

	r := router.New(router.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		Breaker:   breaker,
		Processor: processor,
		Receipts:  receipts,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // card authorizations can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("thrift POS core listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
