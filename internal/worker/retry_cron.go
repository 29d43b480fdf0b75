package worker

// retry_cron.go
// Re-renders receipts stuck in status 'pending' whose next_retry_at has
// passed. Receipts that exhaust their retries are dead-lettered.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Receipts service.ReceiptService
	Worker   *ReceiptWorker
	RDB      *redis.Client
}

// StartRetryCron ticks every 30s until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	due, err := cfg.Receipts.DueRetries(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(due) == 0 {
		return
	}
	log.Info().Int("count", len(due)).Msg("retry_cron: retrying receipts")

	for _, rc := range due {
		if ctx.Err() != nil {
			return
		}
		err := cfg.Worker.Run(ctx, rc.TransactionID)
		var ex *ExhaustedError
		if errors.As(err, &ex) {
			payload, _ := json.Marshal(ReceiptJobPayload{TransactionID: rc.TransactionID.String()})
			SendToDLQ(ctx, cfg.RDB, QueueReceipt, JobReceipt, payload, ex.Error(), ex.Attempts)
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("receipt_id", rc.ID.String()).Msg("retry_cron: retry failed")
		}
	}
}
