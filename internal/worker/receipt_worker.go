package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailEnqueuer is the part of Dispatcher the receipt worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// ReceiptWorker renders receipts for committed transactions and, when the
// customer left an email address, queues the PDF for delivery.
type ReceiptWorker struct {
	receipts service.ReceiptService
	emails   EmailEnqueuer // nil disables email delivery
	orgName  string
}

func NewReceiptWorker(receipts service.ReceiptService, emails EmailEnqueuer, orgName string) *ReceiptWorker {
	return &ReceiptWorker{receipts: receipts, emails: emails, orgName: orgName}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid transaction_id %q", payload.TransactionID)
	}
	return w.Run(ctx, id)
}

// Run renders the receipt of one transaction. Render failures that still
// have retries left return nil: the retry cron picks them up.
func (w *ReceiptWorker) Run(ctx context.Context, transactionID uuid.UUID) error {
	l := log.With().Str("transaction_id", transactionID.String()).Logger()

	rc, txn, err := w.receipts.Generate(ctx, transactionID)
	switch {
	case errors.Is(err, service.ErrReceiptExhausted):
		l.Error().Err(err).Int("retries", rc.RetryCount).Msg("receipt_worker: giving up")
		return &ExhaustedError{Attempts: rc.RetryCount, Err: err}
	case err != nil && rc != nil:
		l.Warn().Err(err).Int("retry_count", rc.RetryCount).Msg("receipt_worker: render failed, retry scheduled")
		return nil
	case err != nil:
		return err
	}
	l.Info().Str("pdf", *rc.PDFPath).Msg("receipt_worker: receipt generated")

	if to := customerEmail(txn); to != "" && rc.EmailedTo == nil && w.emails != nil {
		job := EmailJobPayload{
			ReceiptID: rc.ID.String(),
			ToEmail:   to,
			Subject:   fmt.Sprintf("%s receipt %s", w.orgName, txn.TransactionNumber),
			Body: fmt.Sprintf("Thank you for your purchase.\nTransaction %s\nTotal: $%s",
				txn.TransactionNumber, txn.TotalAmount.StringFixed(2)),
			PDFPath: *rc.PDFPath,
		}
		if err := w.emails.EnqueueEmail(ctx, job); err != nil {
			l.Warn().Err(err).Msg("receipt_worker: failed to enqueue email")
		}
	}
	return nil
}

func customerEmail(txn *model.Transaction) string {
	if txn.Customer == nil || txn.Customer.Email == nil {
		return ""
	}
	return *txn.Customer.Email
}
