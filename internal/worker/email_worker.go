package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const emailAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ReceiptID string `json:"receipt_id,omitempty"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	PDFPath   string `json:"pdf_path"`
}

// ReceiptSender delivers a receipt email; *infra.Mailer implements it.
type ReceiptSender interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

// EmailWorker sends receipt PDFs over SMTP. Sends go through a circuit
// breaker so a dead SMTP relay fails fast instead of tying up workers.
type EmailWorker struct {
	sender   ReceiptSender
	receipts service.ReceiptService // optional
	cb       *infra.CircuitBreaker
	backoff  time.Duration
}

func NewEmailWorker(sender ReceiptSender, receipts service.ReceiptService, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, receipts: receipts, cb: cb, backoff: time.Second}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := withRetry(ctx, emailAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.sender.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent")

	if w.receipts != nil && payload.ReceiptID != "" {
		if id, err := uuid.Parse(payload.ReceiptID); err == nil {
			if err := w.receipts.MarkEmailed(ctx, id, payload.ToEmail); err != nil {
				log.Warn().Err(err).Str("receipt_id", payload.ReceiptID).Msg("email_worker: failed to record delivery")
			}
		}
	}
	return nil
}
