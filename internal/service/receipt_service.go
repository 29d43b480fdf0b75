package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxReceiptRetries is the number of failed renders after which a receipt
// is marked failed and handed to the dead letter queue.
const MaxReceiptRetries = 5

// ErrReceiptExhausted is returned by Generate once a receipt has used up
// its retries.
var ErrReceiptExhausted = errors.New("receipt: retries exhausted")

// ReceiptService renders and tracks the PDF receipt of each transaction.
type ReceiptService interface {
	GetReceipt(ctx context.Context, transactionID uuid.UUID) (*dto.ReceiptResponse, error)
	GetPDFPath(ctx context.Context, receiptID uuid.UUID) (string, error)
	// Generate renders (or re-renders) the receipt for a transaction and
	// returns the receipt row together with the joined transaction.
	Generate(ctx context.Context, transactionID uuid.UUID) (*model.Receipt, *model.Transaction, error)
	MarkEmailed(ctx context.Context, receiptID uuid.UUID, to string) error
	DueRetries(ctx context.Context, limit int) ([]model.Receipt, error)
}

type receiptService struct {
	repo        repository.ReceiptRepository
	txns        repository.TransactionRepository
	orgName     string
	storagePath string
	render      func(txn *model.Transaction, orgName, storagePath string) (string, error)
	now         func() time.Time
}

func NewReceiptService(repo repository.ReceiptRepository, txns repository.TransactionRepository, orgName, storagePath string) ReceiptService {
	return &receiptService{
		repo:        repo,
		txns:        txns,
		orgName:     orgName,
		storagePath: storagePath,
		render:      infra.GenerateReceiptPDF,
		now:         time.Now,
	}
}

func (s *receiptService) GetReceipt(ctx context.Context, transactionID uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, apierror.ErrReceiptNotFound)
	}
	return receiptToResponse(rc), nil
}

func (s *receiptService) GetPDFPath(ctx context.Context, receiptID uuid.UUID) (string, error) {
	rc, err := s.repo.FindByID(ctx, receiptID)
	if err != nil {
		return "", notFound(err, apierror.ErrReceiptNotFound)
	}
	if rc.PDFPath == nil || *rc.PDFPath == "" {
		return "", apierror.Wrap(apierror.ErrReceiptNotFound, "receipt PDF not available, status is %s", rc.Status)
	}
	return *rc.PDFPath, nil
}

func (s *receiptService) Generate(ctx context.Context, transactionID uuid.UUID) (*model.Receipt, *model.Transaction, error) {
	txn, err := s.txns.FindByID(ctx, transactionID)
	if err != nil {
		return nil, nil, notFound(err, apierror.ErrTransactionNotFound)
	}

	rc, err := s.repo.FindByTransactionID(ctx, transactionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rc = &model.Receipt{TransactionID: transactionID, Status: model.ReceiptPending}
		if err := s.repo.Create(ctx, rc); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	}

	path, renderErr := s.render(txn, s.orgName, s.storagePath)
	if renderErr != nil {
		rc.RetryCount++
		msg := renderErr.Error()
		rc.LastError = &msg
		if rc.RetryCount >= MaxReceiptRetries {
			rc.Status = model.ReceiptFailed
			rc.NextRetryAt = nil
		} else {
			next := s.now().Add(RetryBackoff(rc.RetryCount))
			rc.NextRetryAt = &next
		}
		if err := s.repo.Update(ctx, rc); err != nil {
			log.Error().Err(err).Str("receipt_id", rc.ID.String()).Msg("receipt: failed to record render error")
		}
		if rc.Status == model.ReceiptFailed {
			return rc, txn, fmt.Errorf("%w: %v", ErrReceiptExhausted, renderErr)
		}
		return rc, txn, renderErr
	}

	rc.Status = model.ReceiptGenerated
	rc.PDFPath = &path
	rc.NextRetryAt = nil
	rc.LastError = nil
	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, nil, err
	}
	return rc, txn, nil
}

func (s *receiptService) MarkEmailed(ctx context.Context, receiptID uuid.UUID, to string) error {
	rc, err := s.repo.FindByID(ctx, receiptID)
	if err != nil {
		return notFound(err, apierror.ErrReceiptNotFound)
	}
	rc.EmailedTo = &to
	return s.repo.Update(ctx, rc)
}

func (s *receiptService) DueRetries(ctx context.Context, limit int) ([]model.Receipt, error) {
	return s.repo.ListPendingRetries(ctx, s.now(), limit)
}

// RetryBackoff returns the delay before retry n (1-based): 1m, 2m, 4m, …
// capped at one hour.
func RetryBackoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > 7 {
		return time.Hour
	}
	d := time.Minute << uint(n-1)
	if d > time.Hour {
		return time.Hour
	}
	return d
}

func receiptToResponse(rc *model.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		ID:            rc.ID.String(),
		TransactionID: rc.TransactionID.String(),
		Status:        rc.Status,
		PDFAvailable:  rc.PDFPath != nil && *rc.PDFPath != "",
		EmailedTo:     rc.EmailedTo,
		RetryCount:    rc.RetryCount,
		LastError:     rc.LastError,
		CreatedAt:     rc.CreatedAt,
	}
}
