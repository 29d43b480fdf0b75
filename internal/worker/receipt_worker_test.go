package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"
	"github.com/agastya71/mysl-pos-project-sub006/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingEmails struct {
	jobs []EmailJobPayload
}

func (r *recordingEmails) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	r.jobs = append(r.jobs, p)
	return nil
}

// completedSale inserts a finished transaction directly, bypassing the engine.
func completedSale(t *testing.T, db *gorm.DB, email *string) *model.Transaction {
	t.Helper()
	term := testutil.Terminal(t, db, "T09")
	cashier := testutil.User(t, db, "cashier9", model.RoleCashier)
	cust := testutil.Customer(t, db, "Receipt Reader", email)
	total := decimal.RequireFromString("12.50")
	txn := &model.Transaction{
		TransactionNumber: "T09-000001",
		TerminalID:        term.ID,
		CashierID:         cashier.ID,
		CustomerID:        &cust.ID,
		Subtotal:          total,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       total,
		Status:            model.TransactionCompleted,
		TransactionDate:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func newReceiptService(t *testing.T, db *gorm.DB) service.ReceiptService {
	return service.NewReceiptService(
		repository.NewReceiptRepository(db),
		repository.NewTransactionRepository(db),
		"Hope Thrift",
		t.TempDir(),
	)
}

func TestReceiptWorker_GeneratesAndQueuesEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	email := "reader@example.org"
	txn := completedSale(t, db, &email)
	receipts := newReceiptService(t, db)
	emails := &recordingEmails{}
	w := NewReceiptWorker(receipts, emails, "Hope Thrift")

	raw, _ := json.Marshal(ReceiptJobPayload{TransactionID: txn.ID.String()})
	require.NoError(t, w.Process(context.Background(), raw))

	rc, err := receipts.GetReceipt(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptGenerated, rc.Status)

	require.Len(t, emails.jobs, 1)
	job := emails.jobs[0]
	assert.Equal(t, email, job.ToEmail)
	assert.Equal(t, rc.ID, job.ReceiptID)
	assert.Contains(t, job.Subject, "T09-000001")
	assert.Contains(t, job.Body, "$12.50")
	assert.NotEmpty(t, job.PDFPath)
}

func TestReceiptWorker_NoEmailWithoutAddress(t *testing.T) {
	db := testutil.NewTestDB(t)
	txn := completedSale(t, db, nil)
	emails := &recordingEmails{}
	w := NewReceiptWorker(newReceiptService(t, db), emails, "Hope Thrift")

	require.NoError(t, w.Run(context.Background(), txn.ID))
	assert.Empty(t, emails.jobs)
}

func TestReceiptWorker_BadPayloads(t *testing.T) {
	db := testutil.NewTestDB(t)
	w := NewReceiptWorker(newReceiptService(t, db), nil, "Hope Thrift")

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"transaction_id":"nope"}`)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`nope`)))

	raw, _ := json.Marshal(ReceiptJobPayload{TransactionID: uuid.NewString()})
	assert.Error(t, w.Process(context.Background(), raw), "unknown transaction goes to the DLQ")
}
