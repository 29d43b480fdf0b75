package dto

import "time"

type ReceiptResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	PDFAvailable  bool      `json:"pdf_available"`
	EmailedTo     *string   `json:"emailed_to,omitempty"`
	RetryCount    int       `json:"retry_count"`
	LastError     *string   `json:"last_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
