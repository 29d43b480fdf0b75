package handler

import (
	"net/http"
	"path/filepath"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

type ReceiptsHandler struct {
	svc   service.ReceiptService
	queue service.ReceiptEnqueuer // nil when Redis is not configured
}

func NewReceiptsHandler(svc service.ReceiptService, queue service.ReceiptEnqueuer) *ReceiptsHandler {
	return &ReceiptsHandler{svc: svc, queue: queue}
}

// Get godoc
// @Summary      Receipt state of a transaction
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        transaction_id path string true "Transaction UUID"
// @Success      200 {object} dto.ReceiptResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/receipts/{transaction_id} [get]
func (h *ReceiptsHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "transaction_id")
	if !ok {
		return
	}
	resp, err := h.svc.GetReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPDF godoc
// @Summary      Download a receipt PDF
// @Tags         receipts
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Receipt UUID"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/receipts/pdf/{id} [get]
func (h *ReceiptsHandler) DownloadPDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GetPDFPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Retry godoc
// @Summary      Queue a receipt for (re)generation
// @Tags         receipts
// @Security     BearerAuth
// @Param        transaction_id path string true "Transaction UUID"
// @Success      202
// @Failure      503 {object} apierror.APIError
// @Router       /v1/receipts/{transaction_id}/retry [post]
func (h *ReceiptsHandler) Retry(c *gin.Context) {
	id, ok := uuidParam(c, "transaction_id")
	if !ok {
		return
	}
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, &apierror.APIError{Detail: "receipt queue is not configured", Code: "QUEUE_UNAVAILABLE"})
		return
	}
	if err := h.queue.EnqueueReceipt(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
