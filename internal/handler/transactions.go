package handler

import (
	"net/http"

	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct{ svc service.TransactionService }

func NewTransactionsHandler(svc service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Create godoc
// @Summary      Complete a sale
// @Description  Atomically snapshots the items, applies every payment, decrements stock and marks the sale completed. Any failure rolls everything back.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateTransactionRequest true "Sale"
// @Success      201  {object} dto.TransactionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      402  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/transactions [post]
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cashierID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CreateTransaction(c.Request.Context(), cashierID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.TransactionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id} [get]
func (h *TransactionsHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List transactions
// @Description  Paginated, newest first.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        status     query string false "draft | completed | voided"
// @Param        start_date query string false "YYYY-MM-DD, inclusive"
// @Param        end_date   query string false "YYYY-MM-DD, inclusive"
// @Param        search     query string false "Transaction number or customer name"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50, max 200)"
// @Success      200 {object} dto.TransactionListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void godoc
// @Summary      Void a completed transaction
// @Description  Restores every line's quantity to stock. Payments are kept as they were.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Transaction UUID"
// @Param        body body dto.VoidTransactionRequest true "Reason"
// @Success      200  {object} dto.TransactionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transactions/{id}/void [post]
func (h *TransactionsHandler) Void(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.VoidTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.VoidTransaction(c.Request.Context(), id, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
