package handler

import (
	"net/http"

	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

type GiftCardsHandler struct{ svc service.GiftCardService }

func NewGiftCardsHandler(svc service.GiftCardService) *GiftCardsHandler {
	return &GiftCardsHandler{svc: svc}
}

// Create godoc
// @Summary      Issue a gift card
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateGiftCardRequest true "Initial balance and recipient"
// @Success      201  {object} dto.GiftCardResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/gift-cards [post]
func (h *GiftCardsHandler) Create(c *gin.Context) {
	var req dto.CreateGiftCardRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req.CreatedBy = &userID
	resp, err := h.svc.CreateGiftCard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get a gift card
// @Tags         gift-cards
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Gift card UUID"
// @Success      200 {object} dto.GiftCardResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/gift-cards/{id} [get]
func (h *GiftCardsHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetGiftCard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance godoc
// @Summary      Check a gift card balance by card number
// @Tags         gift-cards
// @Produce      json
// @Security     BearerAuth
// @Param        number path string true "Card number"
// @Success      200 {object} dto.GiftCardBalanceResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/gift-cards/balance/{number} [get]
func (h *GiftCardsHandler) Balance(c *gin.Context) {
	resp, err := h.svc.CheckBalance(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateRedemption godoc
// @Summary      Preview a redemption without debiting the card
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ValidateRedemptionRequest true "Card and amount"
// @Success      200  {object} dto.RedemptionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/gift-cards/validate-redemption [post]
func (h *GiftCardsHandler) ValidateRedemption(c *gin.Context) {
	var req dto.ValidateRedemptionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ValidateRedemption(c.Request.Context(), req.CardNumber, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Adjust godoc
// @Summary      Adjust a gift card balance
// @Description  Signed amount: positive credits, negative debits. The balance never goes below zero.
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdjustGiftCardRequest true "Adjustment"
// @Success      200  {object} dto.GiftCardResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/gift-cards/adjust [post]
func (h *GiftCardsHandler) Adjust(c *gin.Context) {
	var req dto.AdjustGiftCardRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req.UserID = &userID
	resp, err := h.svc.AdjustBalance(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Deactivate a gift card
// @Tags         gift-cards
// @Security     BearerAuth
// @Param        id path string true "Gift card UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/gift-cards/{id} [delete]
func (h *GiftCardsHandler) Deactivate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateGiftCard(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History godoc
// @Summary      Gift card audit trail
// @Tags         gift-cards
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Gift card UUID"
// @Success      200 {array} dto.GiftCardHistoryEntry
// @Failure      404 {object} apierror.APIError
// @Router       /v1/gift-cards/{id}/history [get]
func (h *GiftCardsHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetGiftCardHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
