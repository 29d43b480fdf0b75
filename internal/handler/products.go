package handler

import (
	"net/http"

	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductsHandler serves the public barcode lookup and the stock movement log.
type ProductsHandler struct {
	products  service.ProductService
	inventory service.InventoryService
}

func NewProductsHandler(products service.ProductService, inventory service.InventoryService) *ProductsHandler {
	return &ProductsHandler{products: products, inventory: inventory}
}

// Lookup godoc
// @Summary Price and stock lookup by barcode (no authentication)
// @Tags products
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.ProductLookupResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/lookup/{barcode} [get]
func (h *ProductsHandler) Lookup(c *gin.Context) {
	resp, err := h.products.LookupByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements godoc
// @Summary      List stock movements
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id   query string false "Product UUID"
// @Param        reference_id query string false "Transaction UUID"
// @Param        type         query string false "sale | void_restore | adjustment"
// @Param        page         query int    false "Page (default 1)"
// @Param        limit        query int    false "Page size (default 100)"
// @Success      200 {object} dto.StockMovementListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock-movements [get]
func (h *ProductsHandler) Movements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.inventory.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
