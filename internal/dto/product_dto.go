package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductLookupResponse is served by the public barcode lookup and cached in Redis.
type ProductLookupResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	BasePrice       decimal.Decimal `json:"base_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

type StockMovementFilter struct {
	ProductID   string `form:"product_id"`
	ReferenceID string `form:"reference_id"` // transaction id
	Type        string `form:"type"`         // sale | void_restore | adjustment
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=100"`
}

type StockMovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	MovementType   string    `json:"movement_type"`
	QuantityChange int       `json:"quantity_change"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	ReferenceID    *string   `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type StockMovementListResponse struct {
	Movements []StockMovementResponse `json:"movements"`
	Total     int64                   `json:"total"`
}
