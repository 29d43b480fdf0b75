package service

import (
	"context"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService moves product stock and records every change as a
// StockMovement. The Tx methods run inside the caller's DB transaction.
type InventoryService interface {
	// DecrementStockTx removes qty units of an already locked product.
	// stockBefore is the counter value the caller last observed.
	DecrementStockTx(tx *gorm.DB, product *model.Product, qty, stockBefore int, reference uuid.UUID, reason string) error
	// RestoreStockTx locks the product and adds qty units back.
	RestoreStockTx(tx *gorm.DB, productID uuid.UUID, qty int, reference uuid.UUID, reason string) (*model.Product, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewInventoryService(products repository.ProductRepository, movements repository.StockMovementRepository) InventoryService {
	return &inventoryService{products: products, movements: movements}
}

func (s *inventoryService) DecrementStockTx(tx *gorm.DB, product *model.Product, qty, stockBefore int, reference uuid.UUID, reason string) error {
	ok, err := s.products.DecrementStockTx(tx, product.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.Wrap(apierror.ErrInsufficientStock, "insufficient stock for %s", product.Name)
	}
	ref := reference
	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:      product.ID,
		MovementType:   model.MovementSale,
		QuantityChange: -qty,
		QuantityBefore: stockBefore,
		QuantityAfter:  stockBefore - qty,
		Reason:         reason,
		ReferenceID:    &ref,
	})
}

func (s *inventoryService) RestoreStockTx(tx *gorm.DB, productID uuid.UUID, qty int, reference uuid.UUID, reason string) (*model.Product, error) {
	product, err := s.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return nil, notFound(err, apierror.Wrap(apierror.ErrProductNotFound, "product %s no longer exists", productID))
	}
	if err := s.products.IncrementStockTx(tx, productID, qty); err != nil {
		return nil, err
	}
	ref := reference
	if err := s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:      productID,
		MovementType:   model.MovementVoidRestore,
		QuantityChange: qty,
		QuantityBefore: product.QuantityInStock,
		QuantityAfter:  product.QuantityInStock + qty,
		Reason:         reason,
		ReferenceID:    &ref,
	}); err != nil {
		return nil, err
	}
	product.QuantityInStock += qty
	return product, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	q := repository.StockMovementFilter{Type: filter.Type, Page: filter.Page, Limit: filter.Limit}
	var err error
	if q.ProductID, err = parseOptionalUUID("product_id", filter.ProductID); err != nil {
		return nil, err
	}
	if q.ReferenceID, err = parseOptionalUUID("reference_id", filter.ReferenceID); err != nil {
		return nil, err
	}
	switch filter.Type {
	case "", model.MovementSale, model.MovementVoidRestore, model.MovementAdjustment:
	default:
		return nil, apierror.Wrap(apierror.ErrInvalidFilter, "unknown movement type %q", filter.Type)
	}

	movements, total, err := s.movements.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.StockMovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			MovementType:   m.MovementType,
			QuantityChange: m.QuantityChange,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reason:         m.Reason,
			ReferenceID:    uuidString(m.ReferenceID),
			CreatedAt:      m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{Movements: out, Total: total}, nil
}

func parseOptionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.Wrap(apierror.ErrInvalidFilter, "%s must be a UUID", field)
	}
	return &id, nil
}
