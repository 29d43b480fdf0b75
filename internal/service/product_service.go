package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productCacheTTL = 4 * time.Hour

// ProductService serves the register's barcode lookup. Results are cached
// in Redis; the cache is optional and every Redis error falls back to the DB.
type ProductService interface {
	LookupByBarcode(ctx context.Context, barcode string) (*dto.ProductLookupResponse, error)
	// InvalidateBarcodes drops cached lookups after a stock change.
	InvalidateBarcodes(ctx context.Context, barcodes ...string)
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func productCacheKey(barcode string) string { return "product:barcode:" + barcode }

func (s *productService) LookupByBarcode(ctx context.Context, barcode string) (*dto.ProductLookupResponse, error) {
	key := productCacheKey(barcode)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.ProductLookupResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFound(err, apierror.ErrProductNotFound)
	}
	resp := productToLookup(p)

	if s.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, b, productCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("barcode", barcode).Msg("product cache: set failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) InvalidateBarcodes(ctx context.Context, barcodes ...string) {
	if s.rdb == nil || len(barcodes) == 0 {
		return
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		keys = append(keys, productCacheKey(b))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("barcodes", barcodes).Msg("product cache: invalidation failed")
	}
}

func productToLookup(p *model.Product) *dto.ProductLookupResponse {
	return &dto.ProductLookupResponse{
		ID:              p.ID.String(),
		SKU:             p.SKU,
		Name:            p.Name,
		BasePrice:       p.BasePrice,
		TaxRate:         p.TaxRate,
		QuantityInStock: p.QuantityInStock,
	}
}
