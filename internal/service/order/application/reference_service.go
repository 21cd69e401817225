package application

import (
	"context"

	"github.com/rs/zerolog/log"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// ReferenceService is the master-data write path for the catalog the order
// pipeline validates against. The store is written first, then the cached
// read side is invalidated so the next lookup sees the new version instead
// of waiting out the TTL.
type ReferenceService struct {
	customers     port.CustomerWriter
	products      port.ProductWriter
	customerCache port.CacheInvalidator
	productCache  port.CacheInvalidator
}

func NewReferenceService(
	customers port.CustomerWriter,
	products port.ProductWriter,
	customerCache, productCache port.CacheInvalidator,
) *ReferenceService {
	return &ReferenceService{
		customers:     customers,
		products:      products,
		customerCache: customerCache,
		productCache:  productCache,
	}
}

func (s *ReferenceService) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	if customer == nil || customer.CustomerNo == "" {
		return domain.ErrInvalidReference
	}
	if err := s.customers.Upsert(ctx, customer); err != nil {
		return err
	}
	s.evict(ctx, s.customerCache, customer.CustomerNo)
	return nil
}

func (s *ReferenceService) UpsertProduct(ctx context.Context, product *domain.Product) error {
	if product == nil || product.ProductCode == "" {
		return domain.ErrInvalidReference
	}
	if err := s.products.Upsert(ctx, product); err != nil {
		return err
	}
	s.evict(ctx, s.productCache, product.ProductCode)
	return nil
}

// evict is best-effort; a stale entry still expires with the TTL.
func (s *ReferenceService) evict(ctx context.Context, cache port.CacheInvalidator, key string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, key); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache invalidation failed")
	}
}
