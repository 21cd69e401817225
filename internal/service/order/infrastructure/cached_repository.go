package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// Cache-aside read-through over reference data. Reads hit redis first and
// fall back to the source repository, writing the result back with a TTL.
// Writers call Invalidate explicitly after changing reference data.

type CachedCustomerRepository struct {
	source port.CustomerRepository
	rdb    *redis.Client
	ttl    time.Duration
}

func NewCachedCustomerRepository(source port.CustomerRepository, rdb *redis.Client, ttl time.Duration) *CachedCustomerRepository {
	return &CachedCustomerRepository{source: source, rdb: rdb, ttl: ttl}
}

func customerKey(customerNo string) string { return "customer:" + customerNo }

func (r *CachedCustomerRepository) FindByCustomerNo(ctx context.Context, customerNo string) (*domain.Customer, error) {
	raw, err := r.rdb.Get(ctx, customerKey(customerNo)).Bytes()
	if err == nil {
		var customer domain.Customer
		if err := json.Unmarshal(raw, &customer); err == nil {
			return &customer, nil
		}
		// Corrupt cache entry: fall through to the source.
	} else if err != redis.Nil {
		log.Warn().Str("customerNo", customerNo).Err(err).Msg("customer cache read failed")
	}

	customer, err := r.source.FindByCustomerNo(ctx, customerNo)
	if err != nil || customer == nil {
		return customer, err
	}

	if raw, err := json.Marshal(customer); err == nil {
		if err := r.rdb.Set(ctx, customerKey(customerNo), raw, r.ttl).Err(); err != nil {
			log.Warn().Str("customerNo", customerNo).Err(err).Msg("customer cache write failed")
		}
	}
	return customer, nil
}

func (r *CachedCustomerRepository) Invalidate(ctx context.Context, customerNo string) error {
	return r.rdb.Del(ctx, customerKey(customerNo)).Err()
}

type CachedProductRepository struct {
	source port.ProductRepository
	rdb    *redis.Client
	ttl    time.Duration
}

func NewCachedProductRepository(source port.ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{source: source, rdb: rdb, ttl: ttl}
}

func productKey(code string) string { return "product:" + code }

// FindByCodes serves what it can from the cache and fetches only the
// missing codes from the source.
func (r *CachedProductRepository) FindByCodes(ctx context.Context, codes []string) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(codes))
	var missing []string

	for _, code := range codes {
		raw, err := r.rdb.Get(ctx, productKey(code)).Bytes()
		if err != nil {
			if err != redis.Nil {
				log.Warn().Str("productCode", code).Err(err).Msg("product cache read failed")
			}
			missing = append(missing, code)
			continue
		}
		var product domain.Product
		if err := json.Unmarshal(raw, &product); err != nil {
			missing = append(missing, code)
			continue
		}
		products = append(products, product)
	}

	if len(missing) == 0 {
		return products, nil
	}

	fetched, err := r.source.FindByCodes(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, product := range fetched {
		if raw, err := json.Marshal(product); err == nil {
			if err := r.rdb.Set(ctx, productKey(product.ProductCode), raw, r.ttl).Err(); err != nil {
				log.Warn().Str("productCode", product.ProductCode).Err(err).Msg("product cache write failed")
			}
		}
	}
	return append(products, fetched...), nil
}

func (r *CachedProductRepository) Invalidate(ctx context.Context, code string) error {
	return r.rdb.Del(ctx, productKey(code)).Err()
}

var _ port.CustomerRepository = (*CachedCustomerRepository)(nil)
var _ port.ProductRepository = (*CachedProductRepository)(nil)
var _ port.CacheInvalidator = (*CachedCustomerRepository)(nil)
var _ port.CacheInvalidator = (*CachedProductRepository)(nil)
