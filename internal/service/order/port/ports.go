package port

import (
	"context"

	"wmslink/internal/service/order/domain"
)

// OrderRepository persists order aggregates. Implementations return
// domain.ErrOrderNotFound when a lookup misses.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	FindByOrderNo(ctx context.Context, typ domain.OrderType, orderNo string) (*domain.Order, error)
	List(ctx context.Context, typ domain.OrderType) ([]*domain.Order, error)
}

// CustomerRepository resolves customers by business key. A miss returns
// (nil, nil); errors are reserved for infrastructure failures.
type CustomerRepository interface {
	FindByCustomerNo(ctx context.Context, customerNo string) (*domain.Customer, error)
}

// ProductRepository resolves products by code. Codes with no match are
// simply absent from the result.
type ProductRepository interface {
	FindByCodes(ctx context.Context, codes []string) ([]domain.Product, error)
}

// CustomerWriter persists master data pushed from the upstream WMS.
// Writes are upserts keyed by the customer's business key.
type CustomerWriter interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
}

// ProductWriter is the product counterpart of CustomerWriter.
type ProductWriter interface {
	Upsert(ctx context.Context, product *domain.Product) error
}

// CacheInvalidator evicts one cached reference-data entry after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher delivers an integration event durably to the broker.
// It performs no retry; transport failures surface to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// EventHandler processes a delivered event. The boolean is the ack signal:
// the consumer removes the message from its queue only on true.
type EventHandler interface {
	Handle(ctx context.Context, event *domain.Event) bool
}

// Authorizer guards the HTTP edge. Token issuance and role storage live
// outside this system.
type Authorizer interface {
	Authorize(ctx context.Context, token string) error
}
