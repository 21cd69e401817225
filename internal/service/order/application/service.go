package application

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// maxInflightPublishes caps how many publish tasks from one bulk request
// run concurrently.
const maxInflightPublishes = 10

// OrderService drives the ingestion pipeline for one order type: validate,
// map, persist, publish.
type OrderService struct {
	typ       domain.OrderType
	orders    port.OrderRepository
	refs      *ReferenceValidator
	publisher port.EventPublisher
	gate      *semaphore.Weighted
}

func NewOrderService(typ domain.OrderType, orders port.OrderRepository, refs *ReferenceValidator, publisher port.EventPublisher) *OrderService {
	return &OrderService{
		typ:       typ,
		orders:    orders,
		refs:      refs,
		publisher: publisher,
		gate:      semaphore.NewWeighted(maxInflightPublishes),
	}
}

// Create validates and maps a single request, persists the aggregate and
// publishes its created-event. Returns the external order number.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (string, error) {
	existing, err := s.orders.FindByOrderNo(ctx, s.typ, req.OrderID)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return "", err
	}
	if existing != nil {
		return "", domain.ErrOrderExists
	}

	order, err := s.mapRequest(ctx, req)
	if err != nil {
		return "", err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return "", err
	}

	event, err := domain.NewOrderCreatedEvent(order)
	if err != nil {
		return "", err
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return "", err
	}
	return order.OrderNo, nil
}

// BulkCreate maps and publishes a batch. A request that fails validation is
// skipped; it never aborts the batch. At most maxInflightPublishes publish
// tasks run concurrently, and an error from one task does not cancel the
// others. The call returns once every submitted task has finished.
func (s *OrderService) BulkCreate(ctx context.Context, reqs []CreateOrderRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, req := range reqs {
		order, err := s.mapRequest(ctx, req)
		if err != nil {
			log.Warn().Str("orderNo", req.OrderID).Err(err).Msg("skipping invalid order in bulk request")
			continue
		}

		event, err := domain.NewOrderCreatedEvent(order)
		if err != nil {
			log.Warn().Str("orderNo", req.OrderID).Err(err).Msg("skipping unpublishable order in bulk request")
			continue
		}

		// Admission gate: blocks until one of the K slots frees up.
		// A cancelled context stops admitting new tasks; in-flight
		// tasks run to completion.
		if err := s.gate.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(event *domain.Event, orderNo string) {
			defer wg.Done()
			defer s.gate.Release(1)
			if err := s.publisher.Publish(ctx, event); err != nil {
				log.Error().Str("orderNo", orderNo).Err(err).Msg("bulk publish failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(event, order.OrderNo)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// GetByOrderNo returns the aggregate for an external order number.
func (s *OrderService) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	return s.orders.FindByOrderNo(ctx, s.typ, orderNo)
}

// List returns all orders of this service's type.
func (s *OrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx, s.typ)
}

// Cancel marks an order cancelled. Idempotent for already cancelled orders.
func (s *OrderService) Cancel(ctx context.Context, orderNo string) error {
	order, err := s.orders.FindByOrderNo(ctx, s.typ, orderNo)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusCancelled {
		return nil
	}
	if err := order.Cancel(); err != nil {
		return err
	}
	return s.orders.Update(ctx, order)
}

func (s *OrderService) mapRequest(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	customer, err := s.refs.ResolveCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, line.ProductCode)
	}
	products, err := s.refs.ResolveProducts(ctx, codes)
	if err != nil {
		return nil, err
	}

	return MapOrder(s.typ, req, customer, products)
}
