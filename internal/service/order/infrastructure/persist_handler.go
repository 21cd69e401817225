package infrastructure

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// OrderPersistHandler is the consumer-side handler: it persists the order
// carried by a created-event. Redeliveries of an already persisted order
// are treated as success so the consumer can ack them.
type OrderPersistHandler struct {
	orders port.OrderRepository
}

func NewOrderPersistHandler(orders port.OrderRepository) *OrderPersistHandler {
	return &OrderPersistHandler{orders: orders}
}

func (h *OrderPersistHandler) Handle(ctx context.Context, event *domain.Event) bool {
	order := event.Order

	existing, err := h.orders.FindByOrderNo(ctx, order.Type, order.OrderNo)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		log.Error().Str("orderNo", order.OrderNo).Err(err).Msg("duplicate lookup failed")
		return false
	}
	if existing != nil {
		log.Info().Str("orderNo", order.OrderNo).Msg("order already persisted, acking redelivery")
		return true
	}

	if err := h.orders.Save(ctx, order); err != nil {
		log.Error().Str("orderNo", order.OrderNo).Err(err).Msg("persist order failed")
		return false
	}
	log.Info().Str("orderNo", order.OrderNo).Str("type", string(order.Type)).Msg("order persisted")
	return true
}

var _ port.EventHandler = (*OrderPersistHandler)(nil)
