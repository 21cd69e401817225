package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"wmslink/internal/pkg/metrics"
	"wmslink/internal/service/order/domain"
)

// Publisher serializes integration events and publishes them durably to the
// configured direct exchange. It owns no channels itself; every publish
// borrows one from the pool and returns it on every exit path. Failures
// surface to the caller untouched: retry policy belongs to callers.
type Publisher struct {
	pool     *ChannelPool
	exchange string
}

func NewPublisher(pool *ChannelPool, exchange string) *Publisher {
	return &Publisher{pool: pool, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return domain.ErrNilEvent
	}

	ch, err := p.pool.Acquire()
	if err != nil {
		return errors.Wrap(err, "acquire channel")
	}
	defer p.pool.Release(ch)

	// Idempotent declare keeps first-publish and restart paths identical.
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare exchange %s", p.exchange)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	err = ch.PublishWithContext(ctx, p.exchange, event.Kind.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.DateOccurred,
		Body:         body,
	})
	if err != nil {
		metrics.PublishFailures.WithLabelValues(string(event.Kind)).Inc()
		return errors.Wrapf(err, "publish %s", event.Kind)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Kind)).Inc()
	log.Info().Str("kind", string(event.Kind)).Str("routingKey", event.Kind.RoutingKey()).
		Str("orderNo", event.Order.OrderNo).Msg("event published")
	return nil
}
