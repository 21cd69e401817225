package rabbitmq

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"wmslink/internal/pkg/metrics"
	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// Consumer binds one durable queue for one event kind and dispatches
// deliveries to its handler. Prefetch is pinned at 1 with manual acks, so
// each queue processes a single message at a time in arrival order.
//
// Ack policy: ack only when the handler reports success. On a decode or
// handler failure the delivery is nacked with requeue on first sight and
// dropped (nack without requeue) once redelivered, which keeps redelivery
// possible without letting a poison message spin the queue.
type Consumer struct {
	pool     *ChannelPool
	exchange string
	kind     domain.EventKind
	handler  port.EventHandler

	mu     sync.Mutex
	ch     Channel
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(pool *ChannelPool, exchange string, kind domain.EventKind, handler port.EventHandler) *Consumer {
	return &Consumer{
		pool:     pool,
		exchange: exchange,
		kind:     kind,
		handler:  handler,
	}
}

// Start declares the exchange and queue, binds them, sets the prefetch
// limit and begins consuming in a background goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	queue := c.kind.Queue()

	ch, err := c.pool.Acquire()
	if err != nil {
		return errors.Wrap(err, "acquire channel")
	}

	if err := c.bind(ch, queue); err != nil {
		c.pool.Release(ch)
		return err
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		c.pool.Release(ch)
		return errors.Wrapf(err, "consume %s", queue)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.ch = ch
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Info().Str("queue", queue).Msg("consumer listening")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					log.Warn().Str("queue", queue).Msg("delivery channel closed")
					return
				}
				c.handleDelivery(ctx, msg)
			}
		}
	}()
	return nil
}

func (c *Consumer) bind(ch Channel, queue string) error {
	if err := ch.ExchangeDeclare(c.exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare exchange %s", c.exchange)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare queue %s", queue)
	}
	if err := ch.QueueBind(queue, c.kind.RoutingKey(), c.exchange, false, nil); err != nil {
		return errors.Wrapf(err, "bind queue %s", queue)
	}
	// One unacked message at a time: ordering and backpressure over
	// throughput.
	if err := ch.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "set prefetch")
	}
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	queue := c.kind.Queue()

	event, err := domain.DecodeEvent(msg.Body)
	if err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("undecodable delivery")
		metrics.HandlerFailures.WithLabelValues(queue).Inc()
		c.reject(msg)
		return
	}
	if event.Kind != c.kind {
		// Misrouted message; this queue will never handle it.
		log.Error().Str("queue", queue).Str("kind", string(event.Kind)).Msg("unexpected event kind")
		metrics.HandlerFailures.WithLabelValues(queue).Inc()
		if err := msg.Nack(false, false); err != nil {
			log.Error().Str("queue", queue).Err(err).Msg("nack failed")
		}
		return
	}

	event.Restore()

	if c.handler.Handle(ctx, event) {
		if err := msg.Ack(false); err != nil {
			log.Error().Str("queue", queue).Err(err).Msg("ack failed")
			return
		}
		metrics.EventsConsumed.WithLabelValues(queue).Inc()
		return
	}

	metrics.HandlerFailures.WithLabelValues(queue).Inc()
	c.reject(msg)
}

// reject nacks with requeue for a first failure and drops the message once
// it has already been redelivered.
func (c *Consumer) reject(msg amqp.Delivery) {
	requeue := !msg.Redelivered
	if err := msg.Nack(false, requeue); err != nil {
		log.Error().Str("queue", c.kind.Queue()).Err(err).Msg("nack failed")
	}
}

// Stop halts dispatching and closes the consumer's channel. The channel
// still carries a live consume registration, so it must never go back to
// the pool where a publisher could pick it up.
func (c *Consumer) Stop() {
	c.mu.Lock()
	cancel, ch := c.cancel, c.ch
	c.cancel, c.ch = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	if ch != nil {
		if err := ch.Close(); err != nil {
			log.Error().Str("queue", c.kind.Queue()).Err(err).Msg("channel close failed")
		}
	}
	log.Info().Str("queue", c.kind.Queue()).Msg("consumer stopped")
}
