package rabbitmq

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the slice of *amqp.Channel the pipeline uses. Narrowing it to
// an interface lets tests substitute a fake without a broker.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	IsClosed() bool
	Close() error
}

// ChannelFactory opens a new channel on demand.
type ChannelFactory func() (Channel, error)

var errPoolClosed = errors.New("channel pool is closed")

// ChannelPool keeps a bounded set of ready channels over the shared
// connection. Channels are created lazily on first demand; a channel
// released in a broken state is disposed, never handed out again.
// Acquisition is exclusive: a channel belongs to exactly one in-flight
// operation at a time.
type ChannelPool struct {
	factory   ChannelFactory
	idle      chan Channel
	done      chan struct{}
	closeOnce sync.Once
}

// DefaultPoolSize sizes the pool at twice the available parallelism.
func DefaultPoolSize() int {
	return runtime.GOMAXPROCS(0) * 2
}

func NewChannelPool(factory ChannelFactory, capacity int) *ChannelPool {
	if capacity <= 0 {
		capacity = DefaultPoolSize()
	}
	return &ChannelPool{
		factory: factory,
		idle:    make(chan Channel, capacity),
		done:    make(chan struct{}),
	}
}

// NewConnectionPool wires a pool to a live Connection.
func NewConnectionPool(conn *Connection, capacity int) *ChannelPool {
	return NewChannelPool(conn.Channel, capacity)
}

// Acquire returns an idle channel, or opens a new one when none is parked.
// Idle channels that went stale while parked are discarded on the way out.
func (p *ChannelPool) Acquire() (Channel, error) {
	for {
		select {
		case <-p.done:
			return nil, errPoolClosed
		case ch := <-p.idle:
			if ch.IsClosed() {
				_ = ch.Close()
				continue
			}
			return ch, nil
		default:
			return p.factory()
		}
	}
}

// Release parks a channel for reuse. Broken channels are disposed; when the
// pool is already at capacity the surplus channel is closed instead of
// parked.
func (p *ChannelPool) Release(ch Channel) {
	if ch == nil {
		return
	}
	if ch.IsClosed() {
		_ = ch.Close()
		return
	}
	select {
	case <-p.done:
		_ = ch.Close()
		return
	case p.idle <- ch:
	default:
		_ = ch.Close()
		return
	}
	// The pool may have closed between the done check and the park; sweep
	// so no channel survives shutdown.
	select {
	case <-p.done:
		p.drain()
	default:
	}
}

// Close drains and disposes every parked channel. Acquire fails afterwards;
// calling Close again is a no-op.
func (p *ChannelPool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
	p.drain()
}

func (p *ChannelPool) drain() {
	for {
		select {
		case ch := <-p.idle:
			_ = ch.Close()
		default:
			return
		}
	}
}
