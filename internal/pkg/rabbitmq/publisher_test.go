package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wmslink/internal/service/order/domain"
)

func testEvent(t *testing.T, typ domain.OrderType) *domain.Event {
	t.Helper()
	order := domain.NewOrder(typ, "SO-100", time.Now(), domain.Customer{CustomerNo: "C1"}, "")
	order.AddLine(domain.OrderLine{LineNo: 1, Product: domain.Product{ProductCode: "P1"}, Quantity: decimal.NewFromInt(2)})
	event, err := domain.NewOrderCreatedEvent(order)
	require.NoError(t, err)
	return event
}

func TestPublisher_RejectsNilEvent(t *testing.T) {
	var made []*fakeChannel
	pub := NewPublisher(NewChannelPool(countingFactory(&made), 2), "partner-orders")

	err := pub.Publish(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNilEvent)
	assert.Empty(t, made, "no channel should be touched for a nil event")
}

func TestPublisher_PublishesPersistentToRoutingKey(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	pub := NewPublisher(pool, "partner-orders")

	require.NoError(t, pub.Publish(context.Background(), testEvent(t, domain.SalesOrder)))

	require.Len(t, made, 1)
	ch := made[0]
	assert.Equal(t, []string{"partner-orders/direct"}, ch.declares)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "new-sales-order", ch.publishKey[0])
	assert.Equal(t, uint8(amqp.Persistent), ch.published[0].DeliveryMode)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	// Body is a decodable envelope.
	event, err := domain.DecodeEvent(ch.published[0].Body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventSalesOrderCreated, event.Kind)
}

func TestPublisher_PurchaseOrdersUseOwnRoutingKey(t *testing.T) {
	var made []*fakeChannel
	pub := NewPublisher(NewChannelPool(countingFactory(&made), 2), "partner-orders")

	require.NoError(t, pub.Publish(context.Background(), testEvent(t, domain.PurchaseOrder)))
	require.Len(t, made, 1)
	assert.Equal(t, []string{"new-purchase-order"}, made[0].publishKey)
}

func TestPublisher_ReleasesChannelOnFailure(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	pub := NewPublisher(pool, "partner-orders")

	// First acquire primes the pool with a channel rigged to fail.
	ch, err := pool.Acquire()
	require.NoError(t, err)
	ch.(*fakeChannel).publishErr = errors.New("channel broken")
	pool.Release(ch)

	err = pub.Publish(context.Background(), testEvent(t, domain.SalesOrder))
	assert.Error(t, err, "transport failures propagate to the caller")

	// The channel went back to the pool on the error path.
	again, err := pool.Acquire()
	require.NoError(t, err)
	assert.Same(t, ch, again)
}

func TestPublisher_NoInternalRetry(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	pub := NewPublisher(pool, "partner-orders")

	ch, err := pool.Acquire()
	require.NoError(t, err)
	ch.(*fakeChannel).publishErr = errors.New("broker unreachable")
	pool.Release(ch)

	_ = pub.Publish(context.Background(), testEvent(t, domain.SalesOrder))
	assert.Empty(t, ch.(*fakeChannel).published, "publisher must not retry on its own")
}
