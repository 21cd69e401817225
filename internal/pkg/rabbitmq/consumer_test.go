package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wmslink/internal/service/order/domain"
)

type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type recordingHandler struct {
	mu      sync.Mutex
	events  []*domain.Event
	succeed bool
}

func (h *recordingHandler) Handle(_ context.Context, event *domain.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.succeed
}

func salesDelivery(t *testing.T, ack *fakeAcknowledger, redelivered bool) amqp.Delivery {
	t.Helper()
	event := testEvent(t, domain.SalesOrder)
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func TestConsumer_AcksOnHandlerSuccess(t *testing.T) {
	handler := &recordingHandler{succeed: true}
	c := NewConsumer(nil, "partner-orders", domain.EventSalesOrderCreated, handler)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), salesDelivery(t, ack, false))

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	require.Len(t, handler.events, 1)
	// Flattened lines were re-attached before dispatch.
	assert.Len(t, handler.events[0].Order.ActiveLines(), 1)
}

func TestConsumer_NeverAcksOnHandlerFailure(t *testing.T) {
	handler := &recordingHandler{succeed: false}
	c := NewConsumer(nil, "partner-orders", domain.EventSalesOrderCreated, handler)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), salesDelivery(t, ack, false))

	assert.Zero(t, ack.acks, "a failed handler must leave the message redeliverable")
	require.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeue[0], "first failure requeues")
}

func TestConsumer_DropsAfterRedelivery(t *testing.T) {
	handler := &recordingHandler{succeed: false}
	c := NewConsumer(nil, "partner-orders", domain.EventSalesOrderCreated, handler)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), salesDelivery(t, ack, true))

	require.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue[0], "a redelivered poison message is dropped")
}

func TestConsumer_RejectsUndecodableBody(t *testing.T) {
	handler := &recordingHandler{succeed: true}
	c := NewConsumer(nil, "partner-orders", domain.EventSalesOrderCreated, handler)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("not json")})

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.Empty(t, handler.events)
}

func TestConsumer_DropsMisroutedKind(t *testing.T) {
	handler := &recordingHandler{succeed: true}
	c := NewConsumer(nil, "partner-orders", domain.EventPurchaseOrderCreated, handler)
	ack := &fakeAcknowledger{}

	// A sales event delivered to the purchase queue will never match.
	c.handleDelivery(context.Background(), salesDelivery(t, ack, false))

	assert.Zero(t, ack.acks)
	require.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue[0])
	assert.Empty(t, handler.events)
}

func TestConsumer_StartBindsQueueWithPrefetchOne(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	handler := &recordingHandler{succeed: true}
	c := NewConsumer(pool, "partner-orders", domain.EventSalesOrderCreated, handler)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	require.Len(t, made, 1)
	ch := made[0]
	assert.Equal(t, []string{"partner-orders/direct"}, ch.declares)
	assert.Equal(t, []string{"new-sales-order"}, ch.queues)
	assert.Equal(t, [][2]string{{"new-sales-order", "new-sales-order"}}, ch.bindings)
	assert.Equal(t, 1, ch.prefetch)
}

func TestConsumer_StopClosesChannelInsteadOfPooling(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	c := NewConsumer(pool, "partner-orders", domain.EventSalesOrderCreated, &recordingHandler{succeed: true})

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	// The channel holds a consume registration; parking it would hand
	// queued deliveries to the next publisher that acquires it.
	require.Len(t, made, 1)
	assert.True(t, made[0].IsClosed())

	next, err := pool.Acquire()
	require.NoError(t, err)
	assert.NotSame(t, made[0], next)
}

func TestConsumer_DispatchesDeliveries(t *testing.T) {
	var made []*fakeChannel
	pool := NewChannelPool(countingFactory(&made), 2)
	handler := &recordingHandler{succeed: true}
	c := NewConsumer(pool, "partner-orders", domain.EventSalesOrderCreated, handler)

	require.NoError(t, c.Start(context.Background()))

	ack := &fakeAcknowledger{}
	made[0].deliveries <- salesDelivery(t, ack, false)

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acks == 1
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	require.Len(t, handler.events, 1)
}
