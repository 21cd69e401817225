package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNilEvent         = errors.New("event is nil")
	ErrEmptyOrder       = errors.New("order has no active lines")
	ErrUnknownEventKind = errors.New("unknown event kind")
)

// EventKind is a closed set of integration-event types. Dispatch happens on
// the decoded kind, never on raw envelope strings downstream.
type EventKind string

const (
	EventSalesOrderCreated    EventKind = "SalesOrderCreated"
	EventPurchaseOrderCreated EventKind = "PurchaseOrderCreated"
)

// KindForOrderType maps an order stream to its created-event kind.
func KindForOrderType(t OrderType) EventKind {
	if t == PurchaseOrder {
		return EventPurchaseOrderCreated
	}
	return EventSalesOrderCreated
}

// RoutingKey is the broker routing key for this kind. One key per
// order-type channel.
func (k EventKind) RoutingKey() string {
	if k == EventPurchaseOrderCreated {
		return "new-purchase-order"
	}
	return "new-sales-order"
}

// Queue is the durable queue bound to RoutingKey.
func (k EventKind) Queue() string {
	return k.RoutingKey()
}

func (k EventKind) valid() bool {
	return k == EventSalesOrderCreated || k == EventPurchaseOrderCreated
}

// Event is the wire unit published to the broker. The payload carries the
// order header plus a flattened copy of its active lines, so a receiver
// never has to reach into the aggregate's internal collection. Events are
// immutable once constructed; build them with NewOrderCreatedEvent or
// DecodeEvent only.
type Event struct {
	Kind         EventKind
	DateOccurred time.Time
	Order        *Order
	Lines        []OrderLine
}

// NewOrderCreatedEvent builds the created-event for an order. An aggregate
// with zero active lines is never published.
func NewOrderCreatedEvent(o *Order) (*Event, error) {
	if o == nil {
		return nil, ErrNilEvent
	}
	lines := o.ActiveLines()
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return &Event{
		Kind:         KindForOrderType(o.Type),
		DateOccurred: time.Now().UTC(),
		Order:        o,
		Lines:        lines,
	}, nil
}

// envelope is the self-describing JSON shape on the wire.
type envelope struct {
	EventType    string      `json:"eventType"`
	DateOccurred time.Time   `json:"dateOccurred"`
	Order        *Order      `json:"order"`
	OrderLines   []OrderLine `json:"orderLines"`
}

func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{
		EventType:    string(e.Kind),
		DateOccurred: e.DateOccurred,
		Order:        e.Order,
		OrderLines:   e.Lines,
	})
}

// DecodeEvent parses a wire envelope and resolves its kind against the
// closed set. It is the only deserialization path for events.
func DecodeEvent(data []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	kind := EventKind(env.EventType)
	if !kind.valid() {
		return nil, ErrUnknownEventKind
	}
	if env.Order == nil {
		return nil, ErrNilEvent
	}
	return &Event{
		Kind:         kind,
		DateOccurred: env.DateOccurred,
		Order:        env.Order,
		Lines:        env.OrderLines,
	}, nil
}

// Restore re-attaches the flattened lines to the order header, rebuilding
// the aggregate a consumer hands to its handler.
func (e *Event) Restore() *Order {
	e.Order.AttachLines(e.Lines)
	return e.Order
}
