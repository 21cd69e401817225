package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder      = errors.New("order references an unknown customer or product")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OrderType selects which partner-order stream an aggregate belongs to.
// Sales and purchase orders share one shape and differ only in routing.
type OrderType string

const (
	SalesOrder    OrderType = "sales"
	PurchaseOrder OrderType = "purchase"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case SalesOrder, PurchaseOrder:
		return OrderType(s), nil
	}
	return "", errors.New("unknown order type: " + s)
}

// Order is the aggregate root for a partner order. It exclusively owns its
// lines; collaborators only ever see the active (non-deleted) subset.
type Order struct {
	ID              uuid.UUID `json:"id"`
	Type            OrderType `json:"type"`
	OrderNo         string    `json:"orderNo"`
	ProcessingDate  time.Time `json:"processingDate"`
	Customer        Customer  `json:"customer"`
	ShipmentAddress string    `json:"shipmentAddress"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAtUtc"`
	UpdatedAt       time.Time `json:"updatedAtUtc"`

	lines []OrderLine
}

// OrderLine is a value owned by its Order. LineNo is assigned by the mapper,
// dense and 1-based in request order. Deleted lines stay in the aggregate
// until an explicit RemoveLine call but are hidden from ActiveLines.
type OrderLine struct {
	LineNo   int             `json:"lineNo"`
	Product  Product         `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Deleted  bool            `json:"deleted"`
}

func NewOrder(typ OrderType, orderNo string, processingDate time.Time, customer Customer, shipmentAddress string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:              uuid.New(),
		Type:            typ,
		OrderNo:         orderNo,
		ProcessingDate:  processingDate,
		Customer:        customer,
		ShipmentAddress: shipmentAddress,
		Status:          StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (o *Order) AddLine(line OrderLine) {
	o.lines = append(o.lines, line)
}

// AttachLines replaces the internal line collection wholesale. Used when an
// aggregate is rebuilt from a wire event or a database row set.
func (o *Order) AttachLines(lines []OrderLine) {
	o.lines = append([]OrderLine(nil), lines...)
}

// ActiveLines returns the lines collaborators are allowed to see, with
// soft-deleted entries filtered out.
func (o *Order) ActiveLines() []OrderLine {
	out := make([]OrderLine, 0, len(o.lines))
	for _, l := range o.lines {
		if !l.Deleted {
			out = append(out, l)
		}
	}
	return out
}

// AllLines exposes the full collection, tombstones included. Persistence
// needs it; everything else should use ActiveLines.
func (o *Order) AllLines() []OrderLine {
	return append([]OrderLine(nil), o.lines...)
}

// MarkLineDeleted tombstones the line with the given number. The line stays
// in the collection so line numbering remains stable.
func (o *Order) MarkLineDeleted(lineNo int) bool {
	for i := range o.lines {
		if o.lines[i].LineNo == lineNo {
			o.lines[i].Deleted = true
			o.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// RemoveLine physically removes a line. This is the only way a line leaves
// the aggregate.
func (o *Order) RemoveLine(lineNo int) bool {
	for i := range o.lines {
		if o.lines[i].LineNo == lineNo {
			o.lines = append(o.lines[:i], o.lines[i+1:]...)
			o.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Cancel moves the order to Cancelled. Cancelling an already cancelled
// order is a no-op.
func (o *Order) Cancel() error {
	if o.Status == StatusCancelled {
		return nil
	}
	if o.Status != StatusCreated {
		return ErrInvalidTransition
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}
