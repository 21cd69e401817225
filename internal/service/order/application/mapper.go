package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// CreateOrderRequest is the ephemeral input shape shared by the API and the
// file feed. OrderID is the partner's external order number.
type CreateOrderRequest struct {
	OrderID         string             `json:"orderId"`
	ProcessingDate  time.Time          `json:"processingDate"`
	CustomerID      string             `json:"customerId"`
	ShipmentAddress string             `json:"shipmentAddress"`
	Lines           []OrderLineRequest `json:"lines"`
}

type OrderLineRequest struct {
	ProductCode string          `json:"productCode"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ReferenceValidator resolves customer and product references against the
// catalog. Pure lookup; it never mutates reference data.
type ReferenceValidator struct {
	customers port.CustomerRepository
	products  port.ProductRepository
}

func NewReferenceValidator(customers port.CustomerRepository, products port.ProductRepository) *ReferenceValidator {
	return &ReferenceValidator{customers: customers, products: products}
}

// ResolveCustomer returns the customer for a business key, or nil on a miss.
func (v *ReferenceValidator) ResolveCustomer(ctx context.Context, customerNo string) (*domain.Customer, error) {
	return v.customers.FindByCustomerNo(ctx, customerNo)
}

// ResolveProducts resolves the requested codes and enforces the fail-closed
// count policy: the resolution must be exactly 1:1 with the requested line
// items, otherwise the whole order is rejected. No partial acceptance.
func (v *ReferenceValidator) ResolveProducts(ctx context.Context, codes []string) (map[string]domain.Product, error) {
	resolved, err := v.products.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(codes) {
		return nil, domain.ErrInvalidOrder
	}
	byCode := make(map[string]domain.Product, len(resolved))
	for _, p := range resolved {
		byCode[p.ProductCode] = p
	}
	return byCode, nil
}

// MapOrder builds a new aggregate from a validated request. Line numbers
// are assigned 1..N in request order; callers never supply them. Returns
// domain.ErrInvalidOrder when the customer is unresolved or a line's
// product is missing from the resolved set.
func MapOrder(typ domain.OrderType, req CreateOrderRequest, customer *domain.Customer, products map[string]domain.Product) (*domain.Order, error) {
	if customer == nil {
		return nil, domain.ErrInvalidOrder
	}
	if len(products) != len(req.Lines) {
		return nil, domain.ErrInvalidOrder
	}

	order := domain.NewOrder(typ, req.OrderID, req.ProcessingDate, *customer, req.ShipmentAddress)
	for i, line := range req.Lines {
		product, ok := products[line.ProductCode]
		if !ok {
			return nil, domain.ErrInvalidOrder
		}
		order.AddLine(domain.OrderLine{
			LineNo:   i + 1,
			Product:  product,
			Quantity: line.Quantity,
		})
	}
	return order, nil
}
