package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wmslink/internal/service/order/domain"
)

// fakeCustomerRepo and fakeProductRepo are in-memory stand-ins for the
// reference-data repositories.
type fakeCustomerRepo struct {
	customers map[string]domain.Customer
	calls     int
}

func (f *fakeCustomerRepo) FindByCustomerNo(_ context.Context, customerNo string) (*domain.Customer, error) {
	f.calls++
	if c, ok := f.customers[customerNo]; ok {
		return &c, nil
	}
	return nil, nil
}

type fakeProductRepo struct {
	products map[string]domain.Product
	calls    int
}

func (f *fakeProductRepo) FindByCodes(_ context.Context, codes []string) ([]domain.Product, error) {
	f.calls++
	seen := map[string]bool{}
	var out []domain.Product
	for _, code := range codes {
		if p, ok := f.products[code]; ok && !seen[code] {
			seen[code] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func catalogRefs() (*fakeCustomerRepo, *fakeProductRepo, *ReferenceValidator) {
	customers := &fakeCustomerRepo{customers: map[string]domain.Customer{
		"C1": {ID: "c-1", CustomerNo: "C1", Name: "Acme Logistics"},
	}}
	products := &fakeProductRepo{products: map[string]domain.Product{
		"P1": {ID: "p-1", ProductCode: "P1", Title: "Pallet"},
		"P2": {ID: "p-2", ProductCode: "P2", Title: "Crate"},
		"P3": {ID: "p-3", ProductCode: "P3", Title: "Drum"},
	}}
	return customers, products, NewReferenceValidator(customers, products)
}

func request(orderNo string, codes ...string) CreateOrderRequest {
	req := CreateOrderRequest{
		OrderID:        orderNo,
		ProcessingDate: time.Now(),
		CustomerID:     "C1",
	}
	for i, code := range codes {
		req.Lines = append(req.Lines, OrderLineRequest{
			ProductCode: code,
			Quantity:    decimal.NewFromInt(int64(i + 1)),
		})
	}
	return req
}

func TestMapOrder_AssignsDenseLineNumbers(t *testing.T) {
	_, _, refs := catalogRefs()
	ctx := context.Background()

	req := request("SO-100", "P1", "P2", "P3")
	customer, err := refs.ResolveCustomer(ctx, req.CustomerID)
	require.NoError(t, err)
	products, err := refs.ResolveProducts(ctx, []string{"P1", "P2", "P3"})
	require.NoError(t, err)

	order, err := MapOrder(domain.SalesOrder, req, customer, products)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCreated, order.Status)
	lines := order.ActiveLines()
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, i+1, line.LineNo)
		assert.Equal(t, req.Lines[i].ProductCode, line.Product.ProductCode)
	}
}

func TestMapOrder_RejectsUnresolvedCustomer(t *testing.T) {
	_, _, refs := catalogRefs()
	ctx := context.Background()

	customer, err := refs.ResolveCustomer(ctx, "C999")
	require.NoError(t, err)
	require.Nil(t, customer)

	products, err := refs.ResolveProducts(ctx, []string{"P1"})
	require.NoError(t, err)

	_, err = MapOrder(domain.SalesOrder, request("SO-101", "P1"), customer, products)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestResolveProducts_FailsClosedOnCountMismatch(t *testing.T) {
	_, _, refs := catalogRefs()

	_, err := refs.ResolveProducts(context.Background(), []string{"P1", "P404"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestResolveProducts_RejectsDuplicateCodes(t *testing.T) {
	_, _, refs := catalogRefs()

	// Two lines for one product resolve to a single catalog entry, which
	// breaks the 1:1 policy.
	_, err := refs.ResolveProducts(context.Background(), []string{"P1", "P1"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestMapOrder_NoAggregateOnMismatch(t *testing.T) {
	_, _, refs := catalogRefs()
	ctx := context.Background()

	customer, err := refs.ResolveCustomer(ctx, "C1")
	require.NoError(t, err)

	// Resolved set smaller than the request's line count.
	products := map[string]domain.Product{"P1": {ProductCode: "P1"}}
	order, err := MapOrder(domain.SalesOrder, request("SO-102", "P1", "P2"), customer, products)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Nil(t, order)
}
