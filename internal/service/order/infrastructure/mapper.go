package infrastructure

import (
	"github.com/google/uuid"

	"wmslink/internal/service/order/domain"
)

func toOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:              o.ID.String(),
		Type:            string(o.Type),
		OrderNo:         o.OrderNo,
		ProcessingDate:  o.ProcessingDate,
		CustomerNo:      o.Customer.CustomerNo,
		ShipmentAddress: o.ShipmentAddress,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, l := range o.AllLines() {
		m.Lines = append(m.Lines, OrderLineModel{
			OrderID:     m.ID,
			LineNo:      l.LineNo,
			ProductCode: l.Product.ProductCode,
			Quantity:    l.Quantity,
			Deleted:     l.Deleted,
		})
	}
	return m
}

func toDomainOrder(m *OrderModel) (*domain.Order, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	order := &domain.Order{
		ID:              id,
		Type:            domain.OrderType(m.Type),
		OrderNo:         m.OrderNo,
		ProcessingDate:  m.ProcessingDate,
		Customer:        toDomainCustomer(&m.Customer),
		ShipmentAddress: m.ShipmentAddress,
		Status:          domain.Status(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	lines := make([]domain.OrderLine, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, domain.OrderLine{
			LineNo:   l.LineNo,
			Product:  toDomainProduct(&l.Product),
			Quantity: l.Quantity,
			Deleted:  l.Deleted,
		})
	}
	order.AttachLines(lines)
	return order, nil
}

func toCustomerModel(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:           c.ID,
		CustomerNo:   c.CustomerNo,
		Name:         c.Name,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		Country:      c.Country,
		PostalCode:   c.PostalCode,
		PhoneNumber:  c.PhoneNumber,
		Email:        c.Email,
		IsActive:     c.IsActive,
	}
}

func toProductModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		ProductCode: p.ProductCode,
		Title:       p.Title,
		Description: p.Description,
		Width:       p.Width,
		Height:      p.Height,
		Length:      p.Length,
		Weight:      p.Weight,
		IsActive:    p.IsActive,
	}
}

func toDomainCustomer(m *CustomerModel) domain.Customer {
	return domain.Customer{
		ID:           m.ID,
		CustomerNo:   m.CustomerNo,
		Name:         m.Name,
		AddressLine1: m.AddressLine1,
		AddressLine2: m.AddressLine2,
		City:         m.City,
		Country:      m.Country,
		PostalCode:   m.PostalCode,
		PhoneNumber:  m.PhoneNumber,
		Email:        m.Email,
		IsActive:     m.IsActive,
	}
}

func toDomainProduct(m *ProductModel) domain.Product {
	return domain.Product{
		ID:          m.ID,
		ProductCode: m.ProductCode,
		Title:       m.Title,
		Description: m.Description,
		Width:       m.Width,
		Height:      m.Height,
		Length:      m.Length,
		Weight:      m.Weight,
		IsActive:    m.IsActive,
	}
}
