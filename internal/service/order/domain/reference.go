package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidReference flags a master-data record without its business key.
var ErrInvalidReference = errors.New("reference data is missing its business key")

// Customer and Product are reference data owned by the upstream WMS, which
// pushes them through the master-data endpoints. Orders hold read-only
// copies; the order pipeline never mutates either.

type Customer struct {
	ID           string `json:"id"`
	CustomerNo   string `json:"customerNo"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Email        string `json:"email,omitempty"`
	IsActive     bool   `json:"isActive"`
}

type Product struct {
	ID          string              `json:"id"`
	ProductCode string              `json:"productCode"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Width       decimal.NullDecimal `json:"width,omitempty"`
	Height      decimal.NullDecimal `json:"height,omitempty"`
	Length      decimal.NullDecimal `json:"length,omitempty"`
	Weight      decimal.NullDecimal `json:"weight,omitempty"`
	IsActive    bool                `json:"isActive"`
}
