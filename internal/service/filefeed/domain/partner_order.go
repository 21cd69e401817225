package domain

import (
	"encoding/xml"
	"time"

	"github.com/shopspring/decimal"
)

// PartnerOrderDocument is the wire shape of one partner order in the file
// feed. The validate tags mirror the schema's required-field annotations;
// the validation gate enforces them after strict decoding.
type PartnerOrderDocument struct {
	XMLName         xml.Name        `xml:"PartnerOrder"`
	OrderNo         string          `xml:"OrderNo" validate:"required"`
	ProcessingDate  time.Time       `xml:"ProcessingDate"`
	Customer        PartnerCustomer `xml:"Customer" validate:"required"`
	ShipmentAddress string          `xml:"ShipmentAddress"`
	Status          string          `xml:"Status"`
	Lines           []PartnerLine   `xml:"Lines>Line" validate:"dive"`
}

type PartnerCustomer struct {
	CustomerNo   string `xml:"CustomerNo" validate:"required"`
	Name         string `xml:"Name"`
	AddressLine1 string `xml:"AddressLine1"`
	AddressLine2 string `xml:"AddressLine2"`
	City         string `xml:"City"`
	Country      string `xml:"Country"`
	PostalCode   string `xml:"PostalCode"`
	PhoneNumber  string `xml:"PhoneNumber"`
	Email        string `xml:"Email"`
}

type PartnerLine struct {
	Product  PartnerProduct  `xml:"Product" validate:"required"`
	Quantity decimal.Decimal `xml:"Quantity"`
}

type PartnerProduct struct {
	ProductCode string `xml:"ProductCode" validate:"required"`
	Title       string `xml:"Title"`
	Description string `xml:"Description"`
}

// UniformSign reports whether every line quantity shares one sign, and
// which. All-positive is a new order, all-negative a reversal; a mix is
// invalid. Zero quantities are never valid.
func (d *PartnerOrderDocument) UniformSign() (positive bool, ok bool) {
	if len(d.Lines) == 0 {
		return false, false
	}
	sign := d.Lines[0].Quantity.Sign()
	if sign == 0 {
		return false, false
	}
	for _, line := range d.Lines[1:] {
		if line.Quantity.Sign() != sign {
			return false, false
		}
	}
	return sign > 0, true
}
