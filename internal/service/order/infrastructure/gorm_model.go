package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// Database models are kept apart from domain types; mapper.go converts
// between the two.

type OrderModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	Type            string `gorm:"size:16;uniqueIndex:idx_orders_type_no"`
	OrderNo         string `gorm:"size:64;uniqueIndex:idx_orders_type_no"`
	ProcessingDate  time.Time
	CustomerNo      string        `gorm:"size:64;index"`
	Customer        CustomerModel `gorm:"foreignKey:CustomerNo;references:CustomerNo"`
	ShipmentAddress string        `gorm:"size:512"`
	Status          string        `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []OrderLineModel `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string { return "orders" }

type OrderLineModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:36;index"`
	LineNo      int
	ProductCode string          `gorm:"size:64"`
	Product     ProductModel    `gorm:"foreignKey:ProductCode;references:ProductCode"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4)"`
	Deleted     bool
}

func (OrderLineModel) TableName() string { return "order_lines" }

type CustomerModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	CustomerNo   string `gorm:"size:64;uniqueIndex"`
	Name         string `gorm:"size:256"`
	AddressLine1 string `gorm:"size:256"`
	AddressLine2 string `gorm:"size:256"`
	City         string `gorm:"size:128"`
	Country      string `gorm:"size:128"`
	PostalCode   string `gorm:"size:32"`
	PhoneNumber  string `gorm:"size:64"`
	Email        string `gorm:"size:256"`
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CustomerModel) TableName() string { return "customers" }

type ProductModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	ProductCode string `gorm:"size:64;uniqueIndex"`
	Title       string `gorm:"size:256"`
	Description string `gorm:"size:1024"`
	Width       decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Height      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Length      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Weight      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string { return "products" }
