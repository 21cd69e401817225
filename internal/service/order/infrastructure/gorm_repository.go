package infrastructure

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// AutoMigrate creates the schema for every model this package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CustomerModel{}, &ProductModel{}, &OrderModel{}, &OrderLineModel{})
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	// Customer and products are reference data owned elsewhere; only the
	// order rows are written here.
	err := r.db.WithContext(ctx).Omit("Customer", "Lines.Product").Create(model).Error
	return errors.Wrap(err, "save order")
}

func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", order.ID.String()).
		Updates(map[string]interface{}{
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt,
		}).Error
	return errors.Wrap(err, "update order")
}

func (r *GormOrderRepository) FindByOrderNo(ctx context.Context, typ domain.OrderType, orderNo string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_lines.line_no") }).
		Preload("Lines.Product").
		Where("type = ? AND order_no = ?", string(typ), orderNo).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "find order")
	}
	return toDomainOrder(&model)
}

func (r *GormOrderRepository) List(ctx context.Context, typ domain.OrderType) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_lines.line_no") }).
		Preload("Lines.Product").
		Where("type = ?", string(typ)).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		order, err := toDomainOrder(&models[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByCustomerNo returns (nil, nil) on a miss; errors mean the lookup
// itself failed.
func (r *GormCustomerRepository) FindByCustomerNo(ctx context.Context, customerNo string) (*domain.Customer, error) {
	var model CustomerModel
	err := r.db.WithContext(ctx).Where("customer_no = ?", customerNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find customer")
	}
	customer := toDomainCustomer(&model)
	return &customer, nil
}

// Upsert inserts or replaces the row keyed by customer_no. The surrogate
// ID is generated here for new rows and kept for existing ones.
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	model := toCustomerModel(customer)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_no"}},
			UpdateAll: true,
		}).
		Create(model).Error
	return errors.Wrap(err, "upsert customer")
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByCodes(ctx context.Context, codes []string) ([]domain.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var models []ProductModel
	err := r.db.WithContext(ctx).Where("product_code IN ?", codes).Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	products := make([]domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products, nil
}

// Upsert inserts or replaces the row keyed by product_code.
func (r *GormProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	model := toProductModel(product)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_code"}},
			UpdateAll: true,
		}).
		Create(model).Error
	return errors.Wrap(err, "upsert product")
}

var _ port.OrderRepository = (*GormOrderRepository)(nil)
var _ port.CustomerRepository = (*GormCustomerRepository)(nil)
var _ port.ProductRepository = (*GormProductRepository)(nil)
var _ port.CustomerWriter = (*GormCustomerRepository)(nil)
var _ port.ProductWriter = (*GormProductRepository)(nil)
