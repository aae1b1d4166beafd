package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// Repository exposes persistence for orders and their sale lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.ClientOrder) error
	CreateSales(ctx context.Context, sales []models.ProductSale) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error)
	SetTotals(ctx context.Context, orderID uuid.UUID, totalCents, amountPaidCents, balanceCents int64, status enums.OrderStatus) error
	MarkConfirmed(ctx context.Context, orderID uuid.UUID) (int64, error)
	SettleOrder(ctx context.Context, orderID uuid.UUID, priorPaidCents, totalCents int64) (int64, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	ListOrders(ctx context.Context, input ListOrdersInput) ([]models.ClientOrder, int64, error)
	ListSales(ctx context.Context, input ListSalesInput) ([]models.ProductSale, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.ClientOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateSales(ctx context.Context, sales []models.ProductSale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sales).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error) {
	var order models.ClientOrder
	err := r.db.WithContext(ctx).
		Preload("Sales").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) SetTotals(ctx context.Context, orderID uuid.UUID, totalCents, amountPaidCents, balanceCents int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"total_cents":       totalCents,
			"amount_paid_cents": amountPaidCents,
			"balance_cents":     balanceCents,
			"status":            status,
		}).Error
}

// MarkConfirmed flips the confirmation flag exactly once. Zero rows affected
// means the order was already confirmed or is gone.
func (r *repository) MarkConfirmed(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("id = ? AND confirmed = ?", orderID, false).
		Update("confirmed", true)
	return result.RowsAffected, result.Error
}

// SettleOrder moves the paid amount to the order total under a guard on the
// previous value so two concurrent settlements cannot both apply.
func (r *repository) SettleOrder(ctx context.Context, orderID uuid.UUID, priorPaidCents, totalCents int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("id = ? AND amount_paid_cents = ?", orderID, priorPaidCents).
		Updates(map[string]any{
			"amount_paid_cents": totalCents,
			"balance_cents":     0,
			"status":            enums.OrderStatusPaid,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("client_order_id = ?", orderID).
		Delete(&models.ProductSale{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Delete(&models.ClientOrder{}).Error
}

func (r *repository) ListOrders(ctx context.Context, input ListOrdersInput) ([]models.ClientOrder, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ClientOrder{})
	if input.ClientID != uuid.Nil {
		base = base.Where("client_id = ?", input.ClientID)
	}
	if input.WarehouseID != uuid.Nil {
		base = base.Where("warehouse_id = ?", input.WarehouseID)
	}
	if input.Status != "" {
		base = base.Where("status = ?", input.Status)
	}
	if input.Confirmed != nil {
		base = base.Where("confirmed = ?", *input.Confirmed)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := input.Page.Window()
	var orders []models.ClientOrder
	err := base.
		Preload("Sales").
		Order("order_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListSales(ctx context.Context, input ListSalesInput) ([]models.ProductSale, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ProductSale{})
	if input.WarehouseID != uuid.Nil {
		base = base.Where("warehouse_id = ?", input.WarehouseID)
	}
	if input.ProductID != uuid.Nil {
		base = base.Where("product_id = ?", input.ProductID)
	}
	if input.From != nil {
		base = base.Where("sale_date >= ?", *input.From)
	}
	if input.To != nil {
		base = base.Where("sale_date < ?", *input.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := input.Page.Window()
	var sales []models.ProductSale
	err := base.
		Order("sale_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
