package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// ProductSale is one line item of a client order. The total is backfilled
// during the two-phase order creation and immutable afterwards.
type ProductSale struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ClientOrderID uuid.UUID      `gorm:"column:client_order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	WarehouseID   uuid.UUID      `gorm:"column:warehouse_id;type:uuid;not null"`
	Quantity      int            `gorm:"column:quantity;not null"`
	TotalCents    int64          `gorm:"column:total_cents;not null;default:0"`
	Type          enums.SaleType `gorm:"column:type;not null"`
	SaleDate      time.Time      `gorm:"column:sale_date;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
