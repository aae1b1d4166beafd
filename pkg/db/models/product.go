package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the per-warehouse sellable aggregate for one catalog entry.
//
// Quantity must always equal the sum of (quantity - saled_quantity) over the
// product's done entries. Only the allocation engine and the stock receiving
// and acceptance paths may move it.
type Product struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID    uuid.UUID     `gorm:"column:warehouse_id;type:uuid;not null;index:idx_products_warehouse_entry,unique"`
	CatalogEntryID uuid.UUID     `gorm:"column:catalog_entry_id;type:uuid;not null;index:idx_products_warehouse_entry,unique"`
	Quantity       int           `gorm:"column:quantity;not null;default:0"`
	CatalogEntry   *CatalogEntry `gorm:"foreignKey:CatalogEntryID"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
