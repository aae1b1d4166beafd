package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is one catalog dimension of a SKU (what the product is).
type Item struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Brand is one catalog dimension of a SKU (who makes it).
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Model is one catalog dimension of a SKU (which variant).
type Model struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CatalogEntry is the item+brand+model combination that prices a SKU.
// Prices are frozen onto sales at order-creation time, so later edits here
// never rewrite existing orders.
type CatalogEntry struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemID              uuid.UUID `gorm:"column:item_id;type:uuid;not null;index:idx_catalog_combo,unique"`
	BrandID             uuid.UUID `gorm:"column:brand_id;type:uuid;not null;index:idx_catalog_combo,unique"`
	ModelID             uuid.UUID `gorm:"column:model_id;type:uuid;not null;index:idx_catalog_combo,unique"`
	PriceCents          int64     `gorm:"column:price_cents;not null"`
	WholesalePriceCents int64     `gorm:"column:wholesale_price_cents;not null"`
	Item                *Item     `gorm:"foreignKey:ItemID"`
	Brand               *Brand    `gorm:"foreignKey:BrandID"`
	Model               *Model    `gorm:"foreignKey:ModelID"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
