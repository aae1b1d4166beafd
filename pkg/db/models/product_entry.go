package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// ProductEntry is one received stock lot, consumed oldest-first.
//
// Pending entries await acceptance and do not count toward sellable stock.
// Entries are never deleted; consumption only moves SaledQuantity upward
// until Salled flips when the lot is exhausted.
type ProductEntry struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	WarehouseID        uuid.UUID         `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Quantity           int               `gorm:"column:quantity;not null"`
	SaledQuantity      int               `gorm:"column:saled_quantity;not null;default:0"`
	Salled             bool              `gorm:"column:salled;not null;default:false"`
	Status             enums.EntryStatus `gorm:"column:status;not null;default:'done'"`
	EntryDate          time.Time         `gorm:"column:entry_date;not null"`
	PurchasePriceCents int64             `gorm:"column:purchase_price_cents;not null;default:0"`
	AcceptedByID       *uuid.UUID        `gorm:"column:accepted_by_id;type:uuid"`
	AcceptedDate       *time.Time        `gorm:"column:accepted_date"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining is the unconsumed capacity of the lot.
func (e ProductEntry) Remaining() int {
	return e.Quantity - e.SaledQuantity
}
