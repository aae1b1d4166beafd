package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// ClientOrder is one credit or cash sale against a warehouse.
//
// Confirmed flips false to true exactly once, on successful allocation.
// BalanceCents stays at total minus paid while on credit and is forced to
// zero when the order is settled.
type ClientOrder struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ClientID        uuid.UUID         `gorm:"column:client_id;type:uuid;not null;index"`
	WarehouseID     uuid.UUID         `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Type            enums.SaleType    `gorm:"column:type;not null"`
	TotalCents      int64             `gorm:"column:total_cents;not null;default:0"`
	AmountPaidCents int64             `gorm:"column:amount_paid_cents;not null;default:0"`
	BalanceCents    int64             `gorm:"column:balance_cents;not null;default:0"`
	Status          enums.OrderStatus `gorm:"column:status;not null"`
	Confirmed       bool              `gorm:"column:confirmed;not null;default:false"`
	Payday          *time.Time        `gorm:"column:payday"`
	OrderDate       time.Time         `gorm:"column:order_date;not null"`
	Sales           []ProductSale     `gorm:"foreignKey:ClientOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
