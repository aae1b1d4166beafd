package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/oybekm/stockyard-backend/pkg/enums"
	"github.com/oybekm/stockyard-backend/pkg/pagination"
)

// ReceiveInput records a delivered lot against a warehouse SKU. A zero
// EntryDate defaults to the current time.
type ReceiveInput struct {
	WarehouseID        uuid.UUID
	CatalogEntryID     uuid.UUID
	Quantity           int
	PurchasePriceCents int64
	EntryDate          time.Time
}

// PendingEntryInput queues a lot that has arrived but not been counted yet.
type PendingEntryInput struct {
	WarehouseID        uuid.UUID
	CatalogEntryID     uuid.UUID
	Quantity           int
	PurchasePriceCents int64
	EntryDate          time.Time
}

// AcceptEntryInput promotes a pending lot into sellable stock.
type AcceptEntryInput struct {
	EntryID      uuid.UUID
	AcceptedByID uuid.UUID
}

// ListProductsInput filters the per-warehouse product listing.
type ListProductsInput struct {
	WarehouseID uuid.UUID
	Search      string
	Page        pagination.Params
}

// ListEntriesInput filters the lot listing.
type ListEntriesInput struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	Status      enums.EntryStatus
	Page        pagination.Params
}

// IntegrityReport compares a product's aggregate counter against its lots.
type IntegrityReport struct {
	ProductID         uuid.UUID `json:"product_id"`
	AggregateQuantity int       `json:"aggregate_quantity"`
	LotQuantity       int       `json:"lot_quantity"`
	Consistent        bool      `json:"consistent"`
}
