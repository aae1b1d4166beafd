package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	"github.com/oybekm/stockyard-backend/pkg/pagination"
)

// OrderLineInput is one requested product line.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput builds a draft order with priced lines. Stock does not
// move until the order is confirmed. AmountPaidCents records a down payment
// taken at creation; when it covers the full total the order starts paid.
type CreateOrderInput struct {
	ClientID        uuid.UUID
	WarehouseID     uuid.UUID
	Type            enums.SaleType
	Payday          *time.Time
	OrderDate       time.Time
	AmountPaidCents int64
	Lines           []OrderLineInput
}

// ListOrdersInput filters the order listing.
type ListOrdersInput struct {
	ClientID    uuid.UUID
	WarehouseID uuid.UUID
	Status      enums.OrderStatus
	Confirmed   *bool
	Page        pagination.Params
}

// ListSalesInput filters sale lines across orders.
type ListSalesInput struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	From        *time.Time
	To          *time.Time
	Page        pagination.Params
}

// SaleDTO is the wire shape of one sale line.
type SaleDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Type      enums.SaleType  `json:"type"`
	SaleDate  time.Time       `json:"sale_date"`
}

// OrderDTO is the wire shape of an order, with money rendered as decimal
// units rather than cents.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	ClientID    uuid.UUID         `json:"client_id"`
	WarehouseID uuid.UUID         `json:"warehouse_id"`
	Type        enums.SaleType    `json:"type"`
	Total       decimal.Decimal   `json:"total"`
	AmountPaid  decimal.Decimal   `json:"amount_paid"`
	Balance     decimal.Decimal   `json:"balance"`
	Status      enums.OrderStatus `json:"status"`
	Confirmed   bool              `json:"confirmed"`
	Payday      *time.Time        `json:"payday,omitempty"`
	OrderDate   time.Time         `json:"order_date"`
	Sales       []SaleDTO         `json:"sales,omitempty"`
}

// ToOrderDTO converts a stored order into its wire shape.
func ToOrderDTO(order *models.ClientOrder) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		ClientID:    order.ClientID,
		WarehouseID: order.WarehouseID,
		Type:        order.Type,
		Total:       centsToDecimal(order.TotalCents),
		AmountPaid:  centsToDecimal(order.AmountPaidCents),
		Balance:     centsToDecimal(order.BalanceCents),
		Status:      order.Status,
		Confirmed:   order.Confirmed,
		Payday:      order.Payday,
		OrderDate:   order.OrderDate,
	}
	for _, sale := range order.Sales {
		dto.Sales = append(dto.Sales, ToSaleDTO(&sale))
	}
	return dto
}

// ToSaleDTO converts a stored sale line into its wire shape.
func ToSaleDTO(sale *models.ProductSale) SaleDTO {
	return SaleDTO{
		ID:        sale.ID,
		ProductID: sale.ProductID,
		Quantity:  sale.Quantity,
		Total:     centsToDecimal(sale.TotalCents),
		Type:      sale.Type,
		SaleDate:  sale.SaleDate,
	}
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}
