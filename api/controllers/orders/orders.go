package orders

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/api/validators"
	internalorders "github.com/oybekm/stockyard-backend/internal/orders"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type orderLinePayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

type createOrderPayload struct {
	ClientID        string             `json:"client_id" validate:"required,uuid"`
	WarehouseID     string             `json:"warehouse_id" validate:"required,uuid"`
	Type            string             `json:"type" validate:"required,oneof=retail wholesale"`
	Payday          *time.Time         `json:"payday,omitempty"`
	OrderDate       *time.Time         `json:"order_date,omitempty"`
	AmountPaidCents int64              `json:"amount_paid_cents" validate:"min=0"`
	Lines           []orderLinePayload `json:"lines" validate:"required,min=1,dive"`
}

// Create builds an unconfirmed draft order with frozen prices.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.ToOrderDTO(order))
	}
}

// Confirm allocates stock for the order and flips it to confirmed.
func Confirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToOrderDTO(order))
	}
}

// Pay settles a confirmed order in full. Partial payments are not modeled,
// so the endpoint takes no body.
func Pay(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordPayment(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToOrderDTO(order))
	}
}

// Delete removes an order, returning consumed stock when it was confirmed.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// Detail returns one order with its sale lines.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToOrderDTO(order))
	}
}

// OrderSales returns one order's line items.
func OrderSales(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]internalorders.SaleDTO, 0, len(order.Sales))
		for i := range order.Sales {
			dtos = append(dtos, internalorders.ToSaleDTO(&order.Sales[i]))
		}
		responses.WriteSuccess(w, map[string]any{"sales": dtos})
	}
}

// List returns filtered order pages.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := buildListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, total, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]internalorders.OrderDTO, 0, len(orders))
		for i := range orders {
			dtos = append(dtos, internalorders.ToOrderDTO(&orders[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":   dtos,
			"total":    total,
			"has_more": input.Page.HasMore(total),
		})
	}
}

// ListSales returns sale lines across orders for reporting.
func ListSales(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := buildSalesInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, total, err := svc.ListSales(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]internalorders.SaleDTO, 0, len(sales))
		for i := range sales {
			dtos = append(dtos, internalorders.ToSaleDTO(&sales[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"sales":    dtos,
			"total":    total,
			"has_more": input.Page.HasMore(total),
		})
	}
}

func buildCreateInput(payload createOrderPayload) (internalorders.CreateOrderInput, error) {
	clientID, err := validators.ParsePathUUID(payload.ClientID, "client_id")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	warehouseID, err := validators.ParsePathUUID(payload.WarehouseID, "warehouse_id")
	if err != nil {
		return internalorders.CreateOrderInput{}, err
	}
	saleType, err := enums.ParseSaleType(payload.Type)
	if err != nil {
		return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale type")
	}

	input := internalorders.CreateOrderInput{
		ClientID:        clientID,
		WarehouseID:     warehouseID,
		Type:            saleType,
		Payday:          payload.Payday,
		AmountPaidCents: payload.AmountPaidCents,
	}
	if payload.OrderDate != nil {
		input.OrderDate = *payload.OrderDate
	}
	for _, line := range payload.Lines {
		productID, err := validators.ParsePathUUID(line.ProductID, "product_id")
		if err != nil {
			return internalorders.CreateOrderInput{}, err
		}
		input.Lines = append(input.Lines, internalorders.OrderLineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}
	return input, nil
}

func buildListInput(r *http.Request) (internalorders.ListOrdersInput, error) {
	var input internalorders.ListOrdersInput
	var err error

	if input.ClientID, err = validators.ParseQueryUUID(r, "client_id"); err != nil {
		return input, err
	}
	if input.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
		return input, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		input.Status = status
	}
	if raw := r.URL.Query().Get("confirmed"); raw != "" {
		confirmed := raw == "true"
		input.Confirmed = &confirmed
	}
	if input.Page, err = validators.ParsePagination(r); err != nil {
		return input, err
	}
	return input, nil
}

func buildSalesInput(r *http.Request) (internalorders.ListSalesInput, error) {
	var input internalorders.ListSalesInput
	var err error

	if input.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
		return input, err
	}
	if input.ProductID, err = validators.ParseQueryUUID(r, "product_id"); err != nil {
		return input, err
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "from must be RFC3339")
		}
		input.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "to must be RFC3339")
		}
		input.To = &to
	}
	if input.Page, err = validators.ParsePagination(r); err != nil {
		return input, err
	}
	return input, nil
}
