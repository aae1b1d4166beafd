package warehouses

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/api/validators"
	internalstock "github.com/oybekm/stockyard-backend/internal/stock"
	internalwarehouses "github.com/oybekm/stockyard-backend/internal/warehouses"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type createPayload struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type updatePayload struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// Create registers a new warehouse.
func Create(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.Create(r.Context(), internalwarehouses.CreateInput{
			Name:    payload.Name,
			Address: payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

// List returns every warehouse.
func List(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouses, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouses)
	}
}

// Detail returns one warehouse.
func Detail(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.Get(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// Update patches the mutable warehouse fields.
func Update(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.Update(r.Context(), warehouseID, internalwarehouses.UpdateInput{
			Name:    payload.Name,
			Address: payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warehouse)
	}
}

// Delete removes a warehouse that has no stock history.
func Delete(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// Products returns the warehouse's product ledger page.
func Products(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalstock.ListProductsInput{
			WarehouseID: warehouseID,
			Search:      r.URL.Query().Get("search"),
		}
		if input.Page, err = validators.ParsePagination(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, total, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"total":    total,
			"has_more": input.Page.HasMore(total),
		})
	}
}

// Entries returns the warehouse's lot history page.
func Entries(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalstock.ListEntriesInput{WarehouseID: warehouseID}
		if input.ProductID, err = validators.ParseQueryUUID(r, "product_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseEntryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry status"))
				return
			}
			input.Status = status
		}
		if input.Page, err = validators.ParsePagination(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.ListEntries(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entries":  entries,
			"total":    total,
			"has_more": input.Page.HasMore(total),
		})
	}
}
