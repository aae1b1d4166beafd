package stock

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/api/validators"
	internalstock "github.com/oybekm/stockyard-backend/internal/stock"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type receivePayload struct {
	WarehouseID        string     `json:"warehouse_id" validate:"required,uuid"`
	CatalogEntryID     string     `json:"catalog_entry_id" validate:"required,uuid"`
	Quantity           int        `json:"quantity" validate:"required,min=1"`
	PurchasePriceCents int64      `json:"purchase_price_cents" validate:"min=0"`
	EntryDate          *time.Time `json:"entry_date,omitempty"`
}

type pendingPayload struct {
	Entries []receivePayload `json:"entries" validate:"required,min=1,dive"`
}

type acceptPayload struct {
	AcceptedByID string `json:"accepted_by_id" validate:"required,uuid"`
}

// Receive books a counted lot straight into sellable stock.
func Receive(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload receivePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildReceiveInput(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Receive(r.Context(), internalstock.ReceiveInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// AddPending queues delivered lots that still await counting.
func AddPending(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pendingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]internalstock.PendingEntryInput, 0, len(payload.Entries))
		for _, item := range payload.Entries {
			input, err := buildReceiveInput(item)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			inputs = append(inputs, internalstock.PendingEntryInput(input))
		}

		entries, err := svc.AddPendingEntries(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entries)
	}
}

// AcceptEntry promotes a pending lot into sellable stock.
func AcceptEntry(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := validators.ParsePathUUID(chi.URLParam(r, "entryID"), "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload acceptPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		acceptedByID, err := validators.ParsePathUUID(payload.AcceptedByID, "accepted_by_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AcceptEntry(r.Context(), internalstock.AcceptEntryInput{
			EntryID:      entryID,
			AcceptedByID: acceptedByID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// ListProducts returns a warehouse's product ledger page.
func ListProducts(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalstock.ListProductsInput
		var err error

		if input.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Search = r.URL.Query().Get("search")
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

// ListEntries returns lot history filtered by warehouse, product and status.
func ListEntries(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalstock.ListEntriesInput
		var err error

		if input.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
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

// Availability reports the open-lot quantity for one product.
func Availability(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		qty, err := svc.AvailableQuantity(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"available":  qty,
		})
	}
}

// Integrity compares a product's aggregate counter against its lots.
func Integrity(svc internalstock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.VerifyIntegrity(r.Context(), productID)
		if err != nil && report == nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// A drifted ledger still returns the report so operators can see
		// both counters side by side.
		responses.WriteSuccess(w, report)
	}
}

type lotInput struct {
	WarehouseID        uuid.UUID
	CatalogEntryID     uuid.UUID
	Quantity           int
	PurchasePriceCents int64
	EntryDate          time.Time
}

func buildReceiveInput(payload receivePayload) (lotInput, error) {
	warehouseID, err := validators.ParsePathUUID(payload.WarehouseID, "warehouse_id")
	if err != nil {
		return lotInput{}, err
	}
	catalogEntryID, err := validators.ParsePathUUID(payload.CatalogEntryID, "catalog_entry_id")
	if err != nil {
		return lotInput{}, err
	}

	input := lotInput{
		WarehouseID:        warehouseID,
		CatalogEntryID:     catalogEntryID,
		Quantity:           payload.Quantity,
		PurchasePriceCents: payload.PurchasePriceCents,
	}
	if payload.EntryDate != nil {
		input.EntryDate = *payload.EntryDate
	}
	return input, nil
}
