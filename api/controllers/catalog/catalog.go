package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/api/validators"
	internalcatalog "github.com/oybekm/stockyard-backend/internal/catalog"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type namePayload struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type entryPayload struct {
	ItemID              string `json:"item_id" validate:"required,uuid"`
	BrandID             string `json:"brand_id" validate:"required,uuid"`
	ModelID             string `json:"model_id" validate:"required,uuid"`
	PriceCents          int64  `json:"price_cents" validate:"min=0"`
	WholesalePriceCents int64  `json:"wholesale_price_cents" validate:"min=0"`
}

type pricesPayload struct {
	PriceCents          int64 `json:"price_cents" validate:"min=0"`
	WholesalePriceCents int64 `json:"wholesale_price_cents" validate:"min=0"`
}

// AddItem registers a catalog item dimension.
func AddItem(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return addDimension(logg, func(r *http.Request, name string) (any, error) {
		return svc.AddItem(r.Context(), name)
	})
}

// AddBrand registers a catalog brand dimension.
func AddBrand(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return addDimension(logg, func(r *http.Request, name string) (any, error) {
		return svc.AddBrand(r.Context(), name)
	})
}

// AddModel registers a catalog model dimension.
func AddModel(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return addDimension(logg, func(r *http.Request, name string) (any, error) {
		return svc.AddModel(r.Context(), name)
	})
}

func addDimension(logg *logger.Logger, create func(r *http.Request, name string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload namePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := create(r, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListItems returns catalog items, optionally filtered by name.
func ListItems(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listDimension(logg, func(r *http.Request, search string) (any, error) {
		return svc.SearchItems(r.Context(), search)
	})
}

// ListBrands returns catalog brands, optionally filtered by name.
func ListBrands(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listDimension(logg, func(r *http.Request, search string) (any, error) {
		return svc.SearchBrands(r.Context(), search)
	})
}

// ListModels returns catalog models, optionally filtered by name.
func ListModels(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listDimension(logg, func(r *http.Request, search string) (any, error) {
		return svc.SearchModels(r.Context(), search)
	})
}

func listDimension(logg *logger.Logger, list func(r *http.Request, search string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := list(r, r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// AddEntry creates a priced item+brand+model combination.
func AddEntry(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload entryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParsePathUUID(payload.ItemID, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.ParsePathUUID(payload.BrandID, "brand_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		modelID, err := validators.ParsePathUUID(payload.ModelID, "model_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AddEntry(r.Context(), internalcatalog.AddEntryInput{
			ItemID:              itemID,
			BrandID:             brandID,
			ModelID:             modelID,
			PriceCents:          payload.PriceCents,
			WholesalePriceCents: payload.WholesalePriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// Detail returns one catalog entry with its dimensions preloaded.
func Detail(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := validators.ParsePathUUID(chi.URLParam(r, "entryID"), "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetEntry(r.Context(), entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// Search matches catalog entries against any dimension name.
func Search(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalcatalog.SearchInput
		var err error

		input.Query = r.URL.Query().Get("q")
		if input.Page, err = validators.ParsePagination(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.Search(r.Context(), input)
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

// UpdatePrices resets both price tiers on an entry. Existing sale lines keep
// the prices frozen at order creation.
func UpdatePrices(svc internalcatalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := validators.ParsePathUUID(chi.URLParam(r, "entryID"), "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pricesPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdatePrices(r.Context(), entryID, payload.PriceCents, payload.WholesalePriceCents); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
