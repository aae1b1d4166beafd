package clients

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/api/validators"
	internalclients "github.com/oybekm/stockyard-backend/internal/clients"
	internalorders "github.com/oybekm/stockyard-backend/internal/orders"
	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type createPayload struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=3,max=32"`
}

type updatePayload struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=3,max=32"`
}

type clientView struct {
	Client models.Client               `json:"client"`
	Debt   internalclients.DebtSummary `json:"debt"`
}

// Create registers a new client.
func Create(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Create(r.Context(), internalclients.CreateInput{
			Name:  payload.Name,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

// Detail returns a client with its debt rollup.
func Detail(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withDebt, err := svc.Get(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, clientView{Client: withDebt.Client, Debt: withDebt.Debt})
	}
}

// Update patches the mutable client fields.
func Update(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Update(r.Context(), clientID, internalclients.UpdateInput{
			Name:  payload.Name,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

// Delete removes a client that has no order history.
func Delete(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), clientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// List returns clients with their debt rollups.
func List(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalclients.ListInput
		var err error

		input.Search = r.URL.Query().Get("search")
		if input.Page, err = validators.ParsePagination(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, total, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]clientView, 0, len(rows))
		for _, row := range rows {
			views = append(views, clientView{Client: row.Client, Debt: row.Debt})
		}
		responses.WriteSuccess(w, map[string]any{
			"clients":  views,
			"total":    total,
			"has_more": input.Page.HasMore(total),
		})
	}
}

// ActiveOrders returns a client's confirmed, unsettled orders.
func ActiveOrders(svc internalclients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.ParsePathUUID(chi.URLParam(r, "clientID"), "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ActiveOrders(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]internalorders.OrderDTO, 0, len(orders))
		for i := range orders {
			dtos = append(dtos, internalorders.ToOrderDTO(&orders[i]))
		}
		responses.WriteSuccess(w, map[string]any{"orders": dtos})
	}
}
