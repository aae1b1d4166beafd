package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oybekm/stockyard-backend/api/controllers"
	catalogcontrollers "github.com/oybekm/stockyard-backend/api/controllers/catalog"
	clientcontrollers "github.com/oybekm/stockyard-backend/api/controllers/clients"
	ordercontrollers "github.com/oybekm/stockyard-backend/api/controllers/orders"
	stockcontrollers "github.com/oybekm/stockyard-backend/api/controllers/stock"
	warehousecontrollers "github.com/oybekm/stockyard-backend/api/controllers/warehouses"
	"github.com/oybekm/stockyard-backend/api/middleware"
	"github.com/oybekm/stockyard-backend/internal/catalog"
	"github.com/oybekm/stockyard-backend/internal/clients"
	"github.com/oybekm/stockyard-backend/internal/orders"
	"github.com/oybekm/stockyard-backend/internal/stock"
	"github.com/oybekm/stockyard-backend/internal/warehouses"
	"github.com/oybekm/stockyard-backend/pkg/config"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

// NewRouter wires the HTTP surface: health probes plus the versioned API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	stockService stock.Service,
	catalogService catalog.Service,
	clientsService clients.Service,
	ordersService orders.Service,
	warehousesService warehouses.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stock", func(r chi.Router) {
			r.Post("/receive", stockcontrollers.Receive(stockService, logg))
			r.Post("/pending", stockcontrollers.AddPending(stockService, logg))
			r.Post("/entries/{entryID}/accept", stockcontrollers.AcceptEntry(stockService, logg))
			r.Get("/products", stockcontrollers.ListProducts(stockService, logg))
			r.Get("/products/{productID}/availability", stockcontrollers.Availability(stockService, logg))
			r.Get("/products/{productID}/integrity", stockcontrollers.Integrity(stockService, logg))
			r.Get("/entries", stockcontrollers.ListEntries(stockService, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Post("/", warehousecontrollers.Create(warehousesService, logg))
			r.Get("/", warehousecontrollers.List(warehousesService, logg))
			r.Get("/{warehouseID}", warehousecontrollers.Detail(warehousesService, logg))
			r.Patch("/{warehouseID}", warehousecontrollers.Update(warehousesService, logg))
			r.Delete("/{warehouseID}", warehousecontrollers.Delete(warehousesService, logg))
			r.Get("/{warehouseID}/products", warehousecontrollers.Products(stockService, logg))
			r.Get("/{warehouseID}/entries", warehousecontrollers.Entries(stockService, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Post("/items", catalogcontrollers.AddItem(catalogService, logg))
			r.Get("/items", catalogcontrollers.ListItems(catalogService, logg))
			r.Post("/brands", catalogcontrollers.AddBrand(catalogService, logg))
			r.Get("/brands", catalogcontrollers.ListBrands(catalogService, logg))
			r.Post("/models", catalogcontrollers.AddModel(catalogService, logg))
			r.Get("/models", catalogcontrollers.ListModels(catalogService, logg))
			r.Post("/entries", catalogcontrollers.AddEntry(catalogService, logg))
			r.Get("/entries", catalogcontrollers.Search(catalogService, logg))
			r.Get("/entries/{entryID}", catalogcontrollers.Detail(catalogService, logg))
			r.Put("/entries/{entryID}/prices", catalogcontrollers.UpdatePrices(catalogService, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", clientcontrollers.Create(clientsService, logg))
			r.Get("/", clientcontrollers.List(clientsService, logg))
			r.Get("/{clientID}", clientcontrollers.Detail(clientsService, logg))
			r.Patch("/{clientID}", clientcontrollers.Update(clientsService, logg))
			r.Delete("/{clientID}", clientcontrollers.Delete(clientsService, logg))
			r.Get("/{clientID}/orders", clientcontrollers.ActiveOrders(clientsService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersService, logg))
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/sales", ordercontrollers.ListSales(ordersService, logg))
			r.Get("/{orderID}", ordercontrollers.Detail(ordersService, logg))
			r.Get("/{orderID}/sales", ordercontrollers.OrderSales(ordersService, logg))
			r.Post("/{orderID}/confirm", ordercontrollers.Confirm(ordersService, logg))
			r.Post("/{orderID}/payment", ordercontrollers.Pay(ordersService, logg))
			r.Delete("/{orderID}", ordercontrollers.Delete(ordersService, logg))
		})
	})

	return r
}
