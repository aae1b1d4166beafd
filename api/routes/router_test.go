package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybekm/stockyard-backend/api/controllers"
	"github.com/oybekm/stockyard-backend/internal/catalog"
	"github.com/oybekm/stockyard-backend/internal/clients"
	"github.com/oybekm/stockyard-backend/internal/orders"
	"github.com/oybekm/stockyard-backend/internal/stock"
	"github.com/oybekm/stockyard-backend/internal/warehouses"
	"github.com/oybekm/stockyard-backend/pkg/config"
	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubStockService struct{}

func (stubStockService) Receive(ctx context.Context, input stock.ReceiveInput) (*models.ProductEntry, error) {
	return &models.ProductEntry{ID: uuid.New()}, nil
}

func (stubStockService) AddPendingEntries(ctx context.Context, inputs []stock.PendingEntryInput) ([]models.ProductEntry, error) {
	return nil, nil
}

func (stubStockService) AcceptEntry(ctx context.Context, input stock.AcceptEntryInput) (*models.ProductEntry, error) {
	return nil, nil
}

func (stubStockService) AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	return 0, nil
}

func (stubStockService) VerifyIntegrity(ctx context.Context, productID uuid.UUID) (*stock.IntegrityReport, error) {
	return &stock.IntegrityReport{ProductID: productID, Consistent: true}, nil
}

func (stubStockService) ListProducts(ctx context.Context, input stock.ListProductsInput) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (stubStockService) ListEntries(ctx context.Context, input stock.ListEntriesInput) ([]models.ProductEntry, int64, error) {
	return nil, 0, nil
}

type stubCatalogService struct{}

func (stubCatalogService) AddItem(ctx context.Context, name string) (*models.Item, error) {
	return &models.Item{ID: uuid.New(), Name: name}, nil
}

func (stubCatalogService) AddBrand(ctx context.Context, name string) (*models.Brand, error) {
	return nil, nil
}

func (stubCatalogService) AddModel(ctx context.Context, name string) (*models.Model, error) {
	return nil, nil
}

func (stubCatalogService) AddEntry(ctx context.Context, input catalog.AddEntryInput) (*models.CatalogEntry, error) {
	return nil, nil
}

func (stubCatalogService) GetEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	return nil, nil
}

func (stubCatalogService) Search(ctx context.Context, input catalog.SearchInput) ([]models.CatalogEntry, int64, error) {
	return nil, 0, nil
}

func (stubCatalogService) UpdatePrices(ctx context.Context, id uuid.UUID, priceCents, wholesaleCents int64) error {
	return nil
}

func (stubCatalogService) SearchItems(ctx context.Context, search string) ([]models.Item, error) {
	return nil, nil
}

func (stubCatalogService) SearchBrands(ctx context.Context, search string) ([]models.Brand, error) {
	return nil, nil
}

func (stubCatalogService) SearchModels(ctx context.Context, search string) ([]models.Model, error) {
	return nil, nil
}

type stubClientsService struct{}

func (stubClientsService) Create(ctx context.Context, input clients.CreateInput) (*models.Client, error) {
	return &models.Client{ID: uuid.New(), Name: input.Name}, nil
}

func (stubClientsService) Get(ctx context.Context, id uuid.UUID) (*clients.ClientWithDebt, error) {
	return &clients.ClientWithDebt{Client: models.Client{ID: id}}, nil
}

func (stubClientsService) Update(ctx context.Context, id uuid.UUID, input clients.UpdateInput) (*models.Client, error) {
	return nil, nil
}

func (stubClientsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubClientsService) List(ctx context.Context, input clients.ListInput) ([]clients.ClientWithDebt, int64, error) {
	return nil, 0, nil
}

func (stubClientsService) ActiveOrders(ctx context.Context, clientID uuid.UUID) ([]models.ClientOrder, error) {
	return nil, nil
}

type stubOrdersService struct{}

func (stubOrdersService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.ClientOrder, error) {
	return nil, nil
}

func (stubOrdersService) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	return nil, nil
}

func (stubOrdersService) RecordPayment(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	return nil, nil
}

func (stubOrdersService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

func (stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	return &models.ClientOrder{ID: orderID}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, input orders.ListOrdersInput) ([]models.ClientOrder, int64, error) {
	return nil, 0, nil
}

func (stubOrdersService) ListSales(ctx context.Context, input orders.ListSalesInput) ([]models.ProductSale, int64, error) {
	return nil, 0, nil
}

type stubWarehousesService struct{}

func (stubWarehousesService) Create(ctx context.Context, input warehouses.CreateInput) (*models.Warehouse, error) {
	return &models.Warehouse{ID: uuid.New(), Name: input.Name}, nil
}

func (stubWarehousesService) Get(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return &models.Warehouse{ID: id}, nil
}

func (stubWarehousesService) List(ctx context.Context) ([]models.Warehouse, error) {
	return nil, nil
}

func (stubWarehousesService) Update(ctx context.Context, id uuid.UUID, input warehouses.UpdateInput) (*models.Warehouse, error) {
	return nil, nil
}

func (stubWarehousesService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestRouter(pingers map[string]controllers.Pinger) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, pingers, stubStockService{}, stubCatalogService{}, stubClientsService{}, stubOrdersService{}, stubWarehousesService{})
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)

	newTestRouter(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Stockyard-Env"))
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	pingers := map[string]controllers.Pinger{
		"db":    stubPinger{},
		"redis": stubPinger{err: context.DeadlineExceeded},
	}
	newTestRouter(pingers).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestRoutesAreMounted(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)
	paths := []string{
		"/api/v1/stock/products",
		"/api/v1/stock/entries",
		"/api/v1/catalog/entries",
		"/api/v1/catalog/items",
		"/api/v1/warehouses/",
		"/api/v1/clients/",
		"/api/v1/orders/",
		"/api/v1/orders/sales",
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)

	newTestRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeaderIsEchoed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "trace-123")

	newTestRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))
}
