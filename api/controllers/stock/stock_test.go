package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalstock "github.com/oybekm/stockyard-backend/internal/stock"
	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type stubStockService struct {
	receive    func(ctx context.Context, input internalstock.ReceiveInput) (*models.ProductEntry, error)
	addPending func(ctx context.Context, inputs []internalstock.PendingEntryInput) ([]models.ProductEntry, error)
	accept     func(ctx context.Context, input internalstock.AcceptEntryInput) (*models.ProductEntry, error)
	available  func(ctx context.Context, productID uuid.UUID) (int, error)
	integrity  func(ctx context.Context, productID uuid.UUID) (*internalstock.IntegrityReport, error)
	products   func(ctx context.Context, input internalstock.ListProductsInput) ([]models.Product, int64, error)
	entries    func(ctx context.Context, input internalstock.ListEntriesInput) ([]models.ProductEntry, int64, error)
}

func (s *stubStockService) Receive(ctx context.Context, input internalstock.ReceiveInput) (*models.ProductEntry, error) {
	if s.receive != nil {
		return s.receive(ctx, input)
	}
	return nil, nil
}

func (s *stubStockService) AddPendingEntries(ctx context.Context, inputs []internalstock.PendingEntryInput) ([]models.ProductEntry, error) {
	if s.addPending != nil {
		return s.addPending(ctx, inputs)
	}
	return nil, nil
}

func (s *stubStockService) AcceptEntry(ctx context.Context, input internalstock.AcceptEntryInput) (*models.ProductEntry, error) {
	if s.accept != nil {
		return s.accept(ctx, input)
	}
	return nil, nil
}

func (s *stubStockService) AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	if s.available != nil {
		return s.available(ctx, productID)
	}
	return 0, nil
}

func (s *stubStockService) VerifyIntegrity(ctx context.Context, productID uuid.UUID) (*internalstock.IntegrityReport, error) {
	if s.integrity != nil {
		return s.integrity(ctx, productID)
	}
	return nil, nil
}

func (s *stubStockService) ListProducts(ctx context.Context, input internalstock.ListProductsInput) ([]models.Product, int64, error) {
	if s.products != nil {
		return s.products(ctx, input)
	}
	return nil, 0, nil
}

func (s *stubStockService) ListEntries(ctx context.Context, input internalstock.ListEntriesInput) ([]models.ProductEntry, int64, error) {
	if s.entries != nil {
		return s.entries(ctx, input)
	}
	return nil, 0, nil
}

func newStockRouter(svc internalstock.Service) chi.Router {
	logg := logger.New(logger.Options{ServiceName: "stock-controller-test"})
	r := chi.NewRouter()
	r.Post("/stock/receive", Receive(svc, logg))
	r.Post("/stock/pending", AddPending(svc, logg))
	r.Post("/stock/entries/{entryID}/accept", AcceptEntry(svc, logg))
	r.Get("/stock/products", ListProducts(svc, logg))
	r.Get("/stock/products/{productID}/availability", Availability(svc, logg))
	r.Get("/stock/products/{productID}/integrity", Integrity(svc, logg))
	r.Get("/stock/entries", ListEntries(svc, logg))
	return r
}

func TestReceiveDecodesLot(t *testing.T) {
	t.Parallel()

	warehouseID := uuid.New()
	catalogEntryID := uuid.New()

	var got internalstock.ReceiveInput
	svc := &stubStockService{
		receive: func(ctx context.Context, input internalstock.ReceiveInput) (*models.ProductEntry, error) {
			got = input
			return &models.ProductEntry{ID: uuid.New(), Quantity: input.Quantity}, nil
		},
	}

	body := `{
		"warehouse_id": "` + warehouseID.String() + `",
		"catalog_entry_id": "` + catalogEntryID.String() + `",
		"quantity": 12,
		"purchase_price_cents": 4500
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/receive", strings.NewReader(body))

	newStockRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, warehouseID, got.WarehouseID)
	assert.Equal(t, catalogEntryID, got.CatalogEntryID)
	assert.Equal(t, 12, got.Quantity)
	assert.Equal(t, int64(4500), got.PurchasePriceCents)
}

func TestReceiveRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	body := `{"warehouse_id": "` + uuid.NewString() + `", "catalog_entry_id": "` + uuid.NewString() + `", "quantity": 0}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/receive", strings.NewReader(body))

	newStockRouter(&stubStockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptEntryForwardsIDs(t *testing.T) {
	t.Parallel()

	entryID := uuid.New()
	acceptedByID := uuid.New()

	var got internalstock.AcceptEntryInput
	svc := &stubStockService{
		accept: func(ctx context.Context, input internalstock.AcceptEntryInput) (*models.ProductEntry, error) {
			got = input
			return &models.ProductEntry{ID: input.EntryID, Status: enums.EntryStatusDone}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/entries/"+entryID.String()+"/accept",
		strings.NewReader(`{"accepted_by_id": "`+acceptedByID.String()+`"}`))

	newStockRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entryID, got.EntryID)
	assert.Equal(t, acceptedByID, got.AcceptedByID)
}

func TestListEntriesForwardsStatusFilter(t *testing.T) {
	t.Parallel()

	var got internalstock.ListEntriesInput
	svc := &stubStockService{
		entries: func(ctx context.Context, input internalstock.ListEntriesInput) ([]models.ProductEntry, int64, error) {
			got = input
			return nil, 0, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/entries?status=pending", nil)

	newStockRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, enums.EntryStatusPending, got.Status)
}

func TestListEntriesRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/entries?status=lost", nil)

	newStockRouter(&stubStockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntegrityReturnsReportOnDrift(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	svc := &stubStockService{
		integrity: func(ctx context.Context, id uuid.UUID) (*internalstock.IntegrityReport, error) {
			report := &internalstock.IntegrityReport{
				ProductID:         id,
				AggregateQuantity: 10,
				LotQuantity:       8,
			}
			return report, pkgerrors.New(pkgerrors.CodeIntegrity, "stock ledger drift").WithDetails(report)
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/products/"+productID.String()+"/integrity", nil)

	newStockRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"consistent":false`)
}

func TestAvailabilityParsesProductID(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	svc := &stubStockService{
		available: func(ctx context.Context, id uuid.UUID) (int, error) {
			assert.Equal(t, productID, id)
			return 42, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/products/"+productID.String()+"/availability", nil)

	newStockRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"available":42`)
}
