package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines stock-ledger operations.
type Service interface {
	Receive(ctx context.Context, input ReceiveInput) (*models.ProductEntry, error)
	AddPendingEntries(ctx context.Context, inputs []PendingEntryInput) ([]models.ProductEntry, error)
	AcceptEntry(ctx context.Context, input AcceptEntryInput) (*models.ProductEntry, error)
	AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	VerifyIntegrity(ctx context.Context, productID uuid.UUID) (*IntegrityReport, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error)
	ListEntries(ctx context.Context, input ListEntriesInput) ([]models.ProductEntry, int64, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a stock service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Receive books a counted lot and moves the aggregate counter in the same
// transaction. The product row is created on first receipt of a SKU.
func (s *service) Receive(ctx context.Context, input ReceiveInput) (*models.ProductEntry, error) {
	if err := validateLotInput(input.WarehouseID, input.CatalogEntryID, input.Quantity); err != nil {
		return nil, err
	}

	var entry *models.ProductEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.findOrCreateProduct(ctx, repo, input.WarehouseID, input.CatalogEntryID)
		if err != nil {
			return err
		}

		entry = newEntry(product, input.Quantity, input.PurchasePriceCents, input.EntryDate)
		entry.Status = enums.EntryStatusDone
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock entry")
		}

		affected, err := repo.AdjustProductQuantity(ctx, product.ID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment product quantity")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "product row vanished during receive")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AddPendingEntries queues uncounted lots. Sellable stock does not move until
// each lot is accepted.
func (s *service) AddPendingEntries(ctx context.Context, inputs []PendingEntryInput) ([]models.ProductEntry, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one entry required")
	}
	for _, input := range inputs {
		if err := validateLotInput(input.WarehouseID, input.CatalogEntryID, input.Quantity); err != nil {
			return nil, err
		}
	}

	var entries []models.ProductEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entries = entries[:0]
		for _, input := range inputs {
			product, err := s.findOrCreateProduct(ctx, repo, input.WarehouseID, input.CatalogEntryID)
			if err != nil {
				return err
			}
			entry := newEntry(product, input.Quantity, input.PurchasePriceCents, input.EntryDate)
			entry.Status = enums.EntryStatusPending
			if err := repo.CreateEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pending entry")
			}
			entries = append(entries, *entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AcceptEntry promotes a pending lot into sellable stock. Accepting twice is
// a conflict, not a double credit.
func (s *service) AcceptEntry(ctx context.Context, input AcceptEntryInput) (*models.ProductEntry, error) {
	if input.EntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}

	var accepted *models.ProductEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.FindEntry(ctx, input.EntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock entry")
		}
		if entry.Status != enums.EntryStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "stock entry already accepted")
		}

		affected, err := repo.MarkEntryAccepted(ctx, input)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept stock entry")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "stock entry already accepted")
		}

		credited, err := repo.AdjustProductQuantity(ctx, entry.ProductID, entry.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment product quantity")
		}
		if credited == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "product row vanished during accept")
		}

		accepted, err = repo.FindEntry(ctx, input.EntryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *service) AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	available, err := s.repo.AvailableQuantity(ctx, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum open lots")
	}
	return available, nil
}

// VerifyIntegrity recomputes the lot-derived quantity and compares it against
// the aggregate counter.
func (s *service) VerifyIntegrity(ctx context.Context, productID uuid.UUID) (*IntegrityReport, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	available, err := s.repo.AvailableQuantity(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum open lots")
	}

	report := &IntegrityReport{
		ProductID:         productID,
		AggregateQuantity: product.Quantity,
		LotQuantity:       available,
		Consistent:        product.Quantity == available,
	}
	if !report.Consistent {
		return report, pkgerrors.New(pkgerrors.CodeIntegrity, "product quantity diverges from lot ledger").
			WithDetails(report)
	}
	return report, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error) {
	products, total, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, total, nil
}

func (s *service) ListEntries(ctx context.Context, input ListEntriesInput) ([]models.ProductEntry, int64, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry status")
	}
	entries, total, err := s.repo.ListEntries(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list entries")
	}
	return entries, total, nil
}

func (s *service) findOrCreateProduct(ctx context.Context, repo Repository, warehouseID, catalogEntryID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindProductBySKU(ctx, warehouseID, catalogEntryID)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product = &models.Product{
		ID:             uuid.New(),
		WarehouseID:    warehouseID,
		CatalogEntryID: catalogEntryID,
	}
	if err := repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func newEntry(product *models.Product, qty int, priceCents int64, entryDate time.Time) *models.ProductEntry {
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}
	return &models.ProductEntry{
		ID:                 uuid.New(),
		ProductID:          product.ID,
		WarehouseID:        product.WarehouseID,
		Quantity:           qty,
		EntryDate:          entryDate,
		PurchasePriceCents: priceCents,
	}
}

func validateLotInput(warehouseID, catalogEntryID uuid.UUID, qty int) error {
	if warehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if catalogEntryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
