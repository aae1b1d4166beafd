package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db"
	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/pagination"
)

// SearchInput filters the catalog listing.
type SearchInput struct {
	Query string
	Page  pagination.Params
}

// AddEntryInput creates a new item+brand+model price combination.
type AddEntryInput struct {
	ItemID              uuid.UUID
	BrandID             uuid.UUID
	ModelID             uuid.UUID
	PriceCents          int64
	WholesalePriceCents int64
}

// Service defines catalog operations.
type Service interface {
	AddItem(ctx context.Context, name string) (*models.Item, error)
	AddBrand(ctx context.Context, name string) (*models.Brand, error)
	AddModel(ctx context.Context, name string) (*models.Model, error)
	AddEntry(ctx context.Context, input AddEntryInput) (*models.CatalogEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error)
	Search(ctx context.Context, input SearchInput) ([]models.CatalogEntry, int64, error)
	UpdatePrices(ctx context.Context, id uuid.UUID, priceCents, wholesaleCents int64) error
	SearchItems(ctx context.Context, search string) ([]models.Item, error)
	SearchBrands(ctx context.Context, search string) ([]models.Brand, error)
	SearchModels(ctx context.Context, search string) ([]models.Model, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// UnitPriceCents picks the price tier that applies to a sale type. Prices are
// read once at order creation and frozen onto the sale line.
func UnitPriceCents(entry *models.CatalogEntry, saleType enums.SaleType) int64 {
	if saleType == enums.SaleTypeWholesale {
		return entry.WholesalePriceCents
	}
	return entry.PriceCents
}

func (s *service) AddItem(ctx context.Context, name string) (*models.Item, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	item := &models.Item{ID: uuid.New(), Name: name}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, wrapCreateErr(err, "item")
	}
	return item, nil
}

func (s *service) AddBrand(ctx context.Context, name string) (*models.Brand, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	brand := &models.Brand{ID: uuid.New(), Name: name}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, wrapCreateErr(err, "brand")
	}
	return brand, nil
}

func (s *service) AddModel(ctx context.Context, name string) (*models.Model, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	model := &models.Model{ID: uuid.New(), Name: name}
	if err := s.repo.CreateModel(ctx, model); err != nil {
		return nil, wrapCreateErr(err, "model")
	}
	return model, nil
}

func (s *service) AddEntry(ctx context.Context, input AddEntryInput) (*models.CatalogEntry, error) {
	if input.ItemID == uuid.Nil || input.BrandID == uuid.Nil || input.ModelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item, brand, and model ids required")
	}
	if input.PriceCents < 0 || input.WholesalePriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}

	entry := &models.CatalogEntry{
		ID:                  uuid.New(),
		ItemID:              input.ItemID,
		BrandID:             input.BrandID,
		ModelID:             input.ModelID,
		PriceCents:          input.PriceCents,
		WholesalePriceCents: input.WholesalePriceCents,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, wrapCreateErr(err, "catalog entry")
	}
	return entry, nil
}

func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	entry, err := s.repo.FindEntry(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog entry")
	}
	return entry, nil
}

func (s *service) Search(ctx context.Context, input SearchInput) ([]models.CatalogEntry, int64, error) {
	entries, total, err := s.repo.SearchEntries(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search catalog")
	}
	return entries, total, nil
}

func (s *service) UpdatePrices(ctx context.Context, id uuid.UUID, priceCents, wholesaleCents int64) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	if priceCents < 0 || wholesaleCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	affected, err := s.repo.UpdateEntryPrices(ctx, id, priceCents, wholesaleCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update prices")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog entry not found")
	}
	return nil
}

func (s *service) SearchItems(ctx context.Context, search string) ([]models.Item, error) {
	items, err := s.repo.ListItems(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}
	return items, nil
}

func (s *service) SearchBrands(ctx context.Context, search string) ([]models.Brand, error) {
	brands, err := s.repo.ListBrands(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search brands")
	}
	return brands, nil
}

func (s *service) SearchModels(ctx context.Context, search string) ([]models.Model, error) {
	mods, err := s.repo.ListModels(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search models")
	}
	return mods, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	return name, nil
}

func wrapCreateErr(err error, kind string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, kind+" already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create "+kind)
}
