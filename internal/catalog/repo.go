package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
)

// Repository exposes persistence for the item/brand/model catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.Item) error
	CreateBrand(ctx context.Context, brand *models.Brand) error
	CreateModel(ctx context.Context, model *models.Model) error
	CreateEntry(ctx context.Context, entry *models.CatalogEntry) error

	FindEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error)
	SearchEntries(ctx context.Context, input SearchInput) ([]models.CatalogEntry, int64, error)
	UpdateEntryPrices(ctx context.Context, id uuid.UUID, priceCents, wholesaleCents int64) (int64, error)

	ListItems(ctx context.Context, search string) ([]models.Item, error)
	ListBrands(ctx context.Context, search string) ([]models.Brand, error)
	ListModels(ctx context.Context, search string) ([]models.Model, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *repository) CreateModel(ctx context.Context, model *models.Model) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.CatalogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Brand").
		Preload("Model").
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) SearchEntries(ctx context.Context, input SearchInput) ([]models.CatalogEntry, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.CatalogEntry{})
	if input.Query != "" {
		pattern := "%" + input.Query + "%"
		base = base.
			Joins("JOIN items ON items.id = catalog_entries.item_id").
			Joins("JOIN brands ON brands.id = catalog_entries.brand_id").
			Joins("JOIN models ON models.id = catalog_entries.model_id").
			Where("items.name LIKE ? OR brands.name LIKE ? OR models.name LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := input.Page.Window()
	var entries []models.CatalogEntry
	err := base.
		Preload("Item").
		Preload("Brand").
		Preload("Model").
		Order("catalog_entries.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) ListItems(ctx context.Context, search string) ([]models.Item, error) {
	var items []models.Item
	err := dimensionQuery(r.db.WithContext(ctx), search).Find(&items).Error
	return items, err
}

func (r *repository) ListBrands(ctx context.Context, search string) ([]models.Brand, error) {
	var brands []models.Brand
	err := dimensionQuery(r.db.WithContext(ctx), search).Find(&brands).Error
	return brands, err
}

func (r *repository) ListModels(ctx context.Context, search string) ([]models.Model, error) {
	var mods []models.Model
	err := dimensionQuery(r.db.WithContext(ctx), search).Find(&mods).Error
	return mods, err
}

func dimensionQuery(db *gorm.DB, search string) *gorm.DB {
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	return db.Order("name ASC")
}

func (r *repository) UpdateEntryPrices(ctx context.Context, id uuid.UUID, priceCents, wholesaleCents int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CatalogEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"price_cents":           priceCents,
			"wholesale_price_cents": wholesaleCents,
		})
	return result.RowsAffected, result.Error
}
