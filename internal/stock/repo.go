package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// Repository exposes the persistence surface for products and their lots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, warehouseID, catalogEntryID uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	AdjustProductQuantity(ctx context.Context, productID uuid.UUID, delta int) (int64, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error)

	FindEntry(ctx context.Context, id uuid.UUID) (*models.ProductEntry, error)
	CreateEntry(ctx context.Context, entry *models.ProductEntry) error
	MarkEntryAccepted(ctx context.Context, input AcceptEntryInput) (int64, error)
	OpenLots(ctx context.Context, productID uuid.UUID) ([]models.ProductEntry, error)
	AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	ListEntries(ctx context.Context, input ListEntriesInput) ([]models.ProductEntry, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("CatalogEntry.Item").
		Preload("CatalogEntry.Brand").
		Preload("CatalogEntry.Model").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySKU(ctx context.Context, warehouseID, catalogEntryID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND catalog_entry_id = ?", warehouseID, catalogEntryID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// AdjustProductQuantity moves the aggregate counter by delta. Negative deltas
// are guarded so the counter can never go below zero; callers must treat a
// zero row count as a lost race.
func (r *repository) AdjustProductQuantity(ctx context.Context, productID uuid.UUID, delta int) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}
	result := query.Update("quantity", gorm.Expr("quantity + ?", delta))
	return result.RowsAffected, result.Error
}

func (r *repository) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Product{})
	if input.WarehouseID != uuid.Nil {
		base = base.Where("products.warehouse_id = ?", input.WarehouseID)
	}
	if input.Search != "" {
		pattern := "%" + input.Search + "%"
		base = base.
			Joins("JOIN catalog_entries ON catalog_entries.id = products.catalog_entry_id").
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
	var products []models.Product
	err := base.
		Preload("CatalogEntry.Item").
		Preload("CatalogEntry.Brand").
		Preload("CatalogEntry.Model").
		Order("products.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) FindEntry(ctx context.Context, id uuid.UUID) (*models.ProductEntry, error) {
	var entry models.ProductEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.ProductEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// MarkEntryAccepted flips a pending lot to done. Zero rows affected means the
// lot was already accepted or does not exist.
func (r *repository) MarkEntryAccepted(ctx context.Context, input AcceptEntryInput) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductEntry{}).
		Where("id = ? AND status = ?", input.EntryID, enums.EntryStatusPending).
		Updates(map[string]any{
			"status":         enums.EntryStatusDone,
			"accepted_by_id": input.AcceptedByID,
			"accepted_date":  gorm.Expr("CURRENT_TIMESTAMP"),
		})
	return result.RowsAffected, result.Error
}

// OpenLots returns unexhausted done lots in consumption order: oldest entry
// date first, creation order as the tie-break.
func (r *repository) OpenLots(ctx context.Context, productID uuid.UUID) ([]models.ProductEntry, error) {
	var entries []models.ProductEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND salled = ? AND status = ?", productID, false, enums.EntryStatusDone).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AvailableQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var available int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductEntry{}).
		Select("COALESCE(SUM(quantity - saled_quantity), 0)").
		Where("product_id = ? AND salled = ? AND status = ?", productID, false, enums.EntryStatusDone).
		Scan(&available).Error
	if err != nil {
		return 0, err
	}
	return int(available), nil
}

func (r *repository) ListEntries(ctx context.Context, input ListEntriesInput) ([]models.ProductEntry, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ProductEntry{})
	if input.WarehouseID != uuid.Nil {
		base = base.Where("warehouse_id = ?", input.WarehouseID)
	}
	if input.ProductID != uuid.Nil {
		base = base.Where("product_id = ?", input.ProductID)
	}
	if input.Status != "" {
		base = base.Where("status = ?", input.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := input.Page.Window()
	var entries []models.ProductEntry
	err := base.
		Order("entry_date ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
