package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

func TestAddDimensionsAndEntry(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "  Tire ")
	require.NoError(t, err)
	assert.Equal(t, "Tire", item.Name)

	brand, err := svc.AddBrand(ctx, "Continental")
	require.NoError(t, err)
	model, err := svc.AddModel(ctx, "EcoContact 6")
	require.NoError(t, err)

	entry, err := svc.AddEntry(ctx, AddEntryInput{
		ItemID:              item.ID,
		BrandID:             brand.ID,
		ModelID:             model.ID,
		PriceCents:          250_00,
		WholesalePriceCents: 210_00,
	})
	require.NoError(t, err)

	loaded, err := svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Item)
	assert.Equal(t, "Tire", loaded.Item.Name)
	assert.EqualValues(t, 250_00, loaded.PriceCents)
}

func TestAddItemDuplicateNameConflicts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "Battery")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "Battery")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestAddEntryDuplicateComboConflicts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Oil Filter")
	require.NoError(t, err)
	brand, err := svc.AddBrand(ctx, "Mann")
	require.NoError(t, err)
	model, err := svc.AddModel(ctx, "W 712/75")
	require.NoError(t, err)

	input := AddEntryInput{ItemID: item.ID, BrandID: brand.ID, ModelID: model.ID, PriceCents: 15_00}
	_, err = svc.AddEntry(ctx, input)
	require.NoError(t, err)

	_, err = svc.AddEntry(ctx, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestUnitPriceCentsBySaleType(t *testing.T) {
	t.Parallel()

	entry := &models.CatalogEntry{PriceCents: 100_00, WholesalePriceCents: 80_00}
	assert.EqualValues(t, 100_00, UnitPriceCents(entry, enums.SaleTypeRetail))
	assert.EqualValues(t, 80_00, UnitPriceCents(entry, enums.SaleTypeWholesale))
}

func TestSearchMatchesAnyDimension(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Brake Pad")
	require.NoError(t, err)
	brand, err := svc.AddBrand(ctx, "Brembo")
	require.NoError(t, err)
	model, err := svc.AddModel(ctx, "P85020")
	require.NoError(t, err)

	_, err = svc.AddEntry(ctx, AddEntryInput{ItemID: item.ID, BrandID: brand.ID, ModelID: model.ID, PriceCents: 45_00})
	require.NoError(t, err)

	for _, query := range []string{"Brake", "Brembo", "P850"} {
		entries, total, err := svc.Search(ctx, SearchInput{Query: query})
		require.NoError(t, err, "query %q", query)
		assert.EqualValues(t, 1, total, "query %q", query)
		require.Len(t, entries, 1, "query %q", query)
	}

	_, total, err := svc.Search(ctx, SearchInput{Query: "nothing-like-this"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchDimensionsFilterByName(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Air Filter", "Oil Filter", "Spark Plug"} {
		_, err := svc.AddItem(ctx, name)
		require.NoError(t, err)
	}
	_, err := svc.AddBrand(ctx, "Bosch")
	require.NoError(t, err)

	items, err := svc.SearchItems(ctx, "Filter")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Air Filter", items[0].Name)
	assert.Equal(t, "Oil Filter", items[1].Name)

	all, err := svc.SearchItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	brands, err := svc.SearchBrands(ctx, "Bos")
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Bosch", brands[0].Name)

	mods, err := svc.SearchModels(ctx, "anything")
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestUpdatePricesUnknownEntry(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	err := svc.UpdatePrices(context.Background(), uuid.New(), 10_00, 8_00)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Item{},
		&models.Brand{},
		&models.Model{},
		&models.CatalogEntry{},
	))
	return db
}
