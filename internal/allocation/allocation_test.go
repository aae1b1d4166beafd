package allocation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

func TestAllocateConsumesOldestLotsFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	old := seedLot(t, db, product, 4, daysAgo(30))
	mid := seedLot(t, db, product, 3, daysAgo(20))
	young := seedLot(t, db, product, 3, daysAgo(10))

	var results []Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		results, terr = Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 6}})
		return terr
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Lots, 2)

	assert.Equal(t, old.ID, results[0].Lots[0].EntryID)
	assert.Equal(t, 4, results[0].Lots[0].Qty)
	assert.True(t, results[0].Lots[0].Exhausted)
	assert.Equal(t, mid.ID, results[0].Lots[1].EntryID)
	assert.Equal(t, 2, results[0].Lots[1].Qty)
	assert.False(t, results[0].Lots[1].Exhausted)

	assertLot(t, db, old.ID, 4, true)
	assertLot(t, db, mid.ID, 2, false)
	assertLot(t, db, young.ID, 0, false)
	assertProductQty(t, db, product.ID, 4)
}

func TestAllocateExactExhaustionFlagsLot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5)
	lot := seedLot(t, db, product, 5, daysAgo(1))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 5}})
		return terr
	})
	require.NoError(t, err)

	assertLot(t, db, lot.ID, 5, true)
	assertProductQty(t, db, product.ID, 0)
}

func TestAllocateInsufficientStockLeavesNoTrace(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 3)
	lot := seedLot(t, db, product, 3, daysAgo(5))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 4}})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	detail, ok := typed.Details().(ShortageDetail)
	require.True(t, ok)
	assert.Equal(t, 4, detail.Requested)
	assert.Equal(t, 3, detail.Available)

	assertLot(t, db, lot.ID, 0, false)
	assertProductQty(t, db, product.ID, 3)
}

func TestAllocateAggregatesDemandAcrossLines(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5)
	seedLot(t, db, product, 5, daysAgo(5))

	// each line fits alone but together they exceed the stock
	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{
			{ProductID: product.ID, Qty: 3},
			{ProductID: product.ID, Qty: 3},
		})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
	assertProductQty(t, db, product.ID, 5)
}

func TestAllocateZeroQuantityIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 2)
	lot := seedLot(t, db, product, 2, daysAgo(2))

	var results []Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		results, terr = Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 0}})
		return terr
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Lots)

	assertLot(t, db, lot.ID, 0, false)
	assertProductQty(t, db, product.ID, 2)
}

func TestAllocateSkipsPendingLots(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 2)
	seedLot(t, db, product, 2, daysAgo(3))
	pending := seedLot(t, db, product, 10, daysAgo(30))
	require.NoError(t, db.Model(&models.ProductEntry{}).
		Where("id = ?", pending.ID).
		Update("status", enums.EntryStatusPending).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 3}})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
}

func TestAllocateDetectsLedgerDrift(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 7) // counter says 7, lots say 5
	seedLot(t, db, product, 5, daysAgo(5))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 2}})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIntegrity))
	assertProductQty(t, db, product.ID, 7)
}

func TestAllocateConcurrentConfirmationIsRetryableNotFatal(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	lot := seedLot(t, db, product, 10, daysAgo(5))

	// Another confirmation commits between the aggregate read and the lot
	// sum, making the two reads diverge on a healthy ledger.
	fired := false
	err := db.Callback().Row().Before("gorm:row").Register("test:racing_confirm", func(d *gorm.DB) {
		if fired || d.Statement == nil || len(d.Statement.Selects) == 0 ||
			!strings.Contains(d.Statement.Selects[0], "SUM") {
			return
		}
		fired = true
		session := d.Session(&gorm.Session{NewDB: true})
		require.NoError(t, session.Exec(
			"UPDATE product_entries SET saled_quantity = saled_quantity + 6 WHERE id = ?", lot.ID).Error)
		require.NoError(t, session.Exec(
			"UPDATE products SET quantity = quantity - 6 WHERE id = ?", product.ID).Error)
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 4}})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAllocationRace))
	assert.False(t, pkgerrors.HasCode(err, pkgerrors.CodeIntegrity))

	// the aborted attempt rolled back, including the injected writes
	assertLot(t, db, lot.ID, 0, false)
	assertProductQty(t, db, product.ID, 10)
}

func TestAllocateLotMovedBeforeGuardedUpdate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	lot := seedLot(t, db, product, 10, daysAgo(5))

	// The lot moves after consume read it but before its guarded update,
	// so the WHERE on the old saled_quantity matches nothing.
	fired := false
	err := db.Callback().Update().Before("gorm:update").Register("test:lot_moved", func(d *gorm.DB) {
		if fired || d.Statement == nil {
			return
		}
		if _, ok := d.Statement.Model.(*models.ProductEntry); !ok {
			return
		}
		fired = true
		require.NoError(t, d.Session(&gorm.Session{NewDB: true}).Exec(
			"UPDATE product_entries SET saled_quantity = saled_quantity + 1 WHERE id = ?", lot.ID).Error)
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 4}})
		return terr
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAllocationRace))

	assertLot(t, db, lot.ID, 0, false)
	assertProductQty(t, db, product.ID, 10)
}

func TestRestoreReturnsStockToNewestLots(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 8)
	old := seedLot(t, db, product, 4, daysAgo(30))
	young := seedLot(t, db, product, 4, daysAgo(10))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Allocate(ctx, tx, []Request{{ProductID: product.ID, Qty: 6}})
		return terr
	})
	require.NoError(t, err)
	assertLot(t, db, old.ID, 4, true)
	assertLot(t, db, young.ID, 2, false)

	err = db.Transaction(func(tx *gorm.DB) error {
		return Restore(ctx, tx, product.ID, 6)
	})
	require.NoError(t, err)

	assertLot(t, db, old.ID, 0, false)
	assertLot(t, db, young.ID, 0, false)
	assertProductQty(t, db, product.ID, 8)
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

func seedProduct(t *testing.T, db *gorm.DB, qty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		WarehouseID:    uuid.New(),
		CatalogEntryID: uuid.New(),
		Quantity:       qty,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedLot(t *testing.T, db *gorm.DB, product *models.Product, qty int, entryDate time.Time) *models.ProductEntry {
	t.Helper()
	entry := &models.ProductEntry{
		ID:          uuid.New(),
		ProductID:   product.ID,
		WarehouseID: product.WarehouseID,
		Quantity:    qty,
		Status:      enums.EntryStatusDone,
		EntryDate:   entryDate,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func assertLot(t *testing.T, db *gorm.DB, id uuid.UUID, saled int, salled bool) {
	t.Helper()
	var lot models.ProductEntry
	require.NoError(t, db.First(&lot, "id = ?", id).Error)
	assert.Equal(t, saled, lot.SaledQuantity)
	assert.Equal(t, salled, lot.Salled)
}

func assertProductQty(t *testing.T, db *gorm.DB, id uuid.UUID, qty int) {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	assert.Equal(t, qty, product.Quantity)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:allocation_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductEntry{}))
	return db
}
