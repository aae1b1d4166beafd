package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

type orderSeed struct {
	status    enums.OrderStatus
	confirmed bool
	payday    *time.Time
	total     int64
	paid      int64
}

func TestOverdueSweepMarksOnlyLateUnsettledOrders(t *testing.T) {
	t.Parallel()

	db := newCronTestDB(t)
	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	late := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: true, payday: &past, total: 100, paid: 20})
	partiallyLate := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: true, payday: &past, total: 100, paid: 0})
	notDue := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: true, payday: &future, total: 100, paid: 0})
	noPayday := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: true, total: 100, paid: 0})
	draft := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: false, payday: &past, total: 100, paid: 0})
	settled := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusPaid, confirmed: true, payday: &past, total: 100, paid: 100})

	job := newSweepJob(t, db)
	require.NoError(t, job.Run(context.Background()))

	assertStatus(t, db, late.ID, enums.OrderStatusOverdue)
	assertStatus(t, db, partiallyLate.ID, enums.OrderStatusOverdue)
	assertStatus(t, db, notDue.ID, enums.OrderStatusCredit)
	assertStatus(t, db, noPayday.ID, enums.OrderStatusCredit)
	assertStatus(t, db, draft.ID, enums.OrderStatusCredit)
	assertStatus(t, db, settled.ID, enums.OrderStatusPaid)
}

func TestOverdueSweepIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newCronTestDB(t)
	past := time.Now().UTC().Add(-time.Hour)
	order := seedSweepOrder(t, db, orderSeed{status: enums.OrderStatusCredit, confirmed: true, payday: &past, total: 100, paid: 0})

	job := newSweepJob(t, db).(*overdueJob)
	ctx := context.Background()

	require.NoError(t, job.Run(ctx))
	assertStatus(t, db, order.ID, enums.OrderStatusOverdue)

	// second sweep finds nothing left to flip
	result := job.db.Model(&models.ClientOrder{}).
		Where("confirmed = ? AND payday < ? AND amount_paid_cents < total_cents", true, time.Now().UTC()).
		Where("status NOT IN ?", []enums.OrderStatus{enums.OrderStatusOverdue, enums.OrderStatusPaid}).
		Update("status", enums.OrderStatusOverdue)
	require.NoError(t, result.Error)
	assert.Zero(t, result.RowsAffected)

	require.NoError(t, job.Run(ctx))
	assertStatus(t, db, order.ID, enums.OrderStatusOverdue)
}

func newSweepJob(t *testing.T, db *gorm.DB) Job {
	t.Helper()
	job, err := NewOverdueJob(OverdueJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:     db,
	})
	require.NoError(t, err)
	return job
}

func seedSweepOrder(t *testing.T, db *gorm.DB, seed orderSeed) *models.ClientOrder {
	t.Helper()
	order := &models.ClientOrder{
		ID:              uuid.New(),
		ClientID:        uuid.New(),
		WarehouseID:     uuid.New(),
		Type:            enums.SaleTypeRetail,
		TotalCents:      seed.total,
		AmountPaidCents: seed.paid,
		BalanceCents:    seed.total - seed.paid,
		Status:          seed.status,
		Confirmed:       seed.confirmed,
		Payday:          seed.payday,
		OrderDate:       time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func assertStatus(t *testing.T, db *gorm.DB, id uuid.UUID, want enums.OrderStatus) {
	t.Helper()
	var order models.ClientOrder
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	assert.Equal(t, want, order.Status)
}

func newCronTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cron_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ClientOrder{}, &models.ProductSale{}))
	return db
}
