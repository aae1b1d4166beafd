package clients

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
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

func TestCreateAndGetClient(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	phone := "+998901234567"

	created, err := svc.Create(ctx, CreateInput{Name: "  Akmal Trading ", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Akmal Trading", created.Name)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.Client.ID)
	assert.Zero(t, loaded.Debt.OutstandingCents)
}

func TestListRollsUpOutstandingDebt(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	debtor, err := svc.Create(ctx, CreateInput{Name: "Debtor"})
	require.NoError(t, err)
	clean, err := svc.Create(ctx, CreateInput{Name: "Settled"})
	require.NoError(t, err)

	seedOrder(t, db, debtor.ID, enums.OrderStatusCredit, true, 300_00, 100_00)
	seedOrder(t, db, debtor.ID, enums.OrderStatusOverdue, true, 200_00, 0)
	// unconfirmed drafts and settled orders stay out of the rollup
	seedOrder(t, db, debtor.ID, enums.OrderStatusCredit, false, 999_00, 0)
	seedOrder(t, db, clean.ID, enums.OrderStatusPaid, true, 400_00, 400_00)

	results, total, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, results, 2)

	byName := map[string]ClientWithDebt{}
	for _, result := range results {
		byName[result.Client.Name] = result
	}

	assert.EqualValues(t, 400_00, byName["Debtor"].Debt.OutstandingCents)
	assert.Equal(t, 2, byName["Debtor"].Debt.OpenOrders)
	assert.Equal(t, 1, byName["Debtor"].Debt.OverdueOrders)

	assert.Zero(t, byName["Settled"].Debt.OutstandingCents)
	assert.Zero(t, byName["Settled"].Debt.OpenOrders)
}

func TestActiveOrdersExcludesSettledAndDrafts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	client, err := svc.Create(ctx, CreateInput{Name: "Client"})
	require.NoError(t, err)

	active := seedOrder(t, db, client.ID, enums.OrderStatusCredit, true, 100_00, 0)
	seedOrder(t, db, client.ID, enums.OrderStatusPaid, true, 50_00, 50_00)
	seedOrder(t, db, client.ID, enums.OrderStatusCredit, false, 70_00, 0)

	orders, err := svc.ActiveOrders(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, active.ID, orders[0].ID)
}

func TestDeleteClientWithHistoryConflicts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	client, err := svc.Create(ctx, CreateInput{Name: "Busy"})
	require.NoError(t, err)
	seedOrder(t, db, client.ID, enums.OrderStatusCredit, true, 10_00, 0)

	err = svc.Delete(ctx, client.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	empty, err := svc.Create(ctx, CreateInput{Name: "Fresh"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))

	_, err = svc.Get(ctx, empty.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateClientPartialFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	client, err := svc.Create(ctx, CreateInput{Name: "Old Name"})
	require.NoError(t, err)

	name := "New Name"
	updated, err := svc.Update(ctx, client.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Nil(t, updated.Phone)

	_, err = svc.Update(ctx, client.ID, UpdateInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func seedOrder(t *testing.T, db *gorm.DB, clientID uuid.UUID, status enums.OrderStatus, confirmed bool, totalCents, paidCents int64) *models.ClientOrder {
	t.Helper()
	order := &models.ClientOrder{
		ID:              uuid.New(),
		ClientID:        clientID,
		WarehouseID:     uuid.New(),
		Type:            enums.SaleTypeRetail,
		TotalCents:      totalCents,
		AmountPaidCents: paidCents,
		BalanceCents:    totalCents - paidCents,
		Status:          status,
		Confirmed:       confirmed,
		OrderDate:       time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:clients_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Client{},
		&models.ClientOrder{},
		&models.ProductSale{},
	))
	return db
}
