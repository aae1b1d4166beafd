package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
)

// Repository exposes persistence for clients and their order rollups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, client *models.Client) error
	Find(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, input ListInput) ([]models.Client, int64, error)

	DebtSummaries(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]DebtSummary, error)
	ActiveOrders(ctx context.Context, clientID uuid.UUID) ([]models.ClientOrder, error)
	CountOrders(ctx context.Context, clientID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a clients repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Client{})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Client, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Client{})
	if input.Search != "" {
		pattern := "%" + input.Search + "%"
		base = base.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := input.Page.Window()
	var clients []models.Client
	err := base.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

type debtRow struct {
	ClientID     uuid.UUID
	Balance      int64
	OpenOrders   int64
	OverdueCount int64
}

// DebtSummaries aggregates outstanding balances per client over confirmed,
// unsettled orders.
func (r *repository) DebtSummaries(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]DebtSummary, error) {
	if len(clientIDs) == 0 {
		return map[uuid.UUID]DebtSummary{}, nil
	}

	var rows []debtRow
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Select("client_id, "+
			"COALESCE(SUM(balance_cents), 0) AS balance, "+
			"COUNT(*) AS open_orders, "+
			"COALESCE(SUM(CASE WHEN status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_count").
		Where("client_id IN ? AND confirmed = ? AND status <> ?", clientIDs, true, enums.OrderStatusPaid).
		Group("client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make(map[uuid.UUID]DebtSummary, len(rows))
	for _, row := range rows {
		summaries[row.ClientID] = DebtSummary{
			OutstandingCents: row.Balance,
			OpenOrders:       int(row.OpenOrders),
			OverdueOrders:    int(row.OverdueCount),
		}
	}
	return summaries, nil
}

// ActiveOrders lists a client's confirmed and not yet settled orders.
func (r *repository) ActiveOrders(ctx context.Context, clientID uuid.UUID) ([]models.ClientOrder, error) {
	var orders []models.ClientOrder
	err := r.db.WithContext(ctx).
		Preload("Sales").
		Where("client_id = ? AND confirmed = ? AND status <> ?", clientID, true, enums.OrderStatusPaid).
		Order("order_date ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CountOrders(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}
