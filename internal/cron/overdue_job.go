package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	"github.com/oybekm/stockyard-backend/pkg/logger"
	"github.com/oybekm/stockyard-backend/pkg/metrics"
)

// OverdueJobParams configure the overdue-order sweep.
type OverdueJobParams struct {
	Logger  *logger.Logger
	DB      *gorm.DB
	Metrics *metrics.CronJobMetrics
}

// NewOverdueJob builds the cron job that flips late credit orders to overdue.
func NewOverdueJob(params OverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	return &overdueJob{
		logg:    params.Logger,
		db:      params.DB,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type overdueJob struct {
	logg    *logger.Logger
	db      *gorm.DB
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *overdueJob) Name() string { return "overdue-orders" }

// Run marks every confirmed, unsettled order whose payday has passed. The
// sweep is a single guarded UPDATE, so overlapping runs converge on the same
// final state and the second run affects zero rows.
func (j *overdueJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()

	result := j.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("confirmed = ?", true).
		Where("payday IS NOT NULL AND payday < ?", cutoff).
		Where("amount_paid_cents < total_cents").
		Where("status NOT IN ?", []enums.OrderStatus{enums.OrderStatusOverdue, enums.OrderStatusPaid}).
		Update("status", enums.OrderStatusOverdue)
	if result.Error != nil {
		return fmt.Errorf("sweep overdue orders: %w", result.Error)
	}

	j.metrics.AddMarkedOverdue(result.RowsAffected)
	runCtx := j.logg.WithField(ctx, "marked_overdue", result.RowsAffected)
	j.logg.Info(runCtx, "overdue sweep complete")
	return nil
}
