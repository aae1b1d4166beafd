// Package allocation consumes stock lots oldest-first when an order is
// confirmed. It runs entirely inside the caller's transaction: any error
// leaves no partial consumption behind.
package allocation

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

// Request asks for a quantity of one product. Zero-quantity requests are
// accepted and consume nothing.
type Request struct {
	ProductID uuid.UUID
	Qty       int
}

// LotConsumption records how much was taken from one lot.
type LotConsumption struct {
	EntryID   uuid.UUID
	Qty       int
	Exhausted bool
}

// Result reports the lots consumed for one requested product.
type Result struct {
	ProductID uuid.UUID
	Qty       int
	Lots      []LotConsumption
}

// ShortageDetail names the product that could not be covered.
type ShortageDetail struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Allocate satisfies the requests from open lots in FIFO order.
//
// Demand is aggregated per product and checked against both the lot ledger
// and the aggregate counter before anything is written. Consumption uses
// guarded updates; a row that moved underneath us surfaces as a retryable
// allocation race rather than a silent oversell.
func Allocate(ctx context.Context, tx *gorm.DB, requests []Request) ([]Result, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "allocation requires a transaction")
	}

	demand := make(map[uuid.UUID]int, len(requests))
	for _, req := range requests {
		if req.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if req.Qty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		demand[req.ProductID] += req.Qty
	}

	if err := precheck(ctx, tx, demand); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(requests))
	for _, req := range requests {
		result := Result{ProductID: req.ProductID, Qty: req.Qty}
		if req.Qty > 0 {
			lots, err := consume(ctx, tx, req.ProductID, req.Qty)
			if err != nil {
				return nil, err
			}
			result.Lots = lots
		}
		results = append(results, result)
	}
	return results, nil
}

// precheck verifies every product can be fully covered before any lot is
// touched, so shortfalls never leave half-written state. Product rows are
// locked in ascending id order so concurrent confirmations serialize per
// product without deadlocking.
func precheck(ctx context.Context, tx *gorm.DB, demand map[uuid.UUID]int) error {
	productIDs := make([]uuid.UUID, 0, len(demand))
	for id := range demand {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	for _, productID := range productIDs {
		needed := demand[productID]

		product, err := lockProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		available, err := availableQuantity(ctx, tx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum open lots")
		}
		if available != product.Quantity {
			// A confirmation committing between the two reads makes them
			// diverge on a healthy ledger. Divergence that survives a
			// re-read is real drift.
			product, err = lockProduct(ctx, tx, productID)
			if err != nil {
				return err
			}
			again, err := availableQuantity(ctx, tx, productID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum open lots")
			}
			if again == product.Quantity {
				return pkgerrors.New(pkgerrors.CodeAllocationRace, "ledger moved during precheck")
			}
			return pkgerrors.New(pkgerrors.CodeIntegrity, "product quantity diverges from lot ledger").
				WithDetails(map[string]any{
					"product_id":         productID,
					"aggregate_quantity": product.Quantity,
					"lot_quantity":       again,
				})
		}
		if needed > available {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(ShortageDetail{
					ProductID: productID,
					Requested: needed,
					Available: available,
				})
		}
	}
	return nil
}

// lockProduct reads the aggregate row under FOR UPDATE. sqlite has no row
// locks and serializes writers on its own, so the clause is skipped there.
func lockProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	err := q.Where("id = ?", productID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func consume(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) ([]LotConsumption, error) {
	var lots []models.ProductEntry
	err := tx.WithContext(ctx).
		Where("product_id = ? AND salled = ? AND status = ?", productID, false, enums.EntryStatusDone).
		Order("entry_date ASC, created_at ASC").
		Find(&lots).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open lots")
	}

	consumed := make([]LotConsumption, 0, len(lots))
	remaining := qty
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		take := lot.Remaining()
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}

		exhausted := lot.SaledQuantity+take == lot.Quantity
		result := tx.WithContext(ctx).
			Model(&models.ProductEntry{}).
			Where("id = ? AND saled_quantity = ?", lot.ID, lot.SaledQuantity).
			Updates(map[string]any{
				"saled_quantity": lot.SaledQuantity + take,
				"salled":         exhausted,
			})
		if result.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "consume lot")
		}
		if result.RowsAffected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeAllocationRace, "lot moved during allocation")
		}

		consumed = append(consumed, LotConsumption{EntryID: lot.ID, Qty: take, Exhausted: exhausted})
		remaining -= take
	}
	if remaining > 0 {
		// the precheck passed, so the ledger shrank underneath us
		return nil, pkgerrors.New(pkgerrors.CodeAllocationRace, "open lots shrank during allocation")
	}

	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "decrement product quantity")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAllocationRace, "product counter moved during allocation")
	}
	return consumed, nil
}

// Restore returns previously consumed quantities to the newest open lots,
// reversing a prior allocation when an unshipped order is deleted.
func Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "restore requires a transaction")
	}
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if qty == 0 {
		return nil
	}

	var lots []models.ProductEntry
	err := tx.WithContext(ctx).
		Where("product_id = ? AND saled_quantity > 0 AND status = ?", productID, enums.EntryStatusDone).
		Order("entry_date DESC, created_at DESC").
		Find(&lots).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load consumed lots")
	}

	remaining := qty
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		give := lot.SaledQuantity
		if give > remaining {
			give = remaining
		}

		result := tx.WithContext(ctx).
			Model(&models.ProductEntry{}).
			Where("id = ? AND saled_quantity = ?", lot.ID, lot.SaledQuantity).
			Updates(map[string]any{
				"saled_quantity": lot.SaledQuantity - give,
				"salled":         false,
			})
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "restore lot")
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeAllocationRace, "lot moved during restore")
		}
		remaining -= give
	}
	if remaining > 0 {
		return pkgerrors.New(pkgerrors.CodeIntegrity, "consumed lots cannot cover restoration").
			WithDetails(map[string]any{"product_id": productID, "unrestored": remaining})
	}

	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "increment product quantity")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func availableQuantity(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error) {
	var available int64
	err := tx.WithContext(ctx).
		Model(&models.ProductEntry{}).
		Select("COALESCE(SUM(quantity - saled_quantity), 0)").
		Where("product_id = ? AND salled = ? AND status = ?", productID, false, enums.EntryStatusDone).
		Scan(&available).Error
	return int(available), err
}
