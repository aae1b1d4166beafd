package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/internal/allocation"
	"github.com/oybekm/stockyard-backend/internal/catalog"
	"github.com/oybekm/stockyard-backend/internal/stock"
	"github.com/oybekm/stockyard-backend/pkg/db/models"
	"github.com/oybekm/stockyard-backend/pkg/enums"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
)

const (
	confirmAttempts = 2 // retries after the first attempt
	confirmBackoff  = 25 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ClientOrder, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error)
	RecordPayment(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error)
	ListOrders(ctx context.Context, input ListOrdersInput) ([]models.ClientOrder, int64, error)
	ListSales(ctx context.Context, input ListSalesInput) ([]models.ProductSale, int64, error)
}

type service struct {
	repo     Repository
	products stock.Repository
	tx       txRunner
}

// NewService builds an order service with the required dependencies. Products
// are read through the stock repository so prices come preloaded with their
// catalog dimensions.
func NewService(repo Repository, products stock.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx}, nil
}

// CreateOrder builds a draft order in two phases inside one transaction: the
// order row first, then the sale lines with prices frozen from the catalog,
// then the backfilled totals. Stock is untouched until confirmation.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.ClientOrder, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	order := &models.ClientOrder{
		ID:          uuid.New(),
		ClientID:    input.ClientID,
		WarehouseID: input.WarehouseID,
		Type:        input.Type,
		Status:      enums.OrderStatusCredit,
		Payday:      input.Payday,
		OrderDate:   orderDate,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		var totalCents int64
		sales := make([]models.ProductSale, 0, len(input.Lines))
		for _, line := range input.Lines {
			product, err := products.FindProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": line.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if product.WarehouseID != input.WarehouseID {
				return pkgerrors.New(pkgerrors.CodeValidation, "product belongs to another warehouse")
			}
			if product.CatalogEntry == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "product has no catalog entry")
			}

			lineTotal := catalog.UnitPriceCents(product.CatalogEntry, input.Type) * int64(line.Quantity)
			totalCents += lineTotal
			sales = append(sales, models.ProductSale{
				ID:            uuid.New(),
				ClientOrderID: order.ID,
				ProductID:     product.ID,
				WarehouseID:   input.WarehouseID,
				Quantity:      line.Quantity,
				TotalCents:    lineTotal,
				Type:          input.Type,
				SaleDate:      orderDate,
			})
		}

		if err := repo.CreateSales(ctx, sales); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale lines")
		}

		if input.AmountPaidCents > totalCents {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount paid exceeds order total").
				WithDetails(map[string]any{
					"amount_paid_cents": input.AmountPaidCents,
					"total_cents":       totalCents,
				})
		}
		balanceCents := totalCents - input.AmountPaidCents
		status := enums.OrderStatusCredit
		if balanceCents == 0 {
			status = enums.OrderStatusPaid
		}
		if err := repo.SetTotals(ctx, order.ID, totalCents, input.AmountPaidCents, balanceCents, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set order totals")
		}

		order.TotalCents = totalCents
		order.AmountPaidCents = input.AmountPaidCents
		order.BalanceCents = balanceCents
		order.Status = status
		order.Sales = sales
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmOrder allocates stock for every line and flips the confirmation
// flag, retrying a bounded number of times when a concurrent confirmation
// races on the same lots.
func (s *service) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var confirmed *models.ClientOrder
	backoff := retry.WithMaxRetries(confirmAttempts, retry.NewConstant(confirmBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptErr := s.confirmOnce(ctx, orderID, &confirmed)
		if attemptErr != nil && pkgerrors.HasCode(attemptErr, pkgerrors.CodeAllocationRace) {
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *service) confirmOnce(ctx context.Context, orderID uuid.UUID, out **models.ClientOrder) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Confirmed {
			return pkgerrors.New(pkgerrors.CodeAlreadyConfirmed, "order already confirmed")
		}

		requests := make([]allocation.Request, 0, len(order.Sales))
		for _, sale := range order.Sales {
			requests = append(requests, allocation.Request{ProductID: sale.ProductID, Qty: sale.Quantity})
		}
		if _, err := allocation.Allocate(ctx, tx, requests); err != nil {
			return err
		}

		affected, err := repo.MarkConfirmed(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order confirmed")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyConfirmed, "order already confirmed")
		}

		order.Confirmed = true
		*out = order
		return nil
	})
}

// RecordPayment settles an order in full. Partial payments are not modeled:
// a successful call moves amountPaid to the order total, zeroes the balance
// and flips status to paid. The balance re-check and the status write happen
// in the same transaction, so a payment always beats a concurrent sweep.
func (s *service) RecordPayment(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.ClientOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Confirmed {
			return pkgerrors.New(pkgerrors.CodeConflict, "order not confirmed")
		}
		if order.Status == enums.OrderStatusPaid || order.BalanceCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyPaid, "order already settled")
		}

		affected, err := repo.SettleOrder(ctx, order.ID, order.AmountPaidCents, order.TotalCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment raced with another update")
		}

		order.AmountPaidCents = order.TotalCents
		order.BalanceCents = 0
		order.Status = enums.OrderStatusPaid
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder removes a draft outright. A confirmed order is deleted only if
// no payment was recorded, and its consumed stock is returned to the lots
// first.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.AmountPaidCents > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order has recorded payments")
		}

		if order.Confirmed {
			restore := map[uuid.UUID]int{}
			for _, sale := range order.Sales {
				restore[sale.ProductID] += sale.Quantity
			}
			for productID, qty := range restore {
				if err := allocation.Restore(ctx, tx, productID, qty); err != nil {
					return err
				}
			}
		}

		if err := repo.DeleteOrder(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.ClientOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) ([]models.ClientOrder, int64, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	orders, total, err := s.repo.ListOrders(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, total, nil
}

func (s *service) ListSales(ctx context.Context, input ListSalesInput) ([]models.ProductSale, int64, error) {
	sales, total, err := s.repo.ListSales(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return sales, total, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if input.ClientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if input.WarehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid sale type")
	}
	if input.AmountPaidCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount paid cannot be negative")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one order line required")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
	}
	return nil
}
