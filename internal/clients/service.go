package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oybekm/stockyard-backend/pkg/db/models"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/pagination"
)

// ListInput filters the client listing.
type ListInput struct {
	Search string
	Page   pagination.Params
}

// DebtSummary is the per-client rollup over confirmed, unsettled orders.
type DebtSummary struct {
	OutstandingCents int64 `json:"outstanding_cents"`
	OpenOrders       int   `json:"open_orders"`
	OverdueOrders    int   `json:"overdue_orders"`
}

// ClientWithDebt pairs a client with its outstanding balance rollup.
type ClientWithDebt struct {
	Client models.Client
	Debt   DebtSummary
}

// CreateInput carries the fields for a new client.
type CreateInput struct {
	Name  string
	Phone *string
}

// UpdateInput carries the mutable client fields. Nil fields are untouched.
type UpdateInput struct {
	Name  *string
	Phone *string
}

// Service defines client operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*ClientWithDebt, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) ([]ClientWithDebt, int64, error)
	ActiveOrders(ctx context.Context, clientID uuid.UUID) ([]models.ClientOrder, error)
}

type service struct {
	repo Repository
}

// NewService builds a clients service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name required")
	}

	client := &models.Client{ID: uuid.New(), Name: name, Phone: input.Phone}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return client, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ClientWithDebt, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	client, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	summaries, err := s.repo.DebtSummaries(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt summary")
	}
	return &ClientWithDebt{Client: *client, Debt: summaries[id]}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Client, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}

	client, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload client")
	}
	return client, nil
}

// Delete removes a client that has no order history.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	count, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client orders")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "client has order history")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]ClientWithDebt, int64, error) {
	clients, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}

	ids := make([]uuid.UUID, 0, len(clients))
	for _, client := range clients {
		ids = append(ids, client.ID)
	}
	summaries, err := s.repo.DebtSummaries(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt summaries")
	}

	results := make([]ClientWithDebt, 0, len(clients))
	for _, client := range clients {
		results = append(results, ClientWithDebt{Client: client, Debt: summaries[client.ID]})
	}
	return results, total, nil
}

func (s *service) ActiveOrders(ctx context.Context, clientID uuid.UUID) ([]models.ClientOrder, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	orders, err := s.repo.ActiveOrders(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active orders")
	}
	return orders, nil
}
