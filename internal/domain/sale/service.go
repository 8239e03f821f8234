package sale

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/devstore/sales-api/pkg/paging"
)

// ErrNotFound is returned when no sale resolves for the requested identity.
var ErrNotFound = errors.New("sale not found")

// ListParams selects a page of sales. OrderBy must be one of the repository's
// sortable columns; an empty value means the repository default.
type ListParams struct {
	Page     int
	PageSize int
	OrderBy  string
}

// Repository defines persistence operations for the sale aggregate.
//
// GetByID excludes cancelled sales and loads only live items; GetForUpdate
// resolves by id alone and loads the full item list, since the update and
// delete flows must round-trip soft-deleted items.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, params ListParams) ([]Sale, int, error)
	Update(ctx context.Context, s *Sale) error
}

// SaleItemRequest is one line of a create or update request.
type SaleItemRequest struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateSaleRequest holds the input for creating a sale.
type CreateSaleRequest struct {
	Number       string
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []SaleItemRequest
}

// UpdateSaleRequest holds the input for updating a sale.
type UpdateSaleRequest struct {
	CustomerID   uuid.UUID
	CustomerName string
	BranchID     uuid.UUID
	BranchName   string
	Items        []SaleItemRequest
}

// Service encapsulates the sale use cases over the persistence and event
// ports. All validation happens before any persistence call.
type Service struct {
	sales  Repository
	events Publisher
}

// NewService creates a sale Service with the required dependencies.
func NewService(sales Repository, events Publisher) *Service {
	return &Service{
		sales:  sales,
		events: events,
	}
}

// CreateSale validates the request, builds the aggregate through its
// factories, persists it and emits a SaleCreated event. The event publish is
// best-effort: failures are logged and do not fail the call.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if violations := validateCreateRequest(req); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	items := make([]*SaleItem, len(req.Items))
	for i, it := range req.Items {
		item, err := NewSaleItem(it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	created, err := NewSale(req.Number, req.CustomerID, req.CustomerName, req.BranchID, req.BranchName, items)
	if err != nil {
		return nil, err
	}

	if err := s.sales.Create(ctx, created); err != nil {
		return nil, errors.Wrap(err, "create sale")
	}

	event := CreatedEvent{
		SaleID:       created.ID,
		Number:       created.Number,
		CustomerID:   created.CustomerID,
		CustomerName: created.CustomerName,
		Amount:       created.Amount,
	}
	if err := s.events.PublishSaleCreated(ctx, event); err != nil {
		zctx.From(ctx).Warn("Publish sale created event",
			zap.String("sale_id", created.ID.String()),
			zap.Error(err),
		)
	}

	return created, nil
}

// GetSale returns a non-cancelled sale with its live items.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	found, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get sale")
	}
	return found, nil
}

// ListSales returns a page of non-cancelled sales.
func (s *Service) ListSales(ctx context.Context, params ListParams) (*paging.Page[Sale], error) {
	sales, total, err := s.sales.List(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	page := paging.New(sales, params.Page, params.PageSize, total)
	return &page, nil
}

// UpdateSale validates the request, loads the aggregate with its full item
// list, applies the item-replacement policy and persists the result.
func (s *Service) UpdateSale(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) error {
	if violations := validateUpdateRequest(id, req); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	existing, err := s.sales.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "load sale")
	}

	items := make([]*SaleItem, len(req.Items))
	for i, it := range req.Items {
		item, err := NewSaleItem(it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
		items[i] = item
	}

	if err := existing.Update(req.CustomerID, req.CustomerName, req.BranchID, req.BranchName, items); err != nil {
		return err
	}

	if err := s.sales.Update(ctx, existing); err != nil {
		return errors.Wrap(err, "update sale")
	}
	return nil
}

// DeleteSale soft-deletes a sale and then its remaining live items. The two
// steps stay separate: Cancel touches the sale only, the item sweep is owned
// by this flow.
func (s *Service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	existing, err := s.sales.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "load sale")
	}

	existing.Cancel()
	for _, item := range existing.Items {
		if !item.Cancelled {
			item.Remove()
		}
	}

	if err := s.sales.Update(ctx, existing); err != nil {
		return errors.Wrap(err, "delete sale")
	}
	return nil
}
