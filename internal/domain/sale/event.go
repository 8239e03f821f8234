package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatedEvent is the notification emitted after a sale is persisted.
// Delivery is best-effort: a failed publish never fails the request.
type CreatedEvent struct {
	SaleID       uuid.UUID
	Number       string
	CustomerID   uuid.UUID
	CustomerName string
	Amount       decimal.Decimal
}

// Publisher is the fire-and-forget event port consumed on sale creation.
type Publisher interface {
	PublishSaleCreated(ctx context.Context, event CreatedEvent) error
}
