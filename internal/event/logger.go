// Package event provides the log-only implementation of the sale event port.
package event

import (
	"context"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/devstore/sales-api/internal/domain/sale"
)

var _ sale.Publisher = (*LogPublisher)(nil)

// LogPublisher emits sale events to the application log. It stands in for a
// real broker: delivery is best-effort and nothing is retried.
type LogPublisher struct {
	lg *zap.Logger
}

// NewLogPublisher returns a LogPublisher writing through the given logger.
func NewLogPublisher(lg *zap.Logger) *LogPublisher {
	return &LogPublisher{lg: lg}
}

// PublishSaleCreated logs the event with its JSON payload.
func (p *LogPublisher) PublishSaleCreated(_ context.Context, e sale.CreatedEvent) error {
	var enc jx.Encoder
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("saleId", func(enc *jx.Encoder) { enc.Str(e.SaleID.String()) })
		enc.Field("number", func(enc *jx.Encoder) { enc.Str(e.Number) })
		enc.Field("customerId", func(enc *jx.Encoder) { enc.Str(e.CustomerID.String()) })
		enc.Field("customerName", func(enc *jx.Encoder) { enc.Str(e.CustomerName) })
		enc.Field("amount", func(enc *jx.Encoder) { enc.Str(e.Amount.String()) })
	})

	p.lg.Info("Event published",
		zap.String("event", "SaleCreated"),
		zap.ByteString("payload", enc.Bytes()),
	)
	return nil
}
