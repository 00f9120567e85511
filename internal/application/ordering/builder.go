package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	rules "github.com/jhoicas/backoffice-core/internal/domain/ordering"
)

// Aggregate pedido armado y validado, todavía sin persistir.
type Aggregate struct {
	Order *entity.Order
	Items []*entity.OrderItem
}

// AggregateBuilder valida un borrador, calcula totales y asigna número de pedido.
type AggregateBuilder struct {
	ids *numbering.Generator
	now func() time.Time
}

// NewAggregateBuilder construye el armador.
func NewAggregateBuilder(ids *numbering.Generator) *AggregateBuilder {
	return &AggregateBuilder{ids: ids, now: time.Now}
}

// Build valida primero (fail-fast, sin consumir número) y luego pide el número de pedido.
// Cada llamada produce ids nuevos, de modo que un reintento tras colisión arma un agregado limpio.
func (b *AggregateBuilder) Build(ctx context.Context, draft rules.Draft, actor string) (*Aggregate, error) {
	if err := rules.Validate(&draft); err != nil {
		return nil, err
	}
	totals := rules.Compute(draft)
	number := b.ids.NextOrderNumber(ctx)
	now := b.now()

	order := &entity.Order{
		ID:             uuid.New().String(),
		OrderNumber:    number.Value,
		NumberDegraded: number.Degraded,
		CustomerID:     draft.CustomerID,
		Status:         entity.OrderPending,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.Tax,
		DiscountAmount: totals.Discount,
		ShippingAmount: totals.Shipping,
		TotalAmount:    totals.Total,
		Notes:          draft.Notes,
		CreatedBy:      actor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	items := make([]*entity.OrderItem, len(draft.Items))
	for i, it := range draft.Items {
		items[i] = &entity.OrderItem{
			ID:                 uuid.New().String(),
			OrderID:            order.ID,
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			TotalPrice:         totals.LineTotals[i],
			CreatedAt:          now,
		}
	}
	return &Aggregate{Order: order, Items: items}, nil
}
