package purchasing

import (
	"context"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

// Queries lado de lectura de órdenes de compra.
type Queries struct {
	pos repository.PurchaseOrderRepository
}

// NewQueries construye las consultas.
func NewQueries(pos repository.PurchaseOrderRepository) *Queries {
	return &Queries{pos: pos}
}

// GetPurchaseOrder devuelve la orden con sus líneas o domain.ErrNotFound.
func (q *Queries) GetPurchaseOrder(ctx context.Context, id string) (*PurchaseOrderView, error) {
	po, err := q.pos.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewStorageError("get purchase order", err)
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	items, err := q.pos.ListItems(ctx, id)
	if err != nil {
		return nil, domain.NewStorageError("list purchase order items", err)
	}
	return &PurchaseOrderView{PurchaseOrder: po, Items: items}, nil
}
