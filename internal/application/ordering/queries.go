package ordering

import (
	"context"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

// Queries lado de lectura de pedidos.
type Queries struct {
	orders repository.OrderRepository
}

// NewQueries construye las consultas.
func NewQueries(orders repository.OrderRepository) *Queries {
	return &Queries{orders: orders}
}

// GetOrder devuelve el grafo hidratado del pedido o domain.ErrNotFound.
func (q *Queries) GetOrder(ctx context.Context, orderID string) (*PersistedOrder, error) {
	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, domain.NewStorageError("get order", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := q.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, domain.NewStorageError("list order items", err)
	}
	history, err := q.orders.ListStatusHistory(ctx, orderID)
	if err != nil {
		return nil, domain.NewStorageError("list order status history", err)
	}
	return &PersistedOrder{Order: order, Items: items, History: history}, nil
}

// StatusHistory historial de estados en orden cronológico.
func (q *Queries) StatusHistory(ctx context.Context, orderID string) ([]*entity.OrderStatusEntry, error) {
	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, domain.NewStorageError("get order", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	history, err := q.orders.ListStatusHistory(ctx, orderID)
	if err != nil {
		return nil, domain.NewStorageError("list order status history", err)
	}
	return history, nil
}
