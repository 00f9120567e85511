package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// OrderRepository puerto de persistencia del agregado pedido.
// Create devuelve *domain.ConflictError si el número de pedido ya existe.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItems(ctx context.Context, items []*entity.OrderItem) error
	// AppendStatus agrega una entrada al historial; el historial nunca se edita.
	AppendStatus(ctx context.Context, entry *entity.OrderStatusEntry) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error)
	ListStatusHistory(ctx context.Context, orderID string) ([]*entity.OrderStatusEntry, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) error
}
