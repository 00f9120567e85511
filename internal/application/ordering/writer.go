package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

// PersistedOrder grafo hidratado del pedido: cabecera, líneas e historial.
type PersistedOrder struct {
	Order   *entity.Order
	Items   []*entity.OrderItem
	History []*entity.OrderStatusEntry
}

// Writer persiste el agregado completo en una sola unidad de trabajo.
type Writer struct {
	uow repository.UnitOfWork
}

// NewWriter construye el escritor transaccional.
func NewWriter(uow repository.UnitOfWork) *Writer {
	return &Writer{uow: uow}
}

// CreateOrder inserta cabecera, todas las líneas y una entrada de historial con initialStatus.
// Si algo falla no queda nada escrito. Un número repetido sale como *domain.ConflictError.
func (w *Writer) CreateOrder(ctx context.Context, agg *Aggregate, initialStatus entity.OrderStatus, actor string) (*PersistedOrder, error) {
	if agg == nil || agg.Order == nil {
		return nil, domain.NewValidationError("order", "requerido")
	}
	if len(agg.Items) == 0 {
		return nil, domain.NewValidationError("items", "el pedido debe tener al menos una línea")
	}
	if !initialStatus.IsValid() {
		return nil, domain.NewValidationError("status", "estado inicial desconocido")
	}

	order := *agg.Order
	order.Status = initialStatus
	entry := &entity.OrderStatusEntry{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Status:    initialStatus,
		Notes:     "pedido creado",
		ChangedBy: actor,
		CreatedAt: order.CreatedAt,
	}

	err := w.uow.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := repos.Orders.CreateItems(ctx, agg.Items); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		if err := repos.Orders.AppendStatus(ctx, entry); err != nil {
			return fmt.Errorf("insert status entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PersistedOrder{
		Order:   &order,
		Items:   agg.Items,
		History: []*entity.OrderStatusEntry{entry},
	}, nil
}
