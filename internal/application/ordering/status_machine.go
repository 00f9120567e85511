package ordering

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// StatusMachine aplica transiciones de estado de pedidos según la tabla de entity.OrderStatus.
// El despacho (shipped) descuenta stock por línea; cancelar un pedido despachado lo repone.
type StatusMachine struct {
	uow    repository.UnitOfWork
	ledger *inventory.Ledger
	log    *logger.Logger
	now    func() time.Time
}

// NewStatusMachine construye la máquina de estados.
func NewStatusMachine(uow repository.UnitOfWork, ledger *inventory.Ledger, log *logger.Logger) *StatusMachine {
	return &StatusMachine{uow: uow, ledger: ledger, log: log.Named("order_status"), now: time.Now}
}

// TransitionStatus bloquea el pedido, valida la transición, actualiza el estado actual y
// agrega una entrada inmutable al historial, todo en la misma unidad de trabajo.
func (m *StatusMachine) TransitionStatus(ctx context.Context, orderID, newStatus, notes, actor string) (*entity.OrderStatusEntry, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, domain.NewValidationError("order_id", "requerido")
	}
	next, ok := entity.ParseOrderStatus(newStatus)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("estado desconocido: %q", newStatus))
	}

	var (
		entry *entity.OrderStatusEntry
		from  entity.OrderStatus
	)
	err := m.uow.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if order == nil {
			return domain.ErrNotFound
		}
		from = order.Status
		if !from.CanTransitionTo(next) {
			return domain.NewStateError("order", string(from), string(next), "transición no permitida", nil)
		}

		now := m.now()
		switch {
		case next == entity.OrderShipped:
			err = m.moveStock(ctx, repos, order, entity.MovementOut, entity.ReferenceSalesOrder, actor, now)
		case next == entity.OrderCancelled && from == entity.OrderShipped:
			err = m.moveStock(ctx, repos, order, entity.MovementIn, entity.ReferenceSalesOrderCancel, actor, now)
		}
		if err != nil {
			return err
		}

		if err := repos.Orders.UpdateStatus(ctx, order.ID, next, now); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		entry = &entity.OrderStatusEntry{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			Status:    next,
			Notes:     notes,
			ChangedBy: actor,
			CreatedAt: now,
		}
		if err := repos.Orders.AppendStatus(ctx, entry); err != nil {
			return fmt.Errorf("insert status entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().
		Str("order_id", orderID).
		Str("from", string(from)).
		Str("to", string(next)).
		Str("actor", actor).
		Msg("estado de pedido actualizado")
	return entry, nil
}

// moveStock aplica un movimiento por línea. Las líneas se recorren ordenadas por producto
// para que dos transacciones bloqueen filas de producto siempre en el mismo orden.
func (m *StatusMachine) moveStock(
	ctx context.Context,
	repos repository.TxRepos,
	order *entity.Order,
	direction, referenceType, actor string,
	at time.Time,
) error {
	items, err := repos.Orders.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	for _, it := range items {
		_, err := m.ledger.ApplyInTx(ctx, repos, inventory.MovementInput{
			ProductID:     it.ProductID,
			Direction:     direction,
			Quantity:      it.Quantity,
			ReferenceType: referenceType,
			ReferenceID:   order.ID,
			Notes:         order.OrderNumber,
			Actor:         actor,
			At:            at,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
