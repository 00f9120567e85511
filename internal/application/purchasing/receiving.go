package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// ReceiveInput recepción de una cantidad de una línea de orden de compra.
type ReceiveInput struct {
	ItemID       string
	Quantity     decimal.Decimal
	ReceivedDate time.Time // cero = ahora
	Actor        string
}

// ReceiptResult línea actualizada y orden de compra tras la recepción.
type ReceiptResult struct {
	Item          *entity.PurchaseOrderItem
	PurchaseOrder *entity.PurchaseOrder
	// Completed true si esta recepción completó la orden.
	Completed bool
}

// ReceivingTracker acumula recepciones parciales, alimenta el libro de stock y detecta
// cuándo una orden de compra quedó completa.
type ReceivingTracker struct {
	uow    repository.UnitOfWork
	ledger *inventory.Ledger
	log    *logger.Logger
	now    func() time.Time
}

// NewReceivingTracker construye el caso de uso.
func NewReceivingTracker(uow repository.UnitOfWork, ledger *inventory.Ledger, log *logger.Logger) *ReceivingTracker {
	return &ReceivingTracker{uow: uow, ledger: ledger, log: log.Named("receiving"), now: time.Now}
}

// ReceiveLineItem en una sola unidad de trabajo: (a) entrada de stock por la cantidad recibida
// al costo de la línea, (b) actualiza quantity_received/received_date/received_by,
// (c) si todas las líneas quedaron completas pasa la orden a received y fija actual_delivery_date.
// La orden y la línea se bloquean antes de leer las cantidades.
func (t *ReceivingTracker) ReceiveLineItem(ctx context.Context, in ReceiveInput) (*ReceiptResult, error) {
	if strings.TrimSpace(in.ItemID) == "" {
		return nil, domain.NewValidationError("item_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := domain.CheckScale("quantity", in.Quantity, domain.QuantityScale); err != nil {
		return nil, err
	}
	receivedAt := in.ReceivedDate
	if receivedAt.IsZero() {
		receivedAt = t.now()
	}

	var res ReceiptResult
	err := t.uow.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		head, err := repos.PurchaseOrders.GetItem(ctx, in.ItemID)
		if err != nil {
			return fmt.Errorf("get purchase order item: %w", err)
		}
		if head == nil {
			return domain.ErrNotFound
		}
		po, err := repos.PurchaseOrders.GetForUpdate(ctx, head.PurchaseOrderID)
		if err != nil {
			return fmt.Errorf("lock purchase order: %w", err)
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !po.AcceptsReceipts() {
			return domain.NewStateError("purchase_order", po.Status, "", "la orden no admite recepciones", nil)
		}
		item, err := repos.PurchaseOrders.GetItemForUpdate(ctx, in.ItemID)
		if err != nil {
			return fmt.Errorf("lock purchase order item: %w", err)
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !item.CanReceive(in.Quantity) {
			return domain.NewValidationError("quantity", fmt.Sprintf(
				"la recepción excede lo pendiente: pedido %s, recibido %s, pendiente %s",
				item.QuantityOrdered, item.QuantityReceived, item.RemainingQuantity()))
		}

		// (a) stock
		unitCost := item.UnitCost
		if _, err := t.ledger.ApplyInTx(ctx, repos, inventory.MovementInput{
			ProductID:     item.ProductID,
			Direction:     entity.MovementIn,
			Quantity:      in.Quantity,
			ReferenceType: entity.ReferencePurchaseReceipt,
			ReferenceID:   po.ID,
			Notes:         po.PONumber,
			Actor:         in.Actor,
			UnitCost:      &unitCost,
			At:            receivedAt,
		}); err != nil {
			return err
		}

		// (b) línea
		item.QuantityReceived = item.QuantityReceived.Add(in.Quantity)
		item.ReceivedDate = &receivedAt
		item.ReceivedBy = in.Actor
		item.UpdatedAt = receivedAt
		if err := repos.PurchaseOrders.UpdateItemReceipt(ctx, item); err != nil {
			return fmt.Errorf("update purchase order item: %w", err)
		}

		// (c) completitud
		items, err := repos.PurchaseOrders.ListItems(ctx, po.ID)
		if err != nil {
			return fmt.Errorf("list purchase order items: %w", err)
		}
		if entity.AllItemsReceived(items) {
			if err := repos.PurchaseOrders.MarkReceived(ctx, po.ID, receivedAt); err != nil {
				return fmt.Errorf("mark purchase order received: %w", err)
			}
			po.Status = entity.PurchaseOrderReceived
			po.ActualDeliveryDate = &receivedAt
			po.UpdatedAt = receivedAt
			res.Completed = true
		}
		res.Item = item
		res.PurchaseOrder = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := t.log.Info().
		Str("purchase_order_id", res.PurchaseOrder.ID).
		Str("item_id", res.Item.ID).
		Str("quantity", in.Quantity.String()).
		Str("quantity_received", res.Item.QuantityReceived.String()).
		Str("actor", in.Actor)
	if res.Completed {
		ev.Msg("recepción registrada; orden de compra completa")
	} else {
		ev.Msg("recepción parcial registrada")
	}
	return &res, nil
}
