package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderOrdered   = "ordered"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

// PurchaseOrder orden de compra a proveedor.
type PurchaseOrder struct {
	ID                   string
	PONumber             string
	NumberDegraded       bool
	SupplierID           string
	Status               string
	Subtotal             decimal.Decimal
	TaxAmount            decimal.Decimal
	TotalAmount          decimal.Decimal
	Notes                string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AcceptsReceipts indica si la orden admite recepciones en su estado actual.
func (po *PurchaseOrder) AcceptsReceipts() bool {
	return po.Status == PurchaseOrderPending || po.Status == PurchaseOrderOrdered
}

// PurchaseOrderItem línea de una orden de compra.
// Invariante: 0 <= QuantityReceived <= QuantityOrdered; LineTotal = QuantityOrdered * UnitCost.
type PurchaseOrderItem struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
	LineTotal        decimal.Decimal
	ReceivedDate     *time.Time
	ReceivedBy       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingQuantity cantidad pendiente por recibir.
func (it *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	rem := it.QuantityOrdered.Sub(it.QuantityReceived)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// IsFullyReceived la línea está completa cuando lo recibido alcanza lo pedido.
func (it *PurchaseOrderItem) IsFullyReceived() bool {
	return it.QuantityReceived.GreaterThanOrEqual(it.QuantityOrdered)
}

// CanReceive indica si qty cabe en lo pendiente de la línea.
func (it *PurchaseOrderItem) CanReceive(qty decimal.Decimal) bool {
	return qty.IsPositive() && it.QuantityReceived.Add(qty).LessThanOrEqual(it.QuantityOrdered)
}

// AllItemsReceived true solo si hay líneas y todas están completas.
func AllItemsReceived(items []*PurchaseOrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.IsFullyReceived() {
			return false
		}
	}
	return true
}
