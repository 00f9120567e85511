package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// PurchaseItemRequest línea solicitada al proveedor.
type PurchaseItemRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered" validate:"gt=0"`
	UnitCost        decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID           string                `json:"supplier_id" validate:"required"`
	Items                []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
	ExpectedDeliveryDate *time.Time            `json:"expected_delivery_date,omitempty"`
	Notes                string                `json:"notes,omitempty" validate:"max=1000"`
}

// ReceiveItemRequest body para POST /api/purchase-orders/items/:itemId/receive.
type ReceiveItemRequest struct {
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	ReceivedDate *time.Time      `json:"received_date,omitempty"`
}

// PurchaseItemResponse línea de la orden de compra.
type PurchaseItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineTotal        decimal.Decimal `json:"line_total"`
	ReceivedDate     *time.Time      `json:"received_date,omitempty"`
	ReceivedBy       string          `json:"received_by,omitempty"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID                   string                 `json:"id"`
	PONumber             string                 `json:"po_number"`
	NumberDegraded       bool                   `json:"number_degraded"`
	SupplierID           string                 `json:"supplier_id"`
	Status               string                 `json:"status"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	TaxAmount            decimal.Decimal        `json:"tax_amount"`
	TotalAmount          decimal.Decimal        `json:"total_amount"`
	Notes                string                 `json:"notes,omitempty"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time             `json:"actual_delivery_date,omitempty"`
	CreatedBy            string                 `json:"created_by,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	Items                []PurchaseItemResponse `json:"items,omitempty"`
}

// ReceiptResponse resultado de una recepción.
type ReceiptResponse struct {
	Item          PurchaseItemResponse   `json:"item"`
	PurchaseOrder *PurchaseOrderResponse `json:"purchase_order"`
	Completed     bool                   `json:"completed"`
}

// NewPurchaseItemResponse mapea una línea.
func NewPurchaseItemResponse(it *entity.PurchaseOrderItem) PurchaseItemResponse {
	return PurchaseItemResponse{
		ID:               it.ID,
		ProductID:        it.ProductID,
		QuantityOrdered:  it.QuantityOrdered,
		QuantityReceived: it.QuantityReceived,
		UnitCost:         it.UnitCost,
		LineTotal:        it.LineTotal,
		ReceivedDate:     it.ReceivedDate,
		ReceivedBy:       it.ReceivedBy,
	}
}

// NewPurchaseOrderResponse mapea cabecera y líneas (items puede ser nil).
func NewPurchaseOrderResponse(po *entity.PurchaseOrder, items []*entity.PurchaseOrderItem) *PurchaseOrderResponse {
	res := &PurchaseOrderResponse{
		ID:                   po.ID,
		PONumber:             po.PONumber,
		NumberDegraded:       po.NumberDegraded,
		SupplierID:           po.SupplierID,
		Status:               po.Status,
		Subtotal:             po.Subtotal,
		TaxAmount:            po.TaxAmount,
		TotalAmount:          po.TotalAmount,
		Notes:                po.Notes,
		ExpectedDeliveryDate: po.ExpectedDeliveryDate,
		ActualDeliveryDate:   po.ActualDeliveryDate,
		CreatedBy:            po.CreatedBy,
		CreatedAt:            po.CreatedAt,
	}
	for _, it := range items {
		res.Items = append(res.Items, NewPurchaseItemResponse(it))
	}
	return res
}
