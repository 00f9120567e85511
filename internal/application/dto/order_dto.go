package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// CreateOrderItemRequest línea del pedido. discount_percentage acepta fracción [0,1) o porcentaje (1,100]; 1 es ambiguo y se rechaza.
type CreateOrderItemRequest struct {
	ProductID          string          `json:"product_id" validate:"required"`
	Quantity           decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price" validate:"gt=0"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" validate:"gte=0,lte=100"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID     string                   `json:"customer_id" validate:"required"`
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountAmount decimal.Decimal          `json:"discount_amount" validate:"gte=0"`
	ShippingAmount decimal.Decimal          `json:"shipping_amount" validate:"gte=0"`
	Notes          string                   `json:"notes,omitempty" validate:"max=1000"`
}

// TransitionStatusRequest body para POST /api/orders/:id/status.
type TransitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty" validate:"max=1000"`
}

// OrderItemResponse línea del pedido.
type OrderItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

// StatusEntryResponse entrada del historial de estados.
type StatusEntryResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse pedido con líneas e historial.
type OrderResponse struct {
	ID             string                `json:"id"`
	OrderNumber    string                `json:"order_number"`
	NumberDegraded bool                  `json:"number_degraded"`
	CustomerID     string                `json:"customer_id"`
	Status         string                `json:"status"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	ShippingAmount decimal.Decimal       `json:"shipping_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	Notes          string                `json:"notes,omitempty"`
	CreatedBy      string                `json:"created_by,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Items          []OrderItemResponse   `json:"items"`
	History        []StatusEntryResponse `json:"history,omitempty"`
}

// NewStatusEntryResponse mapea una entrada del historial.
func NewStatusEntryResponse(e *entity.OrderStatusEntry) StatusEntryResponse {
	return StatusEntryResponse{
		ID:        e.ID,
		Status:    string(e.Status),
		Notes:     e.Notes,
		ChangedBy: e.ChangedBy,
		CreatedAt: e.CreatedAt,
	}
}

// NewStatusHistoryResponse mapea el historial completo.
func NewStatusHistoryResponse(history []*entity.OrderStatusEntry) []StatusEntryResponse {
	out := make([]StatusEntryResponse, len(history))
	for i, e := range history {
		out[i] = NewStatusEntryResponse(e)
	}
	return out
}

// NewOrderResponse mapea cabecera, líneas e historial.
func NewOrderResponse(o *entity.Order, items []*entity.OrderItem, history []*entity.OrderStatusEntry) *OrderResponse {
	res := &OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		NumberDegraded: o.NumberDegraded,
		CustomerID:     o.CustomerID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		TaxAmount:      o.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		ShippingAmount: o.ShippingAmount,
		TotalAmount:    o.TotalAmount,
		Notes:          o.Notes,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]OrderItemResponse, len(items)),
		History:        NewStatusHistoryResponse(history),
	}
	for i, it := range items {
		res.Items[i] = OrderItemResponse{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			TotalPrice:         it.TotalPrice,
		}
	}
	return res
}
