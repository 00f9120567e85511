package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido de venta.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions tabla de transiciones permitidas. cancelled es alcanzable desde
// cualquier estado no terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

// ParseOrderStatus convierte un string externo al enum; ok=false si no es un estado conocido.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	return st, st.IsValid()
}

// IsValid indica si el estado pertenece al enum.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal delivered y cancelled no admiten más transiciones.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo indica si la tabla permite pasar de s a next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order cabecera de un pedido de venta.
// Invariante: TotalAmount = Subtotal - DiscountAmount + TaxAmount + ShippingAmount.
type Order struct {
	ID             string
	OrderNumber    string
	NumberDegraded bool // número generado por el respaldo local, sin secuencia central
	CustomerID     string
	Status         OrderStatus
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem línea de un pedido.
// Invariante: TotalPrice = Quantity * UnitPrice * (1 - DiscountPercentage), redondeado a 2 decimales.
type OrderItem struct {
	ID                 string
	OrderID            string
	ProductID          string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal // fracción en [0,1]
	TotalPrice         decimal.Decimal
	CreatedAt          time.Time
}

// OrderStatusEntry registro inmutable del historial de estados.
type OrderStatusEntry struct {
	ID        string
	OrderID   string
	Status    OrderStatus
	Notes     string
	ChangedBy string
	CreatedAt time.Time
}
