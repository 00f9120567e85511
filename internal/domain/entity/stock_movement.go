package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento en el libro de stock.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// Tipos de referencia que originan un movimiento.
const (
	ReferencePurchaseReceipt  = "purchase_order"
	ReferenceSalesOrder       = "sales_order"
	ReferenceSalesOrderCancel = "sales_order_cancel"
	ReferenceAdjustment       = "adjustment"
	ReferenceOpeningBalance   = "opening_balance"
)

// StockMovement es una entrada inmutable del libro de stock. Quantity siempre es positiva;
// el signo lo da Direction.
type StockMovement struct {
	ID            string
	ProductID     string
	Direction     string // in | out
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal // solo entradas valorizadas (recepción de compras)
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// IsValidDirection indica si d es una dirección conocida.
func IsValidDirection(d string) bool {
	return d == MovementIn || d == MovementOut
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (m StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
