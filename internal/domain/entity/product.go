package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// StockQuantity es el saldo en mano y solo lo modifica el libro de movimientos;
// Cost es promedio ponderado recalculado en cada entrada con costo.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Price         decimal.Decimal // precio de venta
	Cost          decimal.Decimal // costo promedio ponderado (inicia en 0)
	StockQuantity decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
