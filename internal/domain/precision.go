package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimales admitidos por columna NUMERIC. Entradas más finas se rechazan antes de calcular
// totales: el almacenamiento redondearía en silencio y rompería total_price = qty * price.
const (
	MoneyScale    int32 = 2 // precios, montos, totales
	QuantityScale int32 = 4 // cantidades y stock
	CostScale     int32 = 4 // costos unitarios
	DiscountScale int32 = 6 // descuento como fracción
)

// FitsScale indica si v no tiene más de places decimales significativos (10.50 cabe en 2).
func FitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// CheckScale devuelve *ValidationError sobre field si v excede places decimales.
func CheckScale(field string, v decimal.Decimal, places int32) error {
	if FitsScale(v, places) {
		return nil
	}
	return NewValidationError(field, fmt.Sprintf("admite como máximo %d decimales", places))
}
