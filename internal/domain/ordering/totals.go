// Package ordering contiene las reglas puras de armado de pedidos: validación del borrador
// y cálculo de totales. No toca almacenamiento.
package ordering

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
)

// TaxRate tasa fija de impuesto sobre el subtotal.
var TaxRate = decimal.NewFromFloat(0.12)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// DraftItem línea cruda recibida del llamador.
type DraftItem struct {
	ProductID          string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// Draft pedido candidato antes de validar.
type Draft struct {
	CustomerID     string
	Items          []DraftItem
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	Notes          string
}

// Totals resultado del cálculo. LineTotals sigue el orden de Draft.Items.
type Totals struct {
	LineTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
}

// NormalizeDiscount lleva un descuento a fracción en [0,1].
// [0,1) se toma como fracción y (1,100] como porcentaje entero (15 -> 0.15).
// Exactamente 1 es ambiguo (¿100 % o 1 %?) y se rechaza.
func NormalizeDiscount(p decimal.Decimal) (decimal.Decimal, bool) {
	switch {
	case p.IsNegative(), p.Equal(one):
		return p, false
	case p.LessThan(one):
		return p, true
	case p.LessThanOrEqual(hundred):
		return p.Div(hundred), true
	}
	return p, false
}

// LineTotal quantity * unitPrice * (1 - discount), redondeado a 2 decimales.
func LineTotal(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Mul(one.Sub(discount)).Round(2)
}

// TaxFor impuesto sobre un subtotal, redondeado a 2 decimales.
func TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// Validate revisa el borrador de forma fail-fast y normaliza los descuentos sobre una copia
// de d.Items: el slice del llamador no se modifica.
// El primer campo inválido se devuelve como *domain.ValidationError.
func Validate(d *Draft) error {
	if strings.TrimSpace(d.CustomerID) == "" {
		return domain.NewValidationError("customer_id", "requerido")
	}
	if len(d.Items) == 0 {
		return domain.NewValidationError("items", "el pedido debe tener al menos una línea")
	}
	d.Items = append([]DraftItem(nil), d.Items...)
	for i := range d.Items {
		it := &d.Items[i]
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.NewValidationError(field("product_id"), "requerido")
		}
		if !it.Quantity.IsPositive() {
			return domain.NewValidationError(field("quantity"), "debe ser mayor que cero")
		}
		if err := domain.CheckScale(field("quantity"), it.Quantity, domain.QuantityScale); err != nil {
			return err
		}
		if !it.UnitPrice.IsPositive() {
			return domain.NewValidationError(field("unit_price"), "debe ser mayor que cero")
		}
		if err := domain.CheckScale(field("unit_price"), it.UnitPrice, domain.MoneyScale); err != nil {
			return err
		}
		if it.DiscountPercentage.Equal(one) {
			return domain.NewValidationError(field("discount_percentage"), "1 es ambiguo: use 0.01 (1 %) o 100 (100 %)")
		}
		disc, ok := NormalizeDiscount(it.DiscountPercentage)
		if !ok {
			return domain.NewValidationError(field("discount_percentage"), "fuera de rango: fracción [0,1) o porcentaje (1,100]")
		}
		if err := domain.CheckScale(field("discount_percentage"), disc, domain.DiscountScale); err != nil {
			return err
		}
		it.DiscountPercentage = disc
	}
	if d.DiscountAmount.IsNegative() {
		return domain.NewValidationError("discount_amount", "no puede ser negativo")
	}
	if err := domain.CheckScale("discount_amount", d.DiscountAmount, domain.MoneyScale); err != nil {
		return err
	}
	if d.ShippingAmount.IsNegative() {
		return domain.NewValidationError("shipping_amount", "no puede ser negativo")
	}
	if err := domain.CheckScale("shipping_amount", d.ShippingAmount, domain.MoneyScale); err != nil {
		return err
	}
	if Compute(*d).Total.IsNegative() {
		return domain.NewValidationError("discount_amount", "el descuento supera el total del pedido")
	}
	return nil
}

// Compute calcula totales de un borrador ya validado.
// total = subtotal - discount + tax + shipping.
func Compute(d Draft) Totals {
	t := Totals{
		LineTotals: make([]decimal.Decimal, len(d.Items)),
		Subtotal:   decimal.Zero,
		Discount:   d.DiscountAmount,
		Shipping:   d.ShippingAmount,
	}
	for i, it := range d.Items {
		lt := LineTotal(it.Quantity, it.UnitPrice, it.DiscountPercentage)
		t.LineTotals[i] = lt
		t.Subtotal = t.Subtotal.Add(lt)
	}
	t.Tax = TaxFor(t.Subtotal)
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax).Add(t.Shipping)
	return t
}
