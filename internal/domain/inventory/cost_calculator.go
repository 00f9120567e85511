package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock previo no positivo el costo de la entrada reemplaza al anterior.
func WeightedAverageCost(currentQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if !currentQty.IsPositive() {
		return inCost.Round(4)
	}
	sum := currentQty.Add(inQty)
	if !sum.IsPositive() {
		return decimal.Zero
	}
	num := currentQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum).Round(4)
}
