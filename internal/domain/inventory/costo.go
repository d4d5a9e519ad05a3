package inventory

import "github.com/shopspring/decimal"

// CostoPromedio implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantIngreso * CostoIngreso)) / (StockActual + CantIngreso)
//
// Solo los ingresos recalculan el costo; las salidas descargan lotes sin
// tocarlo. El caso degenerado (stock total cero) devuelve 0.
func CostoPromedio(stockActual, costoActual, cantIngreso, costoIngreso decimal.Decimal) decimal.Decimal {
	total := stockActual.Add(cantIngreso)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	valor := stockActual.Mul(costoActual).Add(cantIngreso.Mul(costoIngreso))
	return valor.Div(total)
}
