package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto representa un alimento o insumo administrado por un programa
// (PVL, PANTBC, PCA...). El programa actúa como clave de partición: el mismo
// alimento en dos programas son dos productos distintos.
//
// StockActual y CostoPromedio son valores derivados del kardex: solo los
// casos de uso del ledger los escriben, nunca los handlers HTTP.
// Invariante: StockActual == Σ CantidadActual de sus lotes.
type Producto struct {
	ID            string
	Programa      string
	Nombre        string
	Unidad        string          // kg, lata, bolsa...
	StockActual   decimal.Decimal
	CostoPromedio decimal.Decimal // costo promedio ponderado, inicia en 0
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
