package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote es una partida discreta de un producto recibida junta, con su propio
// vencimiento y costo unitario. Un lote agotado nunca se elimina: queda con
// CantidadActual = 0 como registro de auditoría.
// Invariante: 0 <= CantidadActual <= CantidadInicial.
type Lote struct {
	ID              string
	ProductoID      string
	Programa        string
	Codigo          string     // etiqueta libre del lote (lo que dice la caja)
	Vencimiento     *time.Time // nil = no vence
	CantidadInicial decimal.Decimal
	CantidadActual  decimal.Decimal
	CostoUnitario   decimal.Decimal
	Proveedor       string
	DocReferencia   string // guía de remisión, orden de compra, etc.
	CreatedAt       time.Time
}

// Agotado indica si el lote ya no tiene existencias.
func (l *Lote) Agotado() bool {
	return !l.CantidadActual.IsPositive()
}
