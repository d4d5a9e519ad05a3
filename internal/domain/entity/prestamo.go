package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de traslado entre programas.
const (
	TrasladoTransferencia = "TRANSFERENCIA" // definitivo
	TrasladoPrestamo      = "PRESTAMO"      // se espera devolución
)

// Estados de un préstamo entre programas.
const (
	PrestamoPendiente = "PENDIENTE"
	PrestamoDevuelto  = "DEVUELTO"
)

// Prestamo registra un traslado en modo préstamo como entidad explícita.
// Es la fuente de verdad para la devolución; el texto embebido en la
// observación del movimiento de ingreso se mantiene solo por compatibilidad
// con registros históricos y para la impresión.
type Prestamo struct {
	ID                  string
	Referencia          string
	ProgramaOrigen      string
	ProgramaDestino     string
	ProductoOrigenID    string
	LoteOrigenID        string
	LoteDestinoID       string
	MovimientoIngresoID string // movimiento IN en el programa destino
	Cantidad            decimal.Decimal
	Estado              string
	CreatedAt           time.Time
	DevueltoAt          *time.Time
}
