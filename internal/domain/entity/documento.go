package entity

import "time"

// Estados de un documento de salida (PECOSA). EMITIDA → ANULADA es la única
// transición; ANULADA es terminal.
const (
	DocumentoEmitida = "EMITIDA"
	DocumentoAnulada = "ANULADA"
)

// Documento es el comprobante de salida (PECOSA) que agrupa uno o más
// movimientos OUT emitidos juntos. La referencia es secuencial por
// programa y año.
type Documento struct {
	Referencia    string
	Programa      string
	Estado        string
	Justificacion string // obligatoria al anular
	CreatedAt     time.Time
	CreatedBy     string
	AnuladaAt     *time.Time
	AnuladaBy     string
}

// Anulada indica si el documento fue anulado.
func (d *Documento) Anulada() bool {
	return d.Estado == DocumentoAnulada
}
