package offline

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tipos de operación encolable.
const (
	OpRegistrarIngreso = "REGISTRAR_INGRESO"
	OpEmitirDocumento  = "EMITIR_DOCUMENTO"
	OpAnularDocumento  = "ANULAR_DOCUMENTO"
	OpTrasladar        = "TRASLADAR"
	OpDevolverPrestamo = "DEVOLVER_PRESTAMO"
)

// Manejador reaplica una operación deserializando su payload.
type Manejador func(ctx context.Context, payload json.RawMessage) error

// Despachador implementa Ejecutor enrutando cada operación encolada al caso
// de uso que la originó. El registro de manejadores lo hace el arranque de la
// aplicación.
type Despachador struct {
	manejadores map[string]Manejador
}

// NewDespachador construye un despachador vacío.
func NewDespachador() *Despachador {
	return &Despachador{manejadores: map[string]Manejador{}}
}

// Registrar asocia un tipo de operación con su manejador.
func (d *Despachador) Registrar(tipo string, m Manejador) {
	d.manejadores[tipo] = m
}

// Ejecutar implementa Ejecutor.
func (d *Despachador) Ejecutar(ctx context.Context, op *Operacion) error {
	m, ok := d.manejadores[op.Tipo]
	if !ok {
		return fmt.Errorf("operación encolada de tipo desconocido: %s", op.Tipo)
	}
	return m(ctx, op.Payload)
}
