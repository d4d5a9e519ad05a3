package repository

import (
	"context"
	"time"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// DocumentoRepository define el puerto de persistencia para documentos de
// salida (PECOSA).
type DocumentoRepository interface {
	Create(ctx context.Context, doc *entity.Documento) error
	GetByReferencia(ctx context.Context, referencia string) (*entity.Documento, error)
	// GetByReferenciaForUpdate bloquea la fila del documento: dos anulaciones
	// concurrentes sobre la misma referencia se serializan aquí.
	GetByReferenciaForUpdate(ctx context.Context, referencia string) (*entity.Documento, error)
	// Anular cambia el estado a ANULADA registrando justificación y autor.
	Anular(ctx context.Context, referencia, justificacion, usuario string, cuando time.Time) error
	ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Documento, error)
}

// SecuenciaRepository reserva números correlativos de documento por programa
// y año. Siguiente debe ser un fetch-and-increment atómico en el almacén:
// nunca leer el último valor y escribir último+1 por separado.
type SecuenciaRepository interface {
	Siguiente(ctx context.Context, serie, programa string, anio int) (int64, error)
}
