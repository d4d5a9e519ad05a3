package ledger

import (
	"context"

	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Productos   repository.ProductoRepository
	Lotes       repository.LoteRepository
	Movimientos repository.MovimientoRepository
	Documentos  repository.DocumentoRepository
	Prestamos   repository.PrestamoRepository
	Secuencias  repository.SecuenciaRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que cada operación del ledger
// (emisión, anulación, traslado, devolución) sea atómica de extremo a extremo.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// AuditSink recibe eventos de auditoría fire-and-forget. Colaborador externo:
// un fallo al registrar nunca afecta la operación del ledger.
type AuditSink interface {
	Registrar(ctx context.Context, actor, accion string, detalle map[string]any)
}
