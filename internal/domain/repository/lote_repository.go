package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// LoteRepository define el puerto de persistencia para lotes.
// Los lotes nunca se eliminan: un lote agotado queda con cantidad 0.
type LoteRepository interface {
	Create(ctx context.Context, lote *entity.Lote) error
	GetByID(ctx context.Context, id string) (*entity.Lote, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lote, error)
	// ListDisponiblesForUpdate devuelve los lotes con existencias del producto,
	// bloqueados para descarga dentro de la transacción.
	ListDisponiblesForUpdate(ctx context.Context, productoID string) ([]*entity.Lote, error)
	// GetEquivalente busca un lote del producto con el mismo código y
	// vencimiento (usado por traslados para completar un lote existente).
	GetEquivalente(ctx context.Context, productoID, codigo string, vencimiento *time.Time) (*entity.Lote, error)
	UpdateCantidad(ctx context.Context, id string, cantidad decimal.Decimal) error
	// Recargar suma cantidad adicional a un lote existente (traslado que
	// completa un lote equivalente): incrementa inicial y actual por igual.
	Recargar(ctx context.Context, id string, adicional decimal.Decimal) error
	ListByProducto(ctx context.Context, productoID string) ([]*entity.Lote, error)
}
