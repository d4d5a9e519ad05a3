package repository

import (
	"context"
	"time"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// MovimientoRepository define el puerto de persistencia para el kardex.
// Solo hay Create y lecturas: los movimientos son inmutables y no existe
// borrado; toda corrección es un movimiento compensatorio.
type MovimientoRepository interface {
	Create(ctx context.Context, movimiento *entity.Movimiento) error
	GetByID(ctx context.Context, id string) (*entity.Movimiento, error)
	ListByReferencia(ctx context.Context, referencia string) ([]*entity.Movimiento, error)
	ListByProducto(ctx context.Context, productoID string, desde, hasta *time.Time, limit, offset int) ([]*entity.Movimiento, error)
	ListByPrograma(ctx context.Context, programa string, desde, hasta *time.Time, limit, offset int) ([]*entity.Movimiento, error)
}
