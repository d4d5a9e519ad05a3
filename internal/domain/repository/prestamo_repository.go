package repository

import (
	"context"
	"time"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// PrestamoRepository define el puerto de persistencia para préstamos entre
// programas. Es la fuente de verdad de las devoluciones (el texto en la
// observación del movimiento es solo compatibilidad con registros antiguos).
type PrestamoRepository interface {
	Create(ctx context.Context, prestamo *entity.Prestamo) error
	GetByID(ctx context.Context, id string) (*entity.Prestamo, error)
	// GetByMovimientoIngreso resuelve el préstamo desde el movimiento IN que
	// lo originó en el programa destino. Devuelve nil, nil si no existe
	// (registro histórico anterior a la tabla de préstamos).
	GetByMovimientoIngreso(ctx context.Context, movimientoID string) (*entity.Prestamo, error)
	MarcarDevuelto(ctx context.Context, id string, cuando time.Time) error
	ListPendientes(ctx context.Context, programa string) ([]*entity.Prestamo, error)
}
