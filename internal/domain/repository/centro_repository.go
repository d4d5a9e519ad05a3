package repository

import (
	"context"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// CentroRepository define el puerto de persistencia para centros de
// distribución.
type CentroRepository interface {
	Create(ctx context.Context, c *entity.Centro) error
	GetByID(ctx context.Context, id string) (*entity.Centro, error)
	Update(ctx context.Context, c *entity.Centro) error
	ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Centro, error)
}
