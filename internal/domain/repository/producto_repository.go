package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// ProductoRepository define el puerto de persistencia para Producto (DIP).
// StockActual y CostoPromedio solo se escriben desde los casos de uso del
// ledger, dentro de una transacción.
type ProductoRepository interface {
	Create(ctx context.Context, producto *entity.Producto) error
	GetByID(ctx context.Context, id string) (*entity.Producto, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Producto, error)
	// GetEquivalente busca en otro programa un producto con el mismo nombre y
	// unidad (usado por traslados entre programas).
	GetEquivalente(ctx context.Context, programa, nombre, unidad string) (*entity.Producto, error)
	Update(ctx context.Context, producto *entity.Producto) error
	// UpdateDerivados escribe los valores derivados del kardex.
	UpdateDerivados(ctx context.Context, id string, stock, costoPromedio decimal.Decimal) error
	ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Producto, error)
}
