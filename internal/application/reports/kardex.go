package reports

import (
	"context"
	"time"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

// KardexExporter renderiza un kardex a un archivo descargable (xlsx).
type KardexExporter interface {
	Exportar(producto *entity.Producto, movimientos []*entity.Movimiento) ([]byte, error)
}

// ResumenStock stock de un producto con el detalle de sus lotes vivos.
type ResumenStock struct {
	Producto *entity.Producto
	Lotes    []*entity.Lote
}

// KardexUseCase agrega lecturas del ledger para pantallas y reportes. Es
// estrictamente solo-lectura: ninguna ruta de reporte muta el kardex.
type KardexUseCase struct {
	productos   repository.ProductoRepository
	lotes       repository.LoteRepository
	movimientos repository.MovimientoRepository
	exporter    KardexExporter
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(
	productos repository.ProductoRepository,
	lotes repository.LoteRepository,
	movimientos repository.MovimientoRepository,
	exporter KardexExporter,
) *KardexUseCase {
	return &KardexUseCase{productos: productos, lotes: lotes, movimientos: movimientos, exporter: exporter}
}

// Kardex lista los movimientos de un producto en un rango de fechas.
func (uc *KardexUseCase) Kardex(ctx context.Context, productoID string, desde, hasta *time.Time, limit, offset int) ([]*entity.Movimiento, error) {
	producto, err := uc.productos.GetByID(ctx, productoID)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movimientos.ListByProducto(ctx, productoID, desde, hasta, limit, offset)
}

// StockPrograma devuelve el stock vivo del programa, producto por producto
// con sus lotes.
func (uc *KardexUseCase) StockPrograma(ctx context.Context, programa string, limit, offset int) ([]ResumenStock, error) {
	productos, err := uc.productos.ListByPrograma(ctx, programa, limit, offset)
	if err != nil {
		return nil, err
	}
	resumen := make([]ResumenStock, 0, len(productos))
	for _, producto := range productos {
		lotes, err := uc.lotes.ListByProducto(ctx, producto.ID)
		if err != nil {
			return nil, err
		}
		resumen = append(resumen, ResumenStock{Producto: producto, Lotes: lotes})
	}
	return resumen, nil
}

// ExportarKardex genera el kardex del producto como archivo descargable.
func (uc *KardexUseCase) ExportarKardex(ctx context.Context, productoID string, desde, hasta *time.Time) ([]byte, error) {
	producto, err := uc.productos.GetByID(ctx, productoID)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movimientos.ListByProducto(ctx, productoID, desde, hasta, 10_000, 0)
	if err != nil {
		return nil, err
	}
	return uc.exporter.Exportar(producto, movs)
}
