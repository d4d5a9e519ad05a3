package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

const productoColumnas = `id, programa, nombre, unidad, stock_actual, costo_promedio, created_at, updated_at`

// ProductoRepo implementación de ProductoRepository sobre PostgreSQL (usable con pool o tx).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

// Create persiste un nuevo producto. Stock y costo promedio inician en 0.
func (r *ProductoRepo) Create(ctx context.Context, p *entity.Producto) error {
	query := `
		INSERT INTO productos (id, programa, nombre, unidad, stock_actual, costo_promedio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Programa, p.Nombre, p.Unidad, p.StockActual, p.CostoPromedio, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductoRepo) GetByID(ctx context.Context, id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumnas + ` FROM productos WHERE id = $1`
	return scanProducto(r.q.QueryRow(ctx, query, id), "get producto")
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductoRepo) GetForUpdate(ctx context.Context, id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumnas + ` FROM productos WHERE id = $1 FOR UPDATE`
	return scanProducto(r.q.QueryRow(ctx, query, id), "get producto for update")
}

// GetEquivalente busca en otro programa un producto con el mismo nombre y unidad.
func (r *ProductoRepo) GetEquivalente(ctx context.Context, programa, nombre, unidad string) (*entity.Producto, error) {
	query := `
		SELECT ` + productoColumnas + `
		FROM productos WHERE programa = $1 AND nombre = $2 AND unidad = $3`
	return scanProducto(r.q.QueryRow(ctx, query, programa, nombre, unidad), "get producto equivalente")
}

// Update actualiza los datos administrativos del producto (no los derivados).
func (r *ProductoRepo) Update(ctx context.Context, p *entity.Producto) error {
	query := `
		UPDATE productos SET nombre = $2, unidad = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Nombre, p.Unidad)
	if err != nil {
		return fmt.Errorf("update producto: %w", err)
	}
	return nil
}

// UpdateDerivados escribe los valores derivados del kardex (solo casos de uso
// del ledger, dentro de transacción).
func (r *ProductoRepo) UpdateDerivados(ctx context.Context, id string, stock, costoPromedio decimal.Decimal) error {
	query := `
		UPDATE productos SET stock_actual = $2, costo_promedio = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, stock, costoPromedio)
	if err != nil {
		return fmt.Errorf("update derivados producto: %w", err)
	}
	return nil
}

// ListByPrograma lista los productos de un programa.
func (r *ProductoRepo) ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Producto, error) {
	query := `
		SELECT ` + productoColumnas + `
		FROM productos WHERE programa = $1
		ORDER BY nombre LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, programa, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(&p.ID, &p.Programa, &p.Nombre, &p.Unidad,
			&p.StockActual, &p.CostoPromedio, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func scanProducto(row pgx.Row, op string) (*entity.Producto, error) {
	var p entity.Producto
	err := row.Scan(&p.ID, &p.Programa, &p.Nombre, &p.Unidad,
		&p.StockActual, &p.CostoPromedio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
