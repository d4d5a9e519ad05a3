package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

const loteColumnas = `id, producto_id, programa, codigo, vencimiento, cantidad_inicial, cantidad_actual, costo_unitario, proveedor, doc_referencia, created_at`

// LoteRepo implementación de LoteRepository sobre PostgreSQL (usable con pool o tx).
// No existe Delete: los lotes agotados quedan en cero como auditoría.
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LoteRepo) Create(ctx context.Context, l *entity.Lote) error {
	query := `
		INSERT INTO lotes (id, producto_id, programa, codigo, vencimiento, cantidad_inicial, cantidad_actual, costo_unitario, proveedor, doc_referencia, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ProductoID, l.Programa, l.Codigo, l.Vencimiento,
		l.CantidadInicial, l.CantidadActual, l.CostoUnitario,
		l.Proveedor, l.DocReferencia, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lote: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LoteRepo) GetByID(ctx context.Context, id string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumnas + ` FROM lotes WHERE id = $1`
	return scanLote(r.q.QueryRow(ctx, query, id), "get lote")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumnas + ` FROM lotes WHERE id = $1 FOR UPDATE`
	return scanLote(r.q.QueryRow(ctx, query, id), "get lote for update")
}

// ListDisponiblesForUpdate devuelve los lotes con existencias del producto,
// bloqueados para la descarga. El orden FEFO definitivo lo decide el
// planificador de dominio; el ORDER BY fijo evita interbloqueos entre
// transacciones que bloquean los mismos lotes.
func (r *LoteRepo) ListDisponiblesForUpdate(ctx context.Context, productoID string) ([]*entity.Lote, error) {
	query := `
		SELECT ` + loteColumnas + `
		FROM lotes
		WHERE producto_id = $1 AND cantidad_actual > 0
		ORDER BY created_at, id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productoID)
	if err != nil {
		return nil, fmt.Errorf("list lotes disponibles: %w", err)
	}
	defer rows.Close()
	return collectLotes(rows)
}

// GetEquivalente busca un lote del producto con el mismo código y vencimiento.
func (r *LoteRepo) GetEquivalente(ctx context.Context, productoID, codigo string, vencimiento *time.Time) (*entity.Lote, error) {
	query := `
		SELECT ` + loteColumnas + `
		FROM lotes
		WHERE producto_id = $1 AND codigo = $2 AND vencimiento IS NOT DISTINCT FROM $3
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE`
	return scanLote(r.q.QueryRow(ctx, query, productoID, codigo, vencimiento), "get lote equivalente")
}

// UpdateCantidad fija la cantidad actual del lote.
func (r *LoteRepo) UpdateCantidad(ctx context.Context, id string, cantidad decimal.Decimal) error {
	query := `UPDATE lotes SET cantidad_actual = $2 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, cantidad)
	if err != nil {
		return fmt.Errorf("update cantidad lote: %w", err)
	}
	return nil
}

// Recargar suma cantidad adicional al lote (inicial y actual por igual).
func (r *LoteRepo) Recargar(ctx context.Context, id string, adicional decimal.Decimal) error {
	query := `
		UPDATE lotes
		SET cantidad_inicial = cantidad_inicial + $2,
		    cantidad_actual  = cantidad_actual + $2
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, adicional)
	if err != nil {
		return fmt.Errorf("recargar lote: %w", err)
	}
	return nil
}

// ListByProducto lista todos los lotes del producto (incluidos agotados).
func (r *LoteRepo) ListByProducto(ctx context.Context, productoID string) ([]*entity.Lote, error) {
	query := `
		SELECT ` + loteColumnas + `
		FROM lotes WHERE producto_id = $1
		ORDER BY vencimiento NULLS LAST, created_at`
	rows, err := r.q.Query(ctx, query, productoID)
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()
	return collectLotes(rows)
}

func scanLote(row pgx.Row, op string) (*entity.Lote, error) {
	var l entity.Lote
	err := row.Scan(&l.ID, &l.ProductoID, &l.Programa, &l.Codigo, &l.Vencimiento,
		&l.CantidadInicial, &l.CantidadActual, &l.CostoUnitario,
		&l.Proveedor, &l.DocReferencia, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func collectLotes(rows pgx.Rows) ([]*entity.Lote, error) {
	var list []*entity.Lote
	for rows.Next() {
		var l entity.Lote
		if err := rows.Scan(&l.ID, &l.ProductoID, &l.Programa, &l.Codigo, &l.Vencimiento,
			&l.CantidadInicial, &l.CantidadActual, &l.CostoUnitario,
			&l.Proveedor, &l.DocReferencia, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lote: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
