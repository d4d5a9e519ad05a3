package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.PrestamoRepository = (*PrestamoRepo)(nil)

const prestamoColumnas = `id, referencia, programa_origen, programa_destino, producto_origen_id, lote_origen_id, lote_destino_id, movimiento_ingreso_id, cantidad, estado, created_at, devuelto_at`

// PrestamoRepo implementación de PrestamoRepository sobre PostgreSQL
// (usable con pool o tx).
type PrestamoRepo struct {
	q Querier
}

// NewPrestamoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPrestamoRepository(q Querier) *PrestamoRepo {
	return &PrestamoRepo{q: q}
}

// Create persiste un préstamo pendiente.
func (r *PrestamoRepo) Create(ctx context.Context, p *entity.Prestamo) error {
	query := `
		INSERT INTO prestamos (id, referencia, programa_origen, programa_destino, producto_origen_id, lote_origen_id, lote_destino_id, movimiento_ingreso_id, cantidad, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Referencia, p.ProgramaOrigen, p.ProgramaDestino,
		p.ProductoOrigenID, p.LoteOrigenID, p.LoteDestinoID, p.MovimientoIngresoID,
		p.Cantidad, p.Estado, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prestamo: %w", err)
	}
	return nil
}

// GetByID obtiene un préstamo por ID.
func (r *PrestamoRepo) GetByID(ctx context.Context, id string) (*entity.Prestamo, error) {
	query := `SELECT ` + prestamoColumnas + ` FROM prestamos WHERE id = $1`
	return scanPrestamo(r.q.QueryRow(ctx, query, id), "get prestamo")
}

// GetByMovimientoIngreso resuelve el préstamo desde su movimiento IN en el
// destino. Devuelve nil, nil para movimientos históricos sin registro.
func (r *PrestamoRepo) GetByMovimientoIngreso(ctx context.Context, movimientoID string) (*entity.Prestamo, error) {
	query := `SELECT ` + prestamoColumnas + ` FROM prestamos WHERE movimiento_ingreso_id = $1 FOR UPDATE`
	return scanPrestamo(r.q.QueryRow(ctx, query, movimientoID), "get prestamo por movimiento")
}

// MarcarDevuelto cierra el préstamo.
func (r *PrestamoRepo) MarcarDevuelto(ctx context.Context, id string, cuando time.Time) error {
	query := `UPDATE prestamos SET estado = $2, devuelto_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, entity.PrestamoDevuelto, cuando)
	if err != nil {
		return fmt.Errorf("marcar prestamo devuelto: %w", err)
	}
	return nil
}

// ListPendientes lista los préstamos sin devolver donde el programa participa
// como prestamista o prestatario.
func (r *PrestamoRepo) ListPendientes(ctx context.Context, programa string) ([]*entity.Prestamo, error) {
	query := `
		SELECT ` + prestamoColumnas + `
		FROM prestamos
		WHERE estado = $1 AND (programa_origen = $2 OR programa_destino = $2)
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, entity.PrestamoPendiente, programa)
	if err != nil {
		return nil, fmt.Errorf("list prestamos pendientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Prestamo
	for rows.Next() {
		p, err := scanPrestamoRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prestamo: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPrestamo(row pgx.Row, op string) (*entity.Prestamo, error) {
	p, err := scanPrestamoRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPrestamoRow(row pgx.Row) (*entity.Prestamo, error) {
	var p entity.Prestamo
	err := row.Scan(&p.ID, &p.Referencia, &p.ProgramaOrigen, &p.ProgramaDestino,
		&p.ProductoOrigenID, &p.LoteOrigenID, &p.LoteDestinoID, &p.MovimientoIngresoID,
		&p.Cantidad, &p.Estado, &p.CreatedAt, &p.DevueltoAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
