package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

const movimientoColumnas = `id, tipo, programa, producto_id, lote_id, cantidad, costo_unitario, referencia, destino_tipo, destino_centro_id, destino_beneficiario_id, destino_texto, observacion, created_at, created_by`

// MovimientoRepo implementación de MovimientoRepository sobre PostgreSQL
// (usable con pool o tx). El kardex es solo-inserción: no hay UPDATE ni
// DELETE sobre movimientos.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Create persiste un asiento del kardex.
func (r *MovimientoRepo) Create(ctx context.Context, m *entity.Movimiento) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos (id, tipo, programa, producto_id, lote_id, cantidad, costo_unitario, referencia, destino_tipo, destino_centro_id, destino_beneficiario_id, destino_texto, observacion, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Tipo, m.Programa, m.ProductoID, nullIfEmpty(m.LoteID),
		m.Cantidad, m.CostoUnit, nullIfEmpty(m.Referencia),
		m.Destino.Tipo, nullIfEmpty(m.Destino.CentroID), nullIfEmpty(m.Destino.BeneficiarioID), m.Destino.Texto,
		m.Observacion, m.CreatedAt, nullIfEmpty(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovimientoRepo) GetByID(ctx context.Context, id string) (*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumnas + ` FROM movimientos WHERE id = $1`
	m, err := scanMovimiento(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimiento: %w", err)
	}
	return m, nil
}

// ListByReferencia lista los movimientos de un documento o traslado, en orden
// de creación.
func (r *MovimientoRepo) ListByReferencia(ctx context.Context, referencia string) ([]*entity.Movimiento, error) {
	query := `
		SELECT ` + movimientoColumnas + `
		FROM movimientos WHERE referencia = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, referencia)
	if err != nil {
		return nil, fmt.Errorf("list movimientos por referencia: %w", err)
	}
	defer rows.Close()
	return collectMovimientos(rows)
}

// ListByProducto lista el kardex de un producto en un rango de fechas.
func (r *MovimientoRepo) ListByProducto(ctx context.Context, productoID string, desde, hasta *time.Time, limit, offset int) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumnas + ` FROM movimientos WHERE producto_id = $1`
	args := []any{productoID}
	query, args = conRangoDeFechas(query, args, desde, hasta)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos por producto: %w", err)
	}
	defer rows.Close()
	return collectMovimientos(rows)
}

// ListByPrograma lista los movimientos de un programa en un rango de fechas.
func (r *MovimientoRepo) ListByPrograma(ctx context.Context, programa string, desde, hasta *time.Time, limit, offset int) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumnas + ` FROM movimientos WHERE programa = $1`
	args := []any{programa}
	query, args = conRangoDeFechas(query, args, desde, hasta)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos por programa: %w", err)
	}
	defer rows.Close()
	return collectMovimientos(rows)
}

func conRangoDeFechas(query string, args []any, desde, hasta *time.Time) (string, []any) {
	if desde != nil {
		args = append(args, *desde)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if hasta != nil {
		args = append(args, *hasta)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	return query, args
}

func scanMovimiento(row pgx.Row) (*entity.Movimiento, error) {
	var m entity.Movimiento
	var loteID, referencia, centroID, beneficiarioID, createdBy *string
	err := row.Scan(&m.ID, &m.Tipo, &m.Programa, &m.ProductoID, &loteID,
		&m.Cantidad, &m.CostoUnit, &referencia,
		&m.Destino.Tipo, &centroID, &beneficiarioID, &m.Destino.Texto,
		&m.Observacion, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	m.LoteID = deref(loteID)
	m.Referencia = deref(referencia)
	m.Destino.CentroID = deref(centroID)
	m.Destino.BeneficiarioID = deref(beneficiarioID)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func collectMovimientos(rows pgx.Rows) ([]*entity.Movimiento, error) {
	var list []*entity.Movimiento
	for rows.Next() {
		m, err := scanMovimiento(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
