package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.CentroRepository = (*CentroRepo)(nil)

const centroColumnas = `id, programa, nombre, distrito, responsable, activo, created_at, updated_at`

// CentroRepo implementación de CentroRepository sobre PostgreSQL.
type CentroRepo struct {
	q Querier
}

// NewCentroRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCentroRepository(q Querier) *CentroRepo {
	return &CentroRepo{q: q}
}

// Create registra un centro de distribución.
func (r *CentroRepo) Create(ctx context.Context, c *entity.Centro) error {
	query := `
		INSERT INTO centros (id, programa, nombre, distrito, responsable, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Programa, c.Nombre, c.Distrito, c.Responsable, c.Activo, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert centro: %w", err)
	}
	return nil
}

// GetByID obtiene un centro por ID.
func (r *CentroRepo) GetByID(ctx context.Context, id string) (*entity.Centro, error) {
	query := `SELECT ` + centroColumnas + ` FROM centros WHERE id = $1`
	var c entity.Centro
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Programa, &c.Nombre,
		&c.Distrito, &c.Responsable, &c.Activo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get centro: %w", err)
	}
	return &c, nil
}

// Update actualiza los datos del centro.
func (r *CentroRepo) Update(ctx context.Context, c *entity.Centro) error {
	query := `
		UPDATE centros
		SET nombre = $2, distrito = $3, responsable = $4, activo = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, c.ID, c.Nombre, c.Distrito, c.Responsable, c.Activo)
	if err != nil {
		return fmt.Errorf("update centro: %w", err)
	}
	return nil
}

// ListByPrograma lista los centros de un programa.
func (r *CentroRepo) ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Centro, error) {
	query := `
		SELECT ` + centroColumnas + `
		FROM centros WHERE programa = $1
		ORDER BY nombre LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, programa, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list centros: %w", err)
	}
	defer rows.Close()
	var list []*entity.Centro
	for rows.Next() {
		var c entity.Centro
		if err := rows.Scan(&c.ID, &c.Programa, &c.Nombre, &c.Distrito,
			&c.Responsable, &c.Activo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan centro: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
