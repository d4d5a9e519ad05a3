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

var _ repository.BeneficiarioRepository = (*BeneficiarioRepo)(nil)

const beneficiarioColumnas = `id, programa, dni, nombres, apellidos, centro_id, activo, created_at, updated_at`

// BeneficiarioRepo implementación de BeneficiarioRepository sobre PostgreSQL.
type BeneficiarioRepo struct {
	q Querier
}

// NewBeneficiarioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBeneficiarioRepository(q Querier) *BeneficiarioRepo {
	return &BeneficiarioRepo{q: q}
}

// Create registra un beneficiario en el padrón del programa.
func (r *BeneficiarioRepo) Create(ctx context.Context, b *entity.Beneficiario) error {
	query := `
		INSERT INTO beneficiarios (id, programa, dni, nombres, apellidos, centro_id, activo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.Programa, b.DNI, b.Nombres, b.Apellidos,
		nullIfEmpty(b.CentroID), b.Activo, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert beneficiario: %w", err)
	}
	return nil
}

// GetByID obtiene un beneficiario por ID.
func (r *BeneficiarioRepo) GetByID(ctx context.Context, id string) (*entity.Beneficiario, error) {
	query := `SELECT ` + beneficiarioColumnas + ` FROM beneficiarios WHERE id = $1`
	return scanBeneficiario(r.q.QueryRow(ctx, query, id), "get beneficiario")
}

// GetByDNI obtiene un beneficiario por programa y DNI.
func (r *BeneficiarioRepo) GetByDNI(ctx context.Context, programa, dni string) (*entity.Beneficiario, error) {
	query := `SELECT ` + beneficiarioColumnas + ` FROM beneficiarios WHERE programa = $1 AND dni = $2`
	return scanBeneficiario(r.q.QueryRow(ctx, query, programa, dni), "get beneficiario por dni")
}

// Update actualiza los datos del beneficiario.
func (r *BeneficiarioRepo) Update(ctx context.Context, b *entity.Beneficiario) error {
	query := `
		UPDATE beneficiarios
		SET nombres = $2, apellidos = $3, centro_id = $4, activo = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, b.ID, b.Nombres, b.Apellidos, nullIfEmpty(b.CentroID), b.Activo)
	if err != nil {
		return fmt.Errorf("update beneficiario: %w", err)
	}
	return nil
}

// ListByPrograma lista el padrón de un programa.
func (r *BeneficiarioRepo) ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Beneficiario, error) {
	query := `
		SELECT ` + beneficiarioColumnas + `
		FROM beneficiarios WHERE programa = $1
		ORDER BY apellidos, nombres LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, programa, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list beneficiarios: %w", err)
	}
	defer rows.Close()
	var list []*entity.Beneficiario
	for rows.Next() {
		b, err := scanBeneficiarioRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan beneficiario: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBeneficiario(row pgx.Row, op string) (*entity.Beneficiario, error) {
	b, err := scanBeneficiarioRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func scanBeneficiarioRow(row pgx.Row) (*entity.Beneficiario, error) {
	var b entity.Beneficiario
	var centroID *string
	err := row.Scan(&b.ID, &b.Programa, &b.DNI, &b.Nombres, &b.Apellidos,
		&centroID, &b.Activo, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.CentroID = deref(centroID)
	return &b, nil
}
