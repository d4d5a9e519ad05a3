package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

var _ repository.DocumentoRepository = (*DocumentoRepo)(nil)
var _ repository.SecuenciaRepository = (*SecuenciaRepo)(nil)

const documentoColumnas = `referencia, programa, estado, justificacion, created_at, created_by, anulada_at, anulada_by`

// DocumentoRepo implementación de DocumentoRepository sobre PostgreSQL
// (usable con pool o tx).
type DocumentoRepo struct {
	q Querier
}

// NewDocumentoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentoRepository(q Querier) *DocumentoRepo {
	return &DocumentoRepo{q: q}
}

// Create persiste un documento recién emitido.
func (r *DocumentoRepo) Create(ctx context.Context, d *entity.Documento) error {
	query := `
		INSERT INTO documentos (referencia, programa, estado, justificacion, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		d.Referencia, d.Programa, d.Estado, d.Justificacion, d.CreatedAt, d.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert documento: %w", err)
	}
	return nil
}

// GetByReferencia obtiene un documento por su referencia.
func (r *DocumentoRepo) GetByReferencia(ctx context.Context, referencia string) (*entity.Documento, error) {
	query := `SELECT ` + documentoColumnas + ` FROM documentos WHERE referencia = $1`
	return scanDocumento(r.q.QueryRow(ctx, query, referencia), "get documento")
}

// GetByReferenciaForUpdate obtiene el documento y bloquea la fila: serializa
// el check-and-flip de la anulación frente a anulaciones concurrentes.
func (r *DocumentoRepo) GetByReferenciaForUpdate(ctx context.Context, referencia string) (*entity.Documento, error) {
	query := `SELECT ` + documentoColumnas + ` FROM documentos WHERE referencia = $1 FOR UPDATE`
	return scanDocumento(r.q.QueryRow(ctx, query, referencia), "get documento for update")
}

// Anular pasa el documento a ANULADA con su justificación.
func (r *DocumentoRepo) Anular(ctx context.Context, referencia, justificacion, usuario string, cuando time.Time) error {
	query := `
		UPDATE documentos
		SET estado = $2, justificacion = $3, anulada_by = $4, anulada_at = $5
		WHERE referencia = $1 AND estado = $6`
	tag, err := r.q.Exec(ctx, query,
		referencia, entity.DocumentoAnulada, justificacion, usuario, cuando, entity.DocumentoEmitida,
	)
	if err != nil {
		return fmt.Errorf("anular documento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyAnnulled
	}
	return nil
}

// ListByPrograma lista los documentos de un programa, más recientes primero.
func (r *DocumentoRepo) ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Documento, error) {
	query := `
		SELECT ` + documentoColumnas + `
		FROM documentos WHERE programa = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, programa, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documentos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Documento
	for rows.Next() {
		d, err := scanDocumentoRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan documento: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func scanDocumento(row pgx.Row, op string) (*entity.Documento, error) {
	d, err := scanDocumentoRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func scanDocumentoRow(row pgx.Row) (*entity.Documento, error) {
	var d entity.Documento
	var anuladaBy *string
	err := row.Scan(&d.Referencia, &d.Programa, &d.Estado, &d.Justificacion,
		&d.CreatedAt, &d.CreatedBy, &d.AnuladaAt, &anuladaBy)
	if err != nil {
		return nil, err
	}
	d.AnuladaBy = deref(anuladaBy)
	return &d, nil
}

// SecuenciaRepo reserva correlativos de documento por serie+programa+año con
// un fetch-and-increment atómico en una sola sentencia: nunca se lee el
// último valor para escribir último+1 por separado.
type SecuenciaRepo struct {
	q Querier
}

// NewSecuenciaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSecuenciaRepository(q Querier) *SecuenciaRepo {
	return &SecuenciaRepo{q: q}
}

// Siguiente reserva y devuelve el siguiente número de la serie.
func (r *SecuenciaRepo) Siguiente(ctx context.Context, serie, programa string, anio int) (int64, error) {
	query := `
		INSERT INTO secuencias_documento (serie, programa, anio, siguiente)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (serie, programa, anio)
		DO UPDATE SET siguiente = secuencias_documento.siguiente + 1
		RETURNING siguiente`
	var n int64
	if err := r.q.QueryRow(ctx, query, serie, programa, anio).Scan(&n); err != nil {
		return 0, fmt.Errorf("siguiente correlativo %s/%s/%d: %w", serie, programa, anio, err)
	}
	return n, nil
}
