// Package sqlite persiste la cola de operaciones offline en un archivo local.
// La cola debe sobrevivir reinicios del proceso aun sin conexión al servidor,
// por eso vive en SQLite y no en PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rvaldivia/almacen-pan/internal/application/offline"
)

var _ offline.Store = (*QueueStore)(nil)

// QueueStore implementa offline.Store sobre SQLite en modo WAL.
type QueueStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewQueueStore abre (o crea) la base local y migra el esquema. Usar
// ":memory:" en tests.
func NewQueueStore(dbPath string) (*QueueStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("abrir cola local: %w", err)
	}
	// Un solo escritor: la cola es por sesión.
	db.SetMaxOpenConns(1)

	s := &QueueStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrar cola local: %w", err)
	}
	return s, nil
}

// Close cierra la base local.
func (s *QueueStore) Close() error {
	return s.db.Close()
}

func (s *QueueStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operaciones (
		id TEXT PRIMARY KEY,
		tipo TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at TEXT NOT NULL,
		intentos INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_operaciones_created_at ON operaciones(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append agrega una operación al final de la cola.
func (s *QueueStore) Append(ctx context.Context, op *offline.Operacion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operaciones (id, tipo, payload, created_at, intentos) VALUES (?, ?, ?, ?, ?)`,
		op.ID, op.Tipo, []byte(op.Payload), op.CreatedAt.UTC().Format(time.RFC3339Nano), op.Intentos,
	)
	if err != nil {
		return fmt.Errorf("insert operación: %w", err)
	}
	return nil
}

// List devuelve hasta limit operaciones en orden FIFO de creación.
func (s *QueueStore) List(ctx context.Context, limit int) ([]*offline.Operacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tipo, payload, created_at, intentos FROM operaciones ORDER BY created_at, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list operaciones: %w", err)
	}
	defer rows.Close()

	var ops []*offline.Operacion
	for rows.Next() {
		var op offline.Operacion
		var payload []byte
		var createdAt string
		if err := rows.Scan(&op.ID, &op.Tipo, &payload, &createdAt, &op.Intentos); err != nil {
			return nil, fmt.Errorf("scan operación: %w", err)
		}
		op.Payload = payload
		op.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsear created_at de operación %s: %w", op.ID, err)
		}
		ops = append(ops, &op)
	}
	return ops, rows.Err()
}

// Remove elimina una operación ya sincronizada.
func (s *QueueStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM operaciones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove operación: %w", err)
	}
	return nil
}

// IncrementarIntento suma uno al contador de reintentos de la operación.
func (s *QueueStore) IncrementarIntento(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `UPDATE operaciones SET intentos = intentos + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementar intento: %w", err)
	}
	return nil
}

// Count cuenta las operaciones pendientes.
func (s *QueueStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operaciones`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operaciones: %w", err)
	}
	return n, nil
}
