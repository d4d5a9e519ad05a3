package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rvaldivia/almacen-pan/pkg/logger"
)

// Operacion es una mutación del ledger pendiente de reintento. El payload es
// el request serializado tal como lo habría recibido el caso de uso.
type Operacion struct {
	ID        string
	Tipo      string // EMITIR_DOCUMENTO, REGISTRAR_INGRESO, ...
	Payload   json.RawMessage
	CreatedAt time.Time
	Intentos  int
}

// Store es el puerto del almacén local durable de la cola. Es de un solo
// escritor (una sesión) y debe sobrevivir reinicios del proceso.
type Store interface {
	Append(ctx context.Context, op *Operacion) error
	// List devuelve hasta limit operaciones en orden FIFO de creación.
	List(ctx context.Context, limit int) ([]*Operacion, error)
	Remove(ctx context.Context, id string) error
	IncrementarIntento(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Ejecutor reaplica una operación encolada contra el almacén remoto.
type Ejecutor interface {
	Ejecutar(ctx context.Context, op *Operacion) error
}

// Resultado de una pasada de sincronización.
type Resultado struct {
	Sincronizados int `json:"sincronizados"`
	Pendientes    int `json:"pendientes"`
}

// Cola bufferiza mutaciones del ledger cuando el almacén remoto no responde
// y las reaplica al recuperar conectividad. Entrega al-menos-una-vez: una
// operación solo sale de la cola cuando su reintento termina sin error.
type Cola struct {
	store          Store
	ejecutor       Ejecutor
	esConectividad func(error) bool
	log            *logger.Logger
}

// NewCola construye la cola. esConectividad distingue los errores de red
// (encolables) de los errores lógicos (que se propagan siempre).
func NewCola(store Store, ejecutor Ejecutor, esConectividad func(error) bool, log *logger.Logger) *Cola {
	return &Cola{store: store, ejecutor: ejecutor, esConectividad: esConectividad, log: log}
}

// Interceptar ejecuta fn y, solo si falla por conectividad, serializa y
// encola la operación devolviendo encolado=true sin error. Los errores
// lógicos (stock insuficiente, validación) se propagan sin encolar:
// reintentarlos no puede ayudar.
func (c *Cola) Interceptar(ctx context.Context, tipo string, payload any, fn func() error) (encolado bool, err error) {
	err = fn()
	if err == nil {
		return false, nil
	}
	if !c.esConectividad(err) {
		return false, err
	}
	if _, encErr := c.Encolar(ctx, tipo, payload); encErr != nil {
		// Sin conexión y sin cola: el caller recibe el error original.
		c.log.Error().Err(encErr).Str("tipo", tipo).Msg("no se pudo encolar la operación")
		return false, err
	}
	c.log.Warn().Str("tipo", tipo).Msg("sin conexión: operación encolada para reintento")
	return true, nil
}

// Encolar serializa y persiste una operación en la cola local.
func (c *Cola) Encolar(ctx context.Context, tipo string, payload any) (*Operacion, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar operación %s: %w", tipo, err)
	}
	op := &Operacion{
		ID:        uuid.New().String(),
		Tipo:      tipo,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	if err := c.store.Append(ctx, op); err != nil {
		return nil, fmt.Errorf("encolar operación %s: %w", tipo, err)
	}
	return op, nil
}

// Sincronizar reintenta hasta max operaciones en orden FIFO. Los éxitos se
// eliminan; cualquier fallo (de red o lógico) conserva la operación con el
// contador de intentos incrementado para la siguiente pasada.
func (c *Cola) Sincronizar(ctx context.Context, max int) (Resultado, error) {
	if max <= 0 {
		max = 50
	}
	ops, err := c.store.List(ctx, max)
	if err != nil {
		return Resultado{}, fmt.Errorf("listar cola: %w", err)
	}

	sincronizados := 0
	for _, op := range ops {
		if err := c.ejecutor.Ejecutar(ctx, op); err != nil {
			c.log.Warn().Err(err).
				Str("operacion", op.ID).
				Str("tipo", op.Tipo).
				Int("intentos", op.Intentos+1).
				Msg("reintento fallido, la operación sigue encolada")
			if err := c.store.IncrementarIntento(ctx, op.ID); err != nil {
				return Resultado{}, fmt.Errorf("incrementar intento: %w", err)
			}
			continue
		}
		if err := c.store.Remove(ctx, op.ID); err != nil {
			return Resultado{}, fmt.Errorf("remover operación sincronizada: %w", err)
		}
		sincronizados++
	}

	pendientes, err := c.store.Count(ctx)
	if err != nil {
		return Resultado{}, fmt.Errorf("contar pendientes: %w", err)
	}
	if sincronizados > 0 {
		c.log.Info().Int("sincronizados", sincronizados).Int("pendientes", pendientes).Msg("cola sincronizada")
	}
	return Resultado{Sincronizados: sincronizados, Pendientes: pendientes}, nil
}

// Pendientes lista las operaciones aún encoladas (para inspección).
func (c *Cola) Pendientes(ctx context.Context, limit int) ([]*Operacion, error) {
	if limit <= 0 {
		limit = 100
	}
	return c.store.List(ctx, limit)
}
