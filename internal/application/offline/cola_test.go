package offline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvaldivia/almacen-pan/pkg/logger"
)

var (
	errConexion = errors.New("connection refused")
	errLogico   = errors.New("stock insuficiente")
)

func esConexion(err error) bool {
	return errors.Is(err, errConexion)
}

// memQueue implementa Store en memoria conservando el orden de inserción.
type memQueue struct {
	ops []*Operacion
}

func (q *memQueue) Append(_ context.Context, op *Operacion) error {
	cp := *op
	q.ops = append(q.ops, &cp)
	return nil
}

func (q *memQueue) List(_ context.Context, limit int) ([]*Operacion, error) {
	out := make([]*Operacion, 0, limit)
	for i, op := range q.ops {
		if i == limit {
			break
		}
		cp := *op
		out = append(out, &cp)
	}
	return out, nil
}

func (q *memQueue) Remove(_ context.Context, id string) error {
	for i, op := range q.ops {
		if op.ID == id {
			q.ops = append(q.ops[:i], q.ops[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *memQueue) IncrementarIntento(_ context.Context, id string) error {
	for _, op := range q.ops {
		if op.ID == id {
			op.Intentos++
		}
	}
	return nil
}

func (q *memQueue) Count(_ context.Context) (int, error) {
	return len(q.ops), nil
}

// ejecutorGuion reaplica operaciones según un guion por tipo y anota el orden
// en que le llegan.
type ejecutorGuion struct {
	fallos map[string]error
	orden  []string
}

func (e *ejecutorGuion) Ejecutar(_ context.Context, op *Operacion) error {
	e.orden = append(e.orden, op.Tipo)
	return e.fallos[op.Tipo]
}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func buildCola(ejecutor Ejecutor) (*Cola, *memQueue) {
	q := &memQueue{}
	return NewCola(q, ejecutor, esConexion, testLog()), q
}

func TestInterceptar_ExitoNoEncola(t *testing.T) {
	cola, q := buildCola(&ejecutorGuion{})

	encolado, err := cola.Interceptar(context.Background(), OpRegistrarIngreso, map[string]string{"k": "v"}, func() error {
		return nil
	})
	require.NoError(t, err)
	assert.False(t, encolado)
	assert.Empty(t, q.ops)
}

func TestInterceptar_ErrorLogicoSePropaga(t *testing.T) {
	cola, q := buildCola(&ejecutorGuion{})

	encolado, err := cola.Interceptar(context.Background(), OpEmitirDocumento, map[string]string{"k": "v"}, func() error {
		return errLogico
	})
	assert.ErrorIs(t, err, errLogico, "reintentar un error lógico no puede ayudar")
	assert.False(t, encolado)
	assert.Empty(t, q.ops, "los errores lógicos nunca se encolan")
}

func TestInterceptar_ErrorDeConectividadEncola(t *testing.T) {
	cola, q := buildCola(&ejecutorGuion{})

	payload := map[string]string{"producto": "prod-1"}
	encolado, err := cola.Interceptar(context.Background(), OpRegistrarIngreso, payload, func() error {
		return errConexion
	})
	require.NoError(t, err, "el caller recibe éxito diferido, no el error de red")
	assert.True(t, encolado)

	require.Len(t, q.ops, 1)
	op := q.ops[0]
	assert.Equal(t, OpRegistrarIngreso, op.Tipo)
	assert.Equal(t, 0, op.Intentos)

	var decodificado map[string]string
	require.NoError(t, json.Unmarshal(op.Payload, &decodificado))
	assert.Equal(t, payload, decodificado, "el payload se conserva íntegro para el reintento")
}

func TestSincronizar_FIFOConFallosIntercalados(t *testing.T) {
	ejecutor := &ejecutorGuion{fallos: map[string]error{OpAnularDocumento: errConexion}}
	cola, q := buildCola(ejecutor)
	ctx := context.Background()

	for _, tipo := range []string{OpRegistrarIngreso, OpAnularDocumento, OpEmitirDocumento} {
		_, err := cola.Encolar(ctx, tipo, map[string]string{"tipo": tipo})
		require.NoError(t, err)
	}

	resultado, err := cola.Sincronizar(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, resultado.Sincronizados)
	assert.Equal(t, 1, resultado.Pendientes)
	assert.Equal(t, []string{OpRegistrarIngreso, OpAnularDocumento, OpEmitirDocumento}, ejecutor.orden,
		"la pasada respeta el orden FIFO y un fallo no bloquea a los siguientes")

	// El fallido sigue encolado con el intento anotado.
	require.Len(t, q.ops, 1)
	assert.Equal(t, OpAnularDocumento, q.ops[0].Tipo)
	assert.Equal(t, 1, q.ops[0].Intentos)

	// Al volver la conectividad, la siguiente pasada lo drena.
	ejecutor.fallos = nil
	resultado, err = cola.Sincronizar(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Sincronizados)
	assert.Equal(t, 0, resultado.Pendientes)
	assert.Empty(t, q.ops)
}

func TestSincronizar_RespetaElMaximoPorPasada(t *testing.T) {
	ejecutor := &ejecutorGuion{}
	cola, q := buildCola(ejecutor)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cola.Encolar(ctx, OpRegistrarIngreso, map[string]int{"n": i})
		require.NoError(t, err)
	}

	resultado, err := cola.Sincronizar(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Sincronizados)
	assert.Equal(t, 3, resultado.Pendientes)
	assert.Len(t, q.ops, 3)
}

func TestDespachador_EnrutaPorTipo(t *testing.T) {
	d := NewDespachador()
	var recibido string
	d.Registrar(OpTrasladar, func(_ context.Context, payload json.RawMessage) error {
		recibido = string(payload)
		return nil
	})

	err := d.Ejecutar(context.Background(), &Operacion{Tipo: OpTrasladar, Payload: json.RawMessage(`{"modo":"PRESTAMO"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"modo":"PRESTAMO"}`, recibido)

	err = d.Ejecutar(context.Background(), &Operacion{Tipo: "DESCONOCIDO"})
	assert.Error(t, err, "una operación sin manejador registrado es un error")
}
