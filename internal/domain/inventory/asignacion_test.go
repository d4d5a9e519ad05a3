package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/inventory"
)

// lote arma un lote de prueba con vencimiento opcional (días desde hoy).
func lote(id string, cantidad int64, venceEnDias *int, creadoHace time.Duration) *entity.Lote {
	var venc *time.Time
	if venceEnDias != nil {
		v := time.Now().AddDate(0, 0, *venceEnDias).Truncate(24 * time.Hour)
		venc = &v
	}
	return &entity.Lote{
		ID:              id,
		Codigo:          "L-" + id,
		Vencimiento:     venc,
		CantidadInicial: decimal.NewFromInt(cantidad),
		CantidadActual:  decimal.NewFromInt(cantidad),
		CreatedAt:       time.Now().Add(-creadoHace),
	}
}

func dias(n int) *int { return &n }

func TestPlanificarSalida_OrdenFEFO(t *testing.T) {
	// Vencen en 10, 5 y nunca: debe consumirse primero el de 5 días,
	// luego el de 10, y el sin vencimiento al final.
	lotes := []*entity.Lote{
		lote("dia10", 10, dias(10), time.Hour),
		lote("dia5", 10, dias(5), time.Hour),
		lote("sinVenc", 10, nil, time.Hour),
	}

	plan, err := inventory.PlanificarSalida(lotes, decimal.NewFromInt(25))
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, "dia5", plan[0].Lote.ID)
	assert.True(t, plan[0].Cantidad.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "dia10", plan[1].Lote.ID)
	assert.True(t, plan[1].Cantidad.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "sinVenc", plan[2].Lote.ID)
	assert.True(t, plan[2].Cantidad.Equal(decimal.NewFromInt(5)))
}

func TestPlanificarSalida_EmpatePorFIFO(t *testing.T) {
	// Mismo vencimiento: gana el lote más antiguo (creado antes).
	lotes := []*entity.Lote{
		lote("nuevo", 10, dias(7), time.Hour),
		lote("viejo", 10, dias(7), 48*time.Hour),
	}

	plan, err := inventory.PlanificarSalida(lotes, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "viejo", plan[0].Lote.ID)
}

func TestPlanificarSalida_SinVencimientoEmpataPorFIFO(t *testing.T) {
	lotes := []*entity.Lote{
		lote("b", 10, nil, time.Hour),
		lote("a", 10, nil, 72*time.Hour),
	}

	plan, err := inventory.PlanificarSalida(lotes, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "a", plan[0].Lote.ID)
}

func TestPlanificarSalida_StockInsuficiente(t *testing.T) {
	lotes := []*entity.Lote{
		lote("a", 10, dias(5), time.Hour),
		lote("b", 5, dias(10), time.Hour),
	}

	plan, err := inventory.PlanificarSalida(lotes, decimal.NewFromInt(16))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan, "no debe haber plan parcial")

	// El planificador no muta los lotes.
	assert.True(t, lotes[0].CantidadActual.Equal(decimal.NewFromInt(10)))
	assert.True(t, lotes[1].CantidadActual.Equal(decimal.NewFromInt(5)))
}

func TestPlanificarSalida_SinLotesElegibles(t *testing.T) {
	agotado := lote("agotado", 10, dias(5), time.Hour)
	agotado.CantidadActual = decimal.Zero

	_, err := inventory.PlanificarSalida([]*entity.Lote{agotado}, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = inventory.PlanificarSalida(nil, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlanificarSalida_CantidadInvalida(t *testing.T) {
	lotes := []*entity.Lote{lote("a", 10, dias(5), time.Hour)}

	_, err := inventory.PlanificarSalida(lotes, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.PlanificarSalida(lotes, decimal.NewFromInt(-4))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPlanificarSalida_AjusteExacto(t *testing.T) {
	lotes := []*entity.Lote{
		lote("a", 7, dias(5), time.Hour),
		lote("b", 3, dias(10), time.Hour),
	}

	plan, err := inventory.PlanificarSalida(lotes, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.True(t, plan[0].Cantidad.Equal(decimal.NewFromInt(7)))
	assert.True(t, plan[1].Cantidad.Equal(decimal.NewFromInt(3)))
}
