package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// Toma es la porción de un lote seleccionada para una salida.
type Toma struct {
	Lote     *entity.Lote
	Cantidad decimal.Decimal
}

// OrdenarFEFO ordena los lotes para consumo: primero el vencimiento más
// próximo (FEFO); los lotes sin vencimiento van al final ("nunca vencen").
// Empates se rompen por fecha de creación ascendente (FIFO). No muta el slice
// recibido: devuelve una copia ordenada.
func OrdenarFEFO(lotes []*entity.Lote) []*entity.Lote {
	orden := make([]*entity.Lote, len(lotes))
	copy(orden, lotes)
	sort.SliceStable(orden, func(i, j int) bool {
		a, b := orden[i], orden[j]
		switch {
		case a.Vencimiento == nil && b.Vencimiento == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.Vencimiento == nil:
			return false
		case b.Vencimiento == nil:
			return true
		case a.Vencimiento.Equal(*b.Vencimiento):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Vencimiento.Before(*b.Vencimiento)
		}
	})
	return orden
}

// PlanificarSalida selecciona de qué lotes descargar una cantidad solicitada,
// en orden FEFO con desempate FIFO, tomando de cada lote
// min(faltante, CantidadActual) hasta cubrir lo pedido.
//
// La asignación es todo-o-nada: si los lotes no alcanzan devuelve
// ErrInsufficientStock sin plan parcial. Cantidades <= 0 son un error de
// entrada (ErrInvalidQuantity), no una falta de stock. El plan no muta los
// lotes; aplicar los descuentos es responsabilidad del caller dentro de su
// transacción.
func PlanificarSalida(lotes []*entity.Lote, solicitado decimal.Decimal) ([]Toma, error) {
	if !solicitado.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	faltante := solicitado
	var plan []Toma
	for _, lote := range OrdenarFEFO(lotes) {
		if lote.Agotado() {
			continue
		}
		toma := decimal.Min(faltante, lote.CantidadActual)
		plan = append(plan, Toma{Lote: lote, Cantidad: toma})
		faltante = faltante.Sub(toma)
		if faltante.IsZero() {
			return plan, nil
		}
	}
	return nil, domain.ErrInsufficientStock
}
