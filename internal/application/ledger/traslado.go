package ledger

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/inventory"
)

// SerieTraslado es la serie de las referencias de traslado entre programas.
const SerieTraslado = "TR"

// observacionPrestamo es el texto legado embebido en la observación del
// movimiento IN de un préstamo. Los registros anteriores a la tabla de
// préstamos solo se pueden reconstruir desde este texto, así que el formato
// no puede cambiar.
var observacionPrestamo = regexp.MustCompile(`^PRESTAMO de ([^\s\[]+) \[ref ([^\]]+)\]`)

// TrasladoUseCase mueve stock entre programas, como transferencia definitiva
// o como préstamo con devolución posterior. El lote a descargar lo fija el
// caller (no es una elección FEFO libre).
type TrasladoUseCase struct {
	txRunner TxRunner
	audit    AuditSink
}

// NewTrasladoUseCase construye el caso de uso.
func NewTrasladoUseCase(txRunner TxRunner, audit AuditSink) *TrasladoUseCase {
	return &TrasladoUseCase{txRunner: txRunner, audit: audit}
}

// TrasladoInput entrada para un traslado entre programas.
type TrasladoInput struct {
	Modo            string // TRANSFERENCIA | PRESTAMO
	ProgramaOrigen  string
	ProgramaDestino string
	ProductoID      string
	LoteID          string
	Cantidad        decimal.Decimal
	Nota            string
	UsuarioID       string
}

// Trasladar descarga el lote indicado en el programa origen y crea (o
// completa) el lote equivalente en el destino, con su par de movimientos
// OUT/IN bajo una misma referencia cruzada. En modo PRESTAMO además
// persiste el registro de préstamo pendiente.
func (uc *TrasladoUseCase) Trasladar(ctx context.Context, input TrasladoInput) (string, error) {
	if input.Modo != entity.TrasladoTransferencia && input.Modo != entity.TrasladoPrestamo {
		return "", domain.ErrInvalidInput
	}
	if input.ProgramaOrigen == "" || input.ProgramaDestino == "" || input.ProductoID == "" || input.LoteID == "" {
		return "", domain.ErrInvalidInput
	}
	if input.ProgramaOrigen == input.ProgramaDestino {
		return "", domain.ErrSameProgram
	}
	if len(strings.TrimSpace(input.Nota)) < JustificacionMin {
		return "", domain.ErrInvalidJustification
	}
	if !input.Cantidad.IsPositive() {
		return "", domain.ErrInvalidQuantity
	}

	var referencia string
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		ref, _, err := uc.trasladarEnTx(ctx, r, input, false, time.Now())
		referencia = ref
		return err
	})
	if err != nil {
		return "", err
	}

	uc.audit.Registrar(ctx, input.UsuarioID, "traslado", map[string]any{
		"referencia": referencia,
		"modo":       input.Modo,
		"origen":     input.ProgramaOrigen,
		"destino":    input.ProgramaDestino,
		"cantidad":   input.Cantidad.String(),
	})
	return referencia, nil
}

// trasladarEnTx ejecuta el traslado con los repositorios de la transacción del
// caller. esDevolucion marca el movimiento como devolución de préstamo (no
// crea un nuevo registro de préstamo). Devuelve la referencia generada y el
// movimiento IN del destino.
func (uc *TrasladoUseCase) trasladarEnTx(
	ctx context.Context, r Repos,
	input TrasladoInput, esDevolucion bool,
	now time.Time,
) (string, *entity.Movimiento, error) {
	lote, err := r.Lotes.GetForUpdate(ctx, input.LoteID)
	if err != nil {
		return "", nil, err
	}
	if lote == nil || lote.Programa != input.ProgramaOrigen || lote.ProductoID != input.ProductoID {
		return "", nil, domain.ErrNotFound
	}
	if lote.CantidadActual.LessThan(input.Cantidad) {
		return "", nil, domain.ErrInsufficientStock
	}

	origen, err := r.Productos.GetForUpdate(ctx, input.ProductoID)
	if err != nil {
		return "", nil, err
	}
	if origen == nil || origen.Programa != input.ProgramaOrigen {
		return "", nil, domain.ErrNotFound
	}

	numero, err := r.Secuencias.Siguiente(ctx, SerieTraslado, input.ProgramaOrigen, now.Year())
	if err != nil {
		return "", nil, err
	}
	referencia := FormatearReferencia(SerieTraslado, input.ProgramaOrigen, now.Year(), numero)

	// Descarga en origen: lote fijado por el caller, stock del producto.
	if err := r.Lotes.UpdateCantidad(ctx, lote.ID, lote.CantidadActual.Sub(input.Cantidad)); err != nil {
		return "", nil, err
	}
	if err := r.Productos.UpdateDerivados(ctx, origen.ID, origen.StockActual.Sub(input.Cantidad), origen.CostoPromedio); err != nil {
		return "", nil, err
	}
	salida := &entity.Movimiento{
		ID:          uuid.New().String(),
		Tipo:        entity.MovimientoOUT,
		Programa:    input.ProgramaOrigen,
		ProductoID:  origen.ID,
		LoteID:      lote.ID,
		Cantidad:    input.Cantidad,
		CostoUnit:   lote.CostoUnitario,
		Referencia:  referencia,
		Destino:     entity.DestinoDeTexto(input.ProgramaDestino),
		Observacion: observacionSalida(input, esDevolucion),
		CreatedAt:   now,
		CreatedBy:   input.UsuarioID,
	}
	if err := r.Movimientos.Create(ctx, salida); err != nil {
		return "", nil, err
	}

	// Alta en destino: producto equivalente (se crea si no existe) y lote
	// equivalente por código+vencimiento (se completa si ya existe).
	destino, err := uc.productoDestino(ctx, r, origen, input.ProgramaDestino, now)
	if err != nil {
		return "", nil, err
	}
	loteDestino, err := uc.loteDestino(ctx, r, destino, lote, input.Cantidad, now)
	if err != nil {
		return "", nil, err
	}

	ingreso := &entity.Movimiento{
		ID:          uuid.New().String(),
		Tipo:        entity.MovimientoIN,
		Programa:    input.ProgramaDestino,
		ProductoID:  destino.ID,
		LoteID:      loteDestino.ID,
		Cantidad:    input.Cantidad,
		CostoUnit:   lote.CostoUnitario,
		Referencia:  referencia,
		Destino:     entity.DestinoDeTexto(input.ProgramaOrigen),
		Observacion: observacionIngreso(input, referencia, esDevolucion),
		CreatedAt:   now,
		CreatedBy:   input.UsuarioID,
	}
	if err := r.Movimientos.Create(ctx, ingreso); err != nil {
		return "", nil, err
	}

	// Todo aumento de stock recalcula el costo promedio del producto destino.
	nuevoCosto := inventory.CostoPromedio(
		destino.StockActual, destino.CostoPromedio,
		input.Cantidad, lote.CostoUnitario,
	)
	if err := r.Productos.UpdateDerivados(ctx, destino.ID, destino.StockActual.Add(input.Cantidad), nuevoCosto); err != nil {
		return "", nil, err
	}

	if input.Modo == entity.TrasladoPrestamo && !esDevolucion {
		prestamo := &entity.Prestamo{
			ID:                  uuid.New().String(),
			Referencia:          referencia,
			ProgramaOrigen:      input.ProgramaOrigen,
			ProgramaDestino:     input.ProgramaDestino,
			ProductoOrigenID:    origen.ID,
			LoteOrigenID:        lote.ID,
			LoteDestinoID:       loteDestino.ID,
			MovimientoIngresoID: ingreso.ID,
			Cantidad:            input.Cantidad,
			Estado:              entity.PrestamoPendiente,
			CreatedAt:           now,
		}
		if err := r.Prestamos.Create(ctx, prestamo); err != nil {
			return "", nil, err
		}
	}
	return referencia, ingreso, nil
}

// productoDestino busca el producto equivalente en el programa destino y lo
// crea si no existe, bloqueando la fila para el ajuste de stock posterior.
func (uc *TrasladoUseCase) productoDestino(
	ctx context.Context, r Repos,
	origen *entity.Producto, programa string, now time.Time,
) (*entity.Producto, error) {
	existente, err := r.Productos.GetEquivalente(ctx, programa, origen.Nombre, origen.Unidad)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return r.Productos.GetForUpdate(ctx, existente.ID)
	}
	nuevo := &entity.Producto{
		ID:        uuid.New().String(),
		Programa:  programa,
		Nombre:    origen.Nombre,
		Unidad:    origen.Unidad,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Productos.Create(ctx, nuevo); err != nil {
		return nil, err
	}
	return nuevo, nil
}

// loteDestino completa el lote equivalente del destino o crea uno nuevo con
// el costo del lote de origen.
func (uc *TrasladoUseCase) loteDestino(
	ctx context.Context, r Repos,
	producto *entity.Producto, origen *entity.Lote,
	cantidad decimal.Decimal, now time.Time,
) (*entity.Lote, error) {
	equivalente, err := r.Lotes.GetEquivalente(ctx, producto.ID, origen.Codigo, origen.Vencimiento)
	if err != nil {
		return nil, err
	}
	if equivalente != nil {
		if err := r.Lotes.Recargar(ctx, equivalente.ID, cantidad); err != nil {
			return nil, err
		}
		equivalente.CantidadInicial = equivalente.CantidadInicial.Add(cantidad)
		equivalente.CantidadActual = equivalente.CantidadActual.Add(cantidad)
		return equivalente, nil
	}
	nuevo := &entity.Lote{
		ID:              uuid.New().String(),
		ProductoID:      producto.ID,
		Programa:        producto.Programa,
		Codigo:          origen.Codigo,
		Vencimiento:     origen.Vencimiento,
		CantidadInicial: cantidad,
		CantidadActual:  cantidad,
		CostoUnitario:   origen.CostoUnitario,
		Proveedor:       origen.Proveedor,
		DocReferencia:   origen.DocReferencia,
		CreatedAt:       now,
	}
	if err := r.Lotes.Create(ctx, nuevo); err != nil {
		return nil, err
	}
	return nuevo, nil
}

func observacionSalida(input TrasladoInput, esDevolucion bool) string {
	if esDevolucion {
		return fmt.Sprintf("Devolución de préstamo a %s - %s", input.ProgramaDestino, input.Nota)
	}
	if input.Modo == entity.TrasladoPrestamo {
		return fmt.Sprintf("Préstamo a %s - %s", input.ProgramaDestino, input.Nota)
	}
	return fmt.Sprintf("Transferencia a %s - %s", input.ProgramaDestino, input.Nota)
}

// observacionIngreso arma la observación del movimiento IN. Para préstamos
// mantiene el formato legado parseable (programa prestamista y referencia),
// que sigue siendo lo único disponible en registros históricos.
func observacionIngreso(input TrasladoInput, referencia string, esDevolucion bool) string {
	if esDevolucion {
		return fmt.Sprintf("Devolución de préstamo desde %s - %s", input.ProgramaOrigen, input.Nota)
	}
	if input.Modo == entity.TrasladoPrestamo {
		return fmt.Sprintf("PRESTAMO de %s [ref %s] - %s", input.ProgramaOrigen, referencia, input.Nota)
	}
	return fmt.Sprintf("Transferencia desde %s - %s", input.ProgramaOrigen, input.Nota)
}

// ParsearObservacionPrestamo recupera el programa prestamista y la referencia
// desde el texto legado de un movimiento IN de préstamo.
func ParsearObservacionPrestamo(observacion string) (programa, referencia string, ok bool) {
	m := observacionPrestamo.FindStringSubmatch(observacion)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// DevolverPrestamo devuelve un préstamo a partir de su movimiento IN en el
// programa destino. La cantidad devuelta es min(prestado, lo que queda en el
// lote destino): nunca más de lo prestado ni más de lo disponible. El
// registro de préstamo es la fuente de verdad; para movimientos históricos
// sin registro se reconstruye desde la observación (ErrUnparseableLoan si el
// texto no alcanza).
func (uc *TrasladoUseCase) DevolverPrestamo(ctx context.Context, movimientoIngresoID, usuarioID string) (string, error) {
	if movimientoIngresoID == "" {
		return "", domain.ErrInvalidInput
	}

	var referencia string
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		mov, err := r.Movimientos.GetByID(ctx, movimientoIngresoID)
		if err != nil {
			return err
		}
		if mov == nil || mov.Tipo != entity.MovimientoIN {
			return domain.ErrNotFound
		}

		prestamo, err := r.Prestamos.GetByMovimientoIngreso(ctx, mov.ID)
		if err != nil {
			return err
		}
		if prestamo == nil {
			prestamo, err = prestamoDesdeObservacion(mov)
			if err != nil {
				return err
			}
		}
		if prestamo.Estado == entity.PrestamoDevuelto {
			return domain.ErrNothingToReturn
		}

		loteDestino, err := r.Lotes.GetForUpdate(ctx, prestamo.LoteDestinoID)
		if err != nil {
			return err
		}
		if loteDestino == nil {
			return domain.ErrNotFound
		}
		devolvible := decimal.Min(prestamo.Cantidad, loteDestino.CantidadActual)
		if !devolvible.IsPositive() {
			return domain.ErrNothingToReturn
		}

		now := time.Now()
		ref, _, err := uc.trasladarEnTx(ctx, r, TrasladoInput{
			Modo:            entity.TrasladoPrestamo,
			ProgramaOrigen:  prestamo.ProgramaDestino,
			ProgramaDestino: prestamo.ProgramaOrigen,
			ProductoID:      loteDestino.ProductoID,
			LoteID:          loteDestino.ID,
			Cantidad:        devolvible,
			Nota:            fmt.Sprintf("Devolución de %s", prestamo.Referencia),
			UsuarioID:       usuarioID,
		}, true, now)
		if err != nil {
			return err
		}
		referencia = ref

		if prestamo.ID != "" {
			if err := r.Prestamos.MarcarDevuelto(ctx, prestamo.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	uc.audit.Registrar(ctx, usuarioID, "devolver_prestamo", map[string]any{
		"movimiento": movimientoIngresoID,
		"referencia": referencia,
	})
	return referencia, nil
}

// prestamoDesdeObservacion reconstruye un préstamo histórico (anterior a la
// tabla de préstamos) desde el texto del movimiento IN.
func prestamoDesdeObservacion(mov *entity.Movimiento) (*entity.Prestamo, error) {
	programa, referencia, ok := ParsearObservacionPrestamo(mov.Observacion)
	if !ok {
		return nil, domain.ErrUnparseableLoan
	}
	return &entity.Prestamo{
		Referencia:          referencia,
		ProgramaOrigen:      programa,
		ProgramaDestino:     mov.Programa,
		LoteDestinoID:       mov.LoteID,
		MovimientoIngresoID: mov.ID,
		Cantidad:            mov.Cantidad,
		Estado:              entity.PrestamoPendiente,
	}, nil
}
