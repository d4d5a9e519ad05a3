package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/inventory"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

// SerieDocumento es la serie de los comprobantes de salida (PECOSA).
const SerieDocumento = "PEC"

// JustificacionMin longitud mínima de la justificación de anulación y de la
// nota de traslado.
const JustificacionMin = 5

// DocumentoUseCase gobierna el ciclo de vida de las PECOSAs: emisión con
// asignación FEFO por línea, anulación por compensación y reimpresión.
type DocumentoUseCase struct {
	txRunner TxRunner
	audit    AuditSink

	// Lado de lectura (fuera de transacción) para la reimpresión.
	documentos    repository.DocumentoRepository
	movimientos   repository.MovimientoRepository
	productos     repository.ProductoRepository
	lotes         repository.LoteRepository
	centros       repository.CentroRepository
	beneficiarios repository.BeneficiarioRepository
}

// NewDocumentoUseCase construye el caso de uso.
func NewDocumentoUseCase(
	txRunner TxRunner,
	audit AuditSink,
	documentos repository.DocumentoRepository,
	movimientos repository.MovimientoRepository,
	productos repository.ProductoRepository,
	lotes repository.LoteRepository,
	centros repository.CentroRepository,
	beneficiarios repository.BeneficiarioRepository,
) *DocumentoUseCase {
	return &DocumentoUseCase{
		txRunner:      txRunner,
		audit:         audit,
		documentos:    documentos,
		movimientos:   movimientos,
		productos:     productos,
		lotes:         lotes,
		centros:       centros,
		beneficiarios: beneficiarios,
	}
}

// LineaEmision una línea de la PECOSA: producto, cantidad y a quién va.
type LineaEmision struct {
	ProductoID string
	Cantidad   decimal.Decimal
	Destino    entity.Destino
}

// EmisionInput entrada para emitir una PECOSA.
type EmisionInput struct {
	Programa  string
	Lineas    []LineaEmision
	UsuarioID string
}

// EmitirDocumento reserva la siguiente referencia correlativa del programa,
// asigna cada línea en orden FEFO y persiste los movimientos OUT más el
// documento EMITIDA, todo o nada.
//
// Antes de descargar lote alguno se pre-valida la demanda agregada por
// producto contra el stock vivo: si cualquier producto no alcanza, la emisión
// completa falla sin confirmar ninguna línea.
func (uc *DocumentoUseCase) EmitirDocumento(ctx context.Context, input EmisionInput) (string, error) {
	if input.Programa == "" || len(input.Lineas) == 0 {
		return "", domain.ErrInvalidInput
	}
	for _, linea := range input.Lineas {
		if !linea.Cantidad.IsPositive() {
			return "", domain.ErrInvalidQuantity
		}
		switch linea.Destino.Tipo {
		case entity.DestinoCentro, entity.DestinoBeneficiario, entity.DestinoTexto:
		default:
			return "", domain.ErrInvalidInput
		}
	}

	now := time.Now()
	var referencia string
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		// Demanda agregada por producto (varias líneas pueden repetir producto).
		demanda := map[string]decimal.Decimal{}
		for _, linea := range input.Lineas {
			demanda[linea.ProductoID] = demanda[linea.ProductoID].Add(linea.Cantidad)
		}
		// Bloqueo en orden estable para evitar interbloqueos entre emisiones.
		productoIDs := make([]string, 0, len(demanda))
		for id := range demanda {
			productoIDs = append(productoIDs, id)
		}
		sort.Strings(productoIDs)

		productos := map[string]*entity.Producto{}
		for _, id := range productoIDs {
			producto, err := r.Productos.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if producto == nil || producto.Programa != input.Programa {
				return domain.ErrNotFound
			}
			if producto.StockActual.LessThan(demanda[id]) {
				return domain.ErrInsufficientStock
			}
			productos[id] = producto
		}

		numero, err := r.Secuencias.Siguiente(ctx, SerieDocumento, input.Programa, now.Year())
		if err != nil {
			return err
		}
		referencia = FormatearReferencia(SerieDocumento, input.Programa, now.Year(), numero)

		for _, linea := range input.Lineas {
			if err := uc.emitirLinea(ctx, r, referencia, input, linea, now); err != nil {
				return err
			}
		}

		for _, id := range productoIDs {
			producto := productos[id]
			nuevoStock := producto.StockActual.Sub(demanda[id])
			// Las salidas nunca tocan el costo promedio.
			if err := r.Productos.UpdateDerivados(ctx, id, nuevoStock, producto.CostoPromedio); err != nil {
				return err
			}
		}

		return r.Documentos.Create(ctx, &entity.Documento{
			Referencia: referencia,
			Programa:   input.Programa,
			Estado:     entity.DocumentoEmitida,
			CreatedAt:  now,
			CreatedBy:  input.UsuarioID,
		})
	})
	if err != nil {
		return "", err
	}

	uc.audit.Registrar(ctx, input.UsuarioID, "emitir_documento", map[string]any{
		"referencia": referencia,
		"programa":   input.Programa,
		"lineas":     len(input.Lineas),
	})
	return referencia, nil
}

// emitirLinea asigna una línea en orden FEFO y descarga los lotes tocados,
// dejando un movimiento OUT por lote con la referencia del documento.
func (uc *DocumentoUseCase) emitirLinea(
	ctx context.Context, r Repos,
	referencia string, input EmisionInput, linea LineaEmision,
	now time.Time,
) error {
	lotes, err := r.Lotes.ListDisponiblesForUpdate(ctx, linea.ProductoID)
	if err != nil {
		return err
	}
	plan, err := inventory.PlanificarSalida(lotes, linea.Cantidad)
	if err != nil {
		return err
	}
	for _, toma := range plan {
		restante := toma.Lote.CantidadActual.Sub(toma.Cantidad)
		if err := r.Lotes.UpdateCantidad(ctx, toma.Lote.ID, restante); err != nil {
			return err
		}
		toma.Lote.CantidadActual = restante

		mov := &entity.Movimiento{
			ID:         uuid.New().String(),
			Tipo:       entity.MovimientoOUT,
			Programa:   input.Programa,
			ProductoID: linea.ProductoID,
			LoteID:     toma.Lote.ID,
			Cantidad:   toma.Cantidad,
			CostoUnit:  toma.Lote.CostoUnitario,
			Referencia: referencia,
			Destino:    linea.Destino,
			CreatedAt:  now,
			CreatedBy:  input.UsuarioID,
		}
		if err := r.Movimientos.Create(ctx, mov); err != nil {
			return err
		}
	}
	return nil
}

// AnularDocumento revierte una PECOSA por compensación: agrega un movimiento
// IN por cada OUT original (restituyendo cada lote tocado) y pasa el documento
// a ANULADA. Los movimientos originales nunca se borran. La fila del documento
// se bloquea: de dos anulaciones concurrentes exactamente una gana y la otra
// recibe ErrAlreadyAnnulled.
func (uc *DocumentoUseCase) AnularDocumento(ctx context.Context, referencia, justificacion, usuarioID string) error {
	if len(strings.TrimSpace(justificacion)) < JustificacionMin {
		return domain.ErrInvalidJustification
	}

	now := time.Now()
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		doc, err := r.Documentos.GetByReferenciaForUpdate(ctx, referencia)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if doc.Anulada() {
			return domain.ErrAlreadyAnnulled
		}

		movs, err := r.Movimientos.ListByReferencia(ctx, referencia)
		if err != nil {
			return err
		}
		// Un documento sin movimientos no es anulable.
		restituido := map[string]decimal.Decimal{}
		compensados := 0
		for _, mov := range movs {
			if mov.Tipo != entity.MovimientoOUT {
				continue
			}
			lote, err := r.Lotes.GetForUpdate(ctx, mov.LoteID)
			if err != nil {
				return err
			}
			if lote == nil {
				return domain.ErrNotFound
			}
			if err := r.Lotes.UpdateCantidad(ctx, lote.ID, lote.CantidadActual.Add(mov.Cantidad)); err != nil {
				return err
			}
			comp := &entity.Movimiento{
				ID:          uuid.New().String(),
				Tipo:        entity.MovimientoIN,
				Programa:    mov.Programa,
				ProductoID:  mov.ProductoID,
				LoteID:      mov.LoteID,
				Cantidad:    mov.Cantidad,
				CostoUnit:   mov.CostoUnit,
				Referencia:  referencia,
				Destino:     mov.Destino,
				Observacion: fmt.Sprintf("Anulación de %s: %s", referencia, justificacion),
				CreatedAt:   now,
				CreatedBy:   usuarioID,
			}
			if err := r.Movimientos.Create(ctx, comp); err != nil {
				return err
			}
			restituido[mov.ProductoID] = restituido[mov.ProductoID].Add(mov.Cantidad)
			compensados++
		}
		if compensados == 0 {
			return domain.ErrNotFound
		}

		productoIDs := make([]string, 0, len(restituido))
		for id := range restituido {
			productoIDs = append(productoIDs, id)
		}
		sort.Strings(productoIDs)
		for _, id := range productoIDs {
			producto, err := r.Productos.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if producto == nil {
				return domain.ErrNotFound
			}
			// La restitución de una salida tampoco toca el costo promedio.
			nuevoStock := producto.StockActual.Add(restituido[id])
			if err := r.Productos.UpdateDerivados(ctx, id, nuevoStock, producto.CostoPromedio); err != nil {
				return err
			}
		}

		return r.Documentos.Anular(ctx, referencia, justificacion, usuarioID, now)
	})
	if err != nil {
		return err
	}

	uc.audit.Registrar(ctx, usuarioID, "anular_documento", map[string]any{
		"referencia":    referencia,
		"justificacion": justificacion,
	})
	return nil
}

// FormatearReferencia arma la referencia legible de un documento:
// SERIE-PROGRAMA-AÑO-NNNNNN, p.ej. PEC-PVL-2026-000123.
func FormatearReferencia(serie, programa string, anio int, numero int64) string {
	return fmt.Sprintf("%s-%s-%d-%06d", serie, programa, anio, numero)
}
