package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/inventory"
)

// IngresoUseCase registra ingresos de stock: crea el lote, recalcula el costo
// promedio ponderado del producto y deja el asiento IN en el kardex, todo en
// una transacción.
type IngresoUseCase struct {
	txRunner TxRunner
	audit    AuditSink
}

// NewIngresoUseCase construye el caso de uso.
func NewIngresoUseCase(txRunner TxRunner, audit AuditSink) *IngresoUseCase {
	return &IngresoUseCase{txRunner: txRunner, audit: audit}
}

// IngresoInput entrada para registrar un ingreso.
type IngresoInput struct {
	Programa      string
	ProductoID    string
	Cantidad      decimal.Decimal
	CostoUnitario decimal.Decimal
	CodigoLote    string
	Vencimiento   *time.Time
	Proveedor     string
	DocReferencia string // guía de remisión u orden de compra
	UsuarioID     string
}

// IngresoResult resultado del ingreso.
type IngresoResult struct {
	LoteID        string
	NuevoCosto    decimal.Decimal
	NuevoStock    decimal.Decimal
	MovimientoID  string
}

// RegistrarIngreso valida la entrada y ejecuta el ingreso dentro de una
// transacción: si falla cualquier paso (lote, producto o movimiento), nada
// queda confirmado.
func (uc *IngresoUseCase) RegistrarIngreso(ctx context.Context, input IngresoInput) (*IngresoResult, error) {
	if input.Programa == "" || input.ProductoID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Cantidad.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if input.CostoUnitario.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result IngresoResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		// Bloquea la fila del producto: el recálculo de costo y el alta del
		// lote deben ver el mismo stock.
		producto, err := r.Productos.GetForUpdate(ctx, input.ProductoID)
		if err != nil {
			return err
		}
		if producto == nil || producto.Programa != input.Programa {
			return domain.ErrNotFound
		}

		lote := &entity.Lote{
			ID:              uuid.New().String(),
			ProductoID:      producto.ID,
			Programa:        producto.Programa,
			Codigo:          input.CodigoLote,
			Vencimiento:     input.Vencimiento,
			CantidadInicial: input.Cantidad,
			CantidadActual:  input.Cantidad,
			CostoUnitario:   input.CostoUnitario,
			Proveedor:       input.Proveedor,
			DocReferencia:   input.DocReferencia,
			CreatedAt:       now,
		}
		if err := r.Lotes.Create(ctx, lote); err != nil {
			return err
		}

		nuevoCosto := inventory.CostoPromedio(
			producto.StockActual, producto.CostoPromedio,
			input.Cantidad, input.CostoUnitario,
		)
		nuevoStock := producto.StockActual.Add(input.Cantidad)
		if err := r.Productos.UpdateDerivados(ctx, producto.ID, nuevoStock, nuevoCosto); err != nil {
			return err
		}

		mov := &entity.Movimiento{
			ID:          uuid.New().String(),
			Tipo:        entity.MovimientoIN,
			Programa:    producto.Programa,
			ProductoID:  producto.ID,
			LoteID:      lote.ID,
			Cantidad:    input.Cantidad,
			CostoUnit:   input.CostoUnitario,
			Referencia:  input.DocReferencia,
			Destino:     entity.DestinoDeTexto(input.Proveedor),
			Observacion: "Ingreso de almacén",
			CreatedAt:   now,
			CreatedBy:   input.UsuarioID,
		}
		if err := r.Movimientos.Create(ctx, mov); err != nil {
			return err
		}

		result = IngresoResult{
			LoteID:       lote.ID,
			NuevoCosto:   nuevoCosto,
			NuevoStock:   nuevoStock,
			MovimientoID: mov.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Registrar(ctx, input.UsuarioID, "ingreso", map[string]any{
		"producto": input.ProductoID,
		"lote":     result.LoteID,
		"cantidad": input.Cantidad.String(),
	})
	return &result, nil
}
