package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// LineaSnapshot una línea del documento tal como se emitió.
type LineaSnapshot struct {
	ProductoID string
	Producto   string
	Unidad     string
	LoteCodigo string
	Cantidad   decimal.Decimal
	CostoUnit  decimal.Decimal
	Total      decimal.Decimal
	Destino    string // contraparte ya resuelta a texto legible
}

// DocumentoSnapshot es la foto de una PECOSA al momento de su emisión,
// apta para reimpresión. Los documentos anulados se reconstruyen igual,
// con la marca de anulación visible.
type DocumentoSnapshot struct {
	Referencia    string
	Programa      string
	Estado        string
	Anulada       bool
	Justificacion string
	EmitidaAt     time.Time
	EmitidaBy     string
	Lineas        []LineaSnapshot
	Total         decimal.Decimal
}

// ReimprimirDocumento reconstruye el documento para re-renderizarlo. Es
// solo-lectura: funciona igual para documentos emitidos y anulados (los
// compensatorios IN de una anulación no forman parte de las líneas).
func (uc *DocumentoUseCase) ReimprimirDocumento(ctx context.Context, referencia string) (*DocumentoSnapshot, error) {
	doc, err := uc.documentos.GetByReferencia(ctx, referencia)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}

	movs, err := uc.movimientos.ListByReferencia(ctx, referencia)
	if err != nil {
		return nil, err
	}

	snapshot := &DocumentoSnapshot{
		Referencia:    doc.Referencia,
		Programa:      doc.Programa,
		Estado:        doc.Estado,
		Anulada:       doc.Anulada(),
		Justificacion: doc.Justificacion,
		EmitidaAt:     doc.CreatedAt,
		EmitidaBy:     doc.CreatedBy,
	}
	for _, mov := range movs {
		if mov.Tipo != entity.MovimientoOUT {
			continue
		}
		linea, err := uc.lineaDesdeMovimiento(ctx, mov)
		if err != nil {
			return nil, err
		}
		snapshot.Lineas = append(snapshot.Lineas, *linea)
		snapshot.Total = snapshot.Total.Add(linea.Total)
	}
	return snapshot, nil
}

func (uc *DocumentoUseCase) lineaDesdeMovimiento(ctx context.Context, mov *entity.Movimiento) (*LineaSnapshot, error) {
	linea := &LineaSnapshot{
		ProductoID: mov.ProductoID,
		Cantidad:   mov.Cantidad,
		CostoUnit:  mov.CostoUnit,
		Total:      mov.Cantidad.Mul(mov.CostoUnit),
	}
	producto, err := uc.productos.GetByID(ctx, mov.ProductoID)
	if err != nil {
		return nil, err
	}
	if producto != nil {
		linea.Producto = producto.Nombre
		linea.Unidad = producto.Unidad
	}
	if mov.LoteID != "" {
		lote, err := uc.lotes.GetByID(ctx, mov.LoteID)
		if err != nil {
			return nil, err
		}
		if lote != nil {
			linea.LoteCodigo = lote.Codigo
		}
	}
	destino, err := uc.resolverDestino(ctx, mov.Destino)
	if err != nil {
		return nil, err
	}
	linea.Destino = destino
	return linea, nil
}

// resolverDestino convierte la contraparte etiquetada a texto legible,
// manejando cada variante de forma exhaustiva.
func (uc *DocumentoUseCase) resolverDestino(ctx context.Context, destino entity.Destino) (string, error) {
	switch destino.Tipo {
	case entity.DestinoCentro:
		centro, err := uc.centros.GetByID(ctx, destino.CentroID)
		if err != nil {
			return "", err
		}
		if centro == nil {
			return destino.CentroID, nil
		}
		return centro.Nombre, nil
	case entity.DestinoBeneficiario:
		b, err := uc.beneficiarios.GetByID(ctx, destino.BeneficiarioID)
		if err != nil {
			return "", err
		}
		if b == nil {
			return destino.BeneficiarioID, nil
		}
		return fmt.Sprintf("%s %s (DNI %s)", b.Nombres, b.Apellidos, b.DNI), nil
	case entity.DestinoTexto:
		return destino.Texto, nil
	default:
		return "", domain.ErrInvalidInput
	}
}
