// Package pdf implementa la representación impresa de la PECOSA (Pedido de
// Comprobante de Salida) de los programas de asistencia alimentaria.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Programa + PECOSA  │  Referencia + Fecha           │
//	│  [banda ANULADA cuando corresponde]                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Lote | Destino | C.Unit | Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL VALORIZADO                                           │
//	│  FOOTER: emitido por + firmas                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 90, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// PecosaPDFGenerator renderiza una PECOSA desde su snapshot usando Maroto v2.
type PecosaPDFGenerator struct{}

// NewPecosaPDFGenerator construye el generador.
func NewPecosaPDFGenerator() *PecosaPDFGenerator { return &PecosaPDFGenerator{} }

// GenerarPecosaPDF genera el PDF y devuelve sus bytes. Los documentos anulados
// se imprimen completos con la banda ANULADA: la reimpresión nunca oculta
// historia.
func (g *PecosaPDFGenerator) GenerarPecosaPDF(_ context.Context, snap *ledger.DocumentoSnapshot) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("PECOSA "+snap.Referencia, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(snap))
	if snap.Anulada {
		m.AddRows(anuladaRow(snap))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineaRows(snap.Lineas) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(snap))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(snap)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar pecosa: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: programa (izq), referencia y fecha (der).
func headerRow(snap *ledger.DocumentoSnapshot) core.Row {
	fecha := snap.EmitidaAt.Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("PROGRAMA "+snap.Programa, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Pedido de Comprobante de Salida", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PECOSA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(snap.Referencia, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitida: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// anuladaRow: banda visible con la justificación del acta de anulación.
func anuladaRow(snap *ledger.DocumentoSnapshot) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DOCUMENTO ANULADO", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center,
				Color: colorAlert, Top: 1,
			}),
			text.New("Justificación: "+snap.Justificacion, props.Text{
				Size: 8, Align: align.Center, Top: 8, Color: colorAlert,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 3, align.Left),
		h("Lote", 2, align.Left),
		h("Destino", 3, align.Left),
		h("C.Unit.", 1, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableLineaRows: una fila por línea de la PECOSA.
func tableLineaRows(lineas []ledger.LineaSnapshot) []core.Row {
	result := make([]core.Row, 0, len(lineas))
	for _, l := range lineas {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Cantidad.String()+" "+l.Unidad,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				l.Producto,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				l.LoteCodigo,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				l.Destino,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				"S/ "+l.CostoUnit.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"S/ "+l.Total.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: total valorizado de la salida.
func totalRow(snap *ledger.DocumentoSnapshot) core.Row {
	return row.New(10).Add(
		col.New(7),
		col.New(3).Add(text.New("TOTAL VALORIZADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 1,
		})),
		col.New(2).Add(text.New("S/ "+snap.Total.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 1,
		})),
	)
}

// footerRows: emisor y espacios de firma.
func footerRows(snap *ledger.DocumentoSnapshot) []core.Row {
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Emitido por: "+snap.EmitidaBy, props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}),
		)),
		row.New(20),
		row.New(8).Add(
			col.New(4).Add(
				text.New("_______________________", props.Text{Size: 8, Align: align.Center}),
				text.New("Almacenero", props.Text{Size: 7, Align: align.Center, Top: 5, Color: colorGray}),
			),
			col.New(4).Add(
				text.New("_______________________", props.Text{Size: 8, Align: align.Center}),
				text.New("Responsable del programa", props.Text{Size: 7, Align: align.Center, Top: 5, Color: colorGray}),
			),
			col.New(4).Add(
				text.New("_______________________", props.Text{Size: 8, Align: align.Center}),
				text.New("Recibí conforme", props.Text{Size: 7, Align: align.Center, Top: 5, Color: colorGray}),
			),
		),
	}
}
