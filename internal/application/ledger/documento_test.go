package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

func buildDocumentoUC(s *memStore) *ledger.DocumentoUseCase {
	repos := s.repos()
	return ledger.NewDocumentoUseCase(
		&fakeTxRunner{s}, nopAudit{},
		repos.Documentos, repos.Movimientos, repos.Productos, repos.Lotes,
		&fakeCentroRepo{}, &fakeBeneficiarioRepo{},
	)
}

// sembrarArrozConDosLotes deja un producto PVL con dos lotes: el más próximo a
// vencer fue creado DESPUÉS, para distinguir FEFO de FIFO.
func sembrarArrozConDosLotes(s *memStore) (productoID, loteLejano, loteProximo string) {
	base := time.Now().Add(-48 * time.Hour)
	producto := &entity.Producto{
		ID:            "prod-arroz",
		Programa:      "PVL",
		Nombre:        "Arroz superior",
		Unidad:        "kg",
		CostoPromedio: d("3.50"),
		CreatedAt:     base,
	}
	lejano := &entity.Lote{
		ID:             "lote-lejano",
		Codigo:         "L-001",
		Vencimiento:    fecha(90),
		CantidadActual: d("60"),
		CostoUnitario:  d("3.20"),
		CreatedAt:      base,
	}
	proximo := &entity.Lote{
		ID:             "lote-proximo",
		Codigo:         "L-002",
		Vencimiento:    fecha(10),
		CantidadActual: d("40"),
		CostoUnitario:  d("3.80"),
		CreatedAt:      base.Add(time.Hour),
	}
	sembrarProducto(s, producto, lejano, proximo)
	return producto.ID, lejano.ID, proximo.ID
}

func TestEmitirDocumento_FEFOYReferencia(t *testing.T) {
	s := newMemStore()
	productoID, loteLejano, loteProximo := sembrarArrozConDosLotes(s)
	uc := buildDocumentoUC(s)

	// 50 unidades: agota el lote próximo a vencer (40) y toma 10 del lejano.
	referencia, err := uc.EmitirDocumento(context.Background(), ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("50"), Destino: entity.DestinoDeTexto("Comedor San Juan")},
		},
		UsuarioID: "user-1",
	})
	require.NoError(t, err)

	esperada := fmt.Sprintf("PEC-PVL-%d-000001", time.Now().Year())
	assert.Equal(t, esperada, referencia, "la referencia debe ser serie-programa-año-correlativo")

	// FEFO: primero el lote con vencimiento más próximo aunque sea más nuevo.
	assert.True(t, s.lotes[loteProximo].CantidadActual.IsZero(),
		"el lote próximo a vencer debe agotarse primero")
	assert.True(t, s.lotes[loteLejano].CantidadActual.Equal(d("50")),
		"el lote lejano solo debe ceder el resto")

	// Stock derivado y costo promedio: la salida descuenta stock, nunca costo.
	producto := s.productos[productoID]
	assert.True(t, producto.StockActual.Equal(d("50")))
	assert.True(t, producto.CostoPromedio.Equal(d("3.50")),
		"una salida no debe tocar el costo promedio")

	// Un movimiento OUT por lote tocado, ambos con la referencia del documento.
	outs := 0
	for _, m := range s.movimientos {
		if m.Tipo == entity.MovimientoOUT {
			outs++
			assert.Equal(t, referencia, m.Referencia)
		}
	}
	assert.Equal(t, 2, outs)

	doc := s.documentos[referencia]
	require.NotNil(t, doc)
	assert.Equal(t, entity.DocumentoEmitida, doc.Estado)
	assert.Equal(t, "user-1", doc.CreatedBy)
}

func TestEmitirDocumento_StockInsuficiente_NadaSeConfirma(t *testing.T) {
	s := newMemStore()
	productoID, _, _ := sembrarArrozConDosLotes(s) // 100 en total
	uc := buildDocumentoUC(s)

	_, err := uc.EmitirDocumento(context.Background(), ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("30"), Destino: entity.DestinoDeTexto("Comedor A")},
			{ProductoID: productoID, Cantidad: d("80"), Destino: entity.DestinoDeTexto("Comedor B")},
		},
		UsuarioID: "user-1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock,
		"la demanda agregada (110) supera el stock (100)")

	// Todo o nada: ni movimientos, ni documento, ni stock tocado.
	assert.Empty(t, s.movimientos)
	assert.Empty(t, s.documentos)
	assert.True(t, s.productos[productoID].StockActual.Equal(d("100")))

	// El correlativo tampoco debe consumirse: la siguiente emisión es 000001.
	referencia, err := uc.EmitirDocumento(context.Background(), ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("10"), Destino: entity.DestinoDeTexto("Comedor A")},
		},
		UsuarioID: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PEC-PVL-%d-000001", time.Now().Year()), referencia)
}

func TestEmitirDocumento_ReferenciasCorrelativasPorPrograma(t *testing.T) {
	s := newMemStore()
	productoID, _, _ := sembrarArrozConDosLotes(s)
	otro := &entity.Producto{ID: "prod-avena", Programa: "PANTBC", Nombre: "Avena", Unidad: "kg"}
	sembrarProducto(s, otro, &entity.Lote{ID: "lote-avena", Codigo: "A-1", CantidadActual: d("20"), CostoUnitario: d("2"), CreatedAt: time.Now()})
	uc := buildDocumentoUC(s)

	emitir := func(programa, producto string) string {
		ref, err := uc.EmitirDocumento(context.Background(), ledger.EmisionInput{
			Programa: programa,
			Lineas: []ledger.LineaEmision{
				{ProductoID: producto, Cantidad: d("1"), Destino: entity.DestinoDeTexto("X")},
			},
			UsuarioID: "user-1",
		})
		require.NoError(t, err)
		return ref
	}

	anio := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("PEC-PVL-%d-000001", anio), emitir("PVL", productoID))
	assert.Equal(t, fmt.Sprintf("PEC-PVL-%d-000002", anio), emitir("PVL", productoID))
	// Cada programa lleva su propio correlativo.
	assert.Equal(t, fmt.Sprintf("PEC-PANTBC-%d-000001", anio), emitir("PANTBC", "prod-avena"))
}

func TestEmitirDocumento_EntradasInvalidas(t *testing.T) {
	s := newMemStore()
	productoID, _, _ := sembrarArrozConDosLotes(s)
	uc := buildDocumentoUC(s)
	ctx := context.Background()

	_, err := uc.EmitirDocumento(ctx, ledger.EmisionInput{Programa: "PVL", UsuarioID: "u"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas no hay documento")

	_, err = uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("0"), Destino: entity.DestinoDeTexto("X")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("1"), Destino: entity.Destino{Tipo: "OTRO"}},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "destino sin variante conocida")

	_, err = uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PANTBC",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("1"), Destino: entity.DestinoDeTexto("X")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el producto pertenece a otro programa")
}

func TestAnularDocumento_CompensaYRestituye(t *testing.T) {
	s := newMemStore()
	productoID, loteLejano, loteProximo := sembrarArrozConDosLotes(s)
	uc := buildDocumentoUC(s)
	ctx := context.Background()

	referencia, err := uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("50"), Destino: entity.DestinoDeTexto("Comedor San Juan")},
		},
		UsuarioID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, uc.AnularDocumento(ctx, referencia, "error de digitación en cantidades", "user-2"))

	doc := s.documentos[referencia]
	assert.Equal(t, entity.DocumentoAnulada, doc.Estado)
	assert.Equal(t, "error de digitación en cantidades", doc.Justificacion)
	assert.Equal(t, "user-2", doc.AnuladaBy)
	require.NotNil(t, doc.AnuladaAt)

	// Stock y lotes restituidos exactamente.
	assert.True(t, s.productos[productoID].StockActual.Equal(d("100")))
	assert.True(t, s.lotes[loteProximo].CantidadActual.Equal(d("40")))
	assert.True(t, s.lotes[loteLejano].CantidadActual.Equal(d("60")))

	// El kardex conserva los OUT originales y suma un IN compensatorio por cada uno.
	var ins, outs int
	for _, m := range s.movimientos {
		switch m.Tipo {
		case entity.MovimientoIN:
			ins++
			assert.Contains(t, m.Observacion, "Anulación de "+referencia)
		case entity.MovimientoOUT:
			outs++
		}
	}
	assert.Equal(t, 2, outs, "los movimientos originales nunca se borran")
	assert.Equal(t, 2, ins, "un compensatorio por cada salida")
}

func TestAnularDocumento_DobleAnulacion(t *testing.T) {
	s := newMemStore()
	productoID, _, _ := sembrarArrozConDosLotes(s)
	uc := buildDocumentoUC(s)
	ctx := context.Background()

	referencia, err := uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("10"), Destino: entity.DestinoDeTexto("X")},
		},
		UsuarioID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, uc.AnularDocumento(ctx, referencia, "justificación válida", "user-1"))
	err = uc.AnularDocumento(ctx, referencia, "segundo intento de anulación", "user-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyAnnulled)

	// El stock no debe restituirse dos veces.
	assert.True(t, s.productos[productoID].StockActual.Equal(d("100")))
}

func TestAnularDocumento_Validaciones(t *testing.T) {
	s := newMemStore()
	uc := buildDocumentoUC(s)
	ctx := context.Background()

	err := uc.AnularDocumento(ctx, "PEC-PVL-2026-000001", "abc", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidJustification, "justificación menor al mínimo")

	err = uc.AnularDocumento(ctx, "PEC-PVL-2026-000099", "justificación válida", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReimprimirDocumento(t *testing.T) {
	s := newMemStore()
	productoID, _, _ := sembrarArrozConDosLotes(s)
	uc := buildDocumentoUC(s)
	ctx := context.Background()

	referencia, err := uc.EmitirDocumento(ctx, ledger.EmisionInput{
		Programa: "PVL",
		Lineas: []ledger.LineaEmision{
			{ProductoID: productoID, Cantidad: d("50"), Destino: entity.DestinoDeTexto("Comedor San Juan")},
		},
		UsuarioID: "user-1",
	})
	require.NoError(t, err)

	snap, err := uc.ReimprimirDocumento(ctx, referencia)
	require.NoError(t, err)
	assert.Equal(t, referencia, snap.Referencia)
	assert.False(t, snap.Anulada)
	require.Len(t, snap.Lineas, 2, "una línea por lote tocado")
	for _, linea := range snap.Lineas {
		assert.Equal(t, "Arroz superior", linea.Producto)
		assert.Equal(t, "Comedor San Juan", linea.Destino)
		assert.True(t, linea.Total.Equal(linea.Cantidad.Mul(linea.CostoUnit)))
	}
	// 40 × 3.80 + 10 × 3.20 = 184
	assert.True(t, snap.Total.Equal(d("184")), "total valorizado al costo de cada lote")

	// Tras anular, la reimpresión muestra las mismas líneas con la marca visible;
	// los compensatorios IN no aparecen como líneas.
	require.NoError(t, uc.AnularDocumento(ctx, referencia, "revisión de auditoría", "user-2"))
	snap, err = uc.ReimprimirDocumento(ctx, referencia)
	require.NoError(t, err)
	assert.True(t, snap.Anulada)
	assert.Equal(t, "revisión de auditoría", snap.Justificacion)
	assert.Len(t, snap.Lineas, 2)
	assert.True(t, snap.Total.Equal(d("184")))
}

func TestReimprimirDocumento_NoExiste(t *testing.T) {
	s := newMemStore()
	uc := buildDocumentoUC(s)

	_, err := uc.ReimprimirDocumento(context.Background(), "PEC-PVL-2026-000404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
