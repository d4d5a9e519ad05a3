package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DestinoDTO contraparte de una línea de salida. Tipo decide qué campo va
// poblado: CENTRO → centro_id, BENEFICIARIO → beneficiario_id, TEXTO → texto.
type DestinoDTO struct {
	Tipo           string `json:"tipo"`
	CentroID       string `json:"centro_id,omitempty"`
	BeneficiarioID string `json:"beneficiario_id,omitempty"`
	Texto          string `json:"texto,omitempty"`
}

// IngresoRequest body para POST /api/inventario/ingresos.
type IngresoRequest struct {
	ProductoID    string          `json:"producto_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	CodigoLote    string          `json:"codigo_lote"`
	Vencimiento   *time.Time      `json:"vencimiento,omitempty"`
	Proveedor     string          `json:"proveedor"`
	DocReferencia string          `json:"doc_referencia,omitempty"`
}

// IngresoResponse resultado de un ingreso.
type IngresoResponse struct {
	LoteID     string          `json:"lote_id"`
	NuevoCosto decimal.Decimal `json:"nuevo_costo_promedio"`
	NuevoStock decimal.Decimal `json:"nuevo_stock"`
}

// LineaEmisionRequest una línea de la PECOSA a emitir.
type LineaEmisionRequest struct {
	ProductoID string          `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Destino    DestinoDTO      `json:"destino"`
}

// EmisionRequest body para POST /api/documentos.
type EmisionRequest struct {
	Lineas []LineaEmisionRequest `json:"lineas"`
}

// ReferenciaResponse referencia generada por una operación del ledger.
type ReferenciaResponse struct {
	Referencia string `json:"referencia"`
}

// AnulacionRequest body para POST /api/documentos/:referencia/anular.
type AnulacionRequest struct {
	Justificacion string `json:"justificacion"`
}

// TrasladoRequest body para POST /api/traslados.
type TrasladoRequest struct {
	Modo            string          `json:"modo"` // TRANSFERENCIA | PRESTAMO
	ProgramaDestino string          `json:"programa_destino"`
	ProductoID      string          `json:"producto_id"`
	LoteID          string          `json:"lote_id"`
	Cantidad        decimal.Decimal `json:"cantidad"`
	Nota            string          `json:"nota"`
}

// DevolucionRequest body para POST /api/traslados/devolucion.
type DevolucionRequest struct {
	MovimientoIngresoID string `json:"movimiento_ingreso_id"`
}

// EncoladoResponse respuesta cuando una mutación quedó en la cola offline.
type EncoladoResponse struct {
	Estado      string `json:"estado"` // siempre "encolado"
	OperacionID string `json:"operacion_id,omitempty"`
}

// MovimientoResponse un asiento del kardex.
type MovimientoResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	ProductoID  string          `json:"producto_id"`
	LoteID      string          `json:"lote_id,omitempty"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	CostoUnit   decimal.Decimal `json:"costo_unitario"`
	Referencia  string          `json:"referencia,omitempty"`
	Destino     DestinoDTO      `json:"destino"`
	Observacion string          `json:"observacion,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LoteResponse un lote con sus existencias.
type LoteResponse struct {
	ID              string          `json:"id"`
	Codigo          string          `json:"codigo"`
	Vencimiento     *time.Time      `json:"vencimiento,omitempty"`
	CantidadInicial decimal.Decimal `json:"cantidad_inicial"`
	CantidadActual  decimal.Decimal `json:"cantidad_actual"`
	CostoUnitario   decimal.Decimal `json:"costo_unitario"`
	Proveedor       string          `json:"proveedor,omitempty"`
}

// StockResponse stock de un producto con sus lotes.
type StockResponse struct {
	ProductoID    string          `json:"producto_id"`
	Nombre        string          `json:"nombre"`
	Unidad        string          `json:"unidad"`
	StockActual   decimal.Decimal `json:"stock_actual"`
	CostoPromedio decimal.Decimal `json:"costo_promedio"`
	Lotes         []LoteResponse  `json:"lotes"`
}

// LineaDocumentoResponse una línea del snapshot de reimpresión.
type LineaDocumentoResponse struct {
	Producto  string          `json:"producto"`
	Unidad    string          `json:"unidad"`
	Lote      string          `json:"lote"`
	Cantidad  decimal.Decimal `json:"cantidad"`
	CostoUnit decimal.Decimal `json:"costo_unitario"`
	Total     decimal.Decimal `json:"total"`
	Destino   string          `json:"destino"`
}

// DocumentoResponse snapshot de una PECOSA para reimpresión.
type DocumentoResponse struct {
	Referencia    string                   `json:"referencia"`
	Programa      string                   `json:"programa"`
	Estado        string                   `json:"estado"`
	Anulada       bool                     `json:"anulada"`
	Justificacion string                   `json:"justificacion,omitempty"`
	EmitidaAt     time.Time                `json:"emitida_at"`
	Lineas        []LineaDocumentoResponse `json:"lineas"`
	Total         decimal.Decimal          `json:"total"`
}
