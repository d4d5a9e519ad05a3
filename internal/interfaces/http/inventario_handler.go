package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/dto"
	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/application/offline"
	"github.com/rvaldivia/almacen-pan/internal/application/reports"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// InventarioHandler maneja ingresos de stock y las lecturas del kardex
// (protegido). Los ingresos pasan por la cola offline: si el almacén de datos
// no responde, la operación queda encolada y el cliente recibe 202.
type InventarioHandler struct {
	ingreso *ledger.IngresoUseCase
	kardex  *reports.KardexUseCase
	cola    *offline.Cola
}

// NewInventarioHandler construye el handler.
func NewInventarioHandler(ingreso *ledger.IngresoUseCase, kardex *reports.KardexUseCase, cola *offline.Cola) *InventarioHandler {
	return &InventarioHandler{ingreso: ingreso, kardex: kardex, cola: cola}
}

// RegistrarIngreso POST /api/inventario/ingresos
func (h *InventarioHandler) RegistrarIngreso(c *fiber.Ctx) error {
	var in dto.IngresoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.IngresoInput{
		Programa:      GetPrograma(c),
		ProductoID:    in.ProductoID,
		Cantidad:      in.Cantidad,
		CostoUnitario: in.CostoUnitario,
		CodigoLote:    in.CodigoLote,
		Vencimiento:   in.Vencimiento,
		Proveedor:     in.Proveedor,
		DocReferencia: in.DocReferencia,
		UsuarioID:     GetUserID(c),
	}

	var result *ledger.IngresoResult
	encolado, err := h.cola.Interceptar(c.Context(), offline.OpRegistrarIngreso, input, func() error {
		var ucErr error
		result, ucErr = h.ingreso.RegistrarIngreso(c.Context(), input)
		return ucErr
	})
	if err != nil {
		return respondError(c, err)
	}
	if encolado {
		return c.Status(fiber.StatusAccepted).JSON(dto.EncoladoResponse{Estado: "encolado"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IngresoResponse{
		LoteID:     result.LoteID,
		NuevoCosto: result.NuevoCosto,
		NuevoStock: result.NuevoStock,
	})
}

// Stock GET /api/inventario/stock
func (h *InventarioHandler) Stock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	resumen, err := h.kardex.StockPrograma(c.Context(), GetPrograma(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(resumen))
	for _, r := range resumen {
		out = append(out, toStockResponse(r))
	}
	return c.JSON(fiber.Map{"stock": out, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Kardex GET /api/inventario/kardex?producto_id=...&desde=...&hasta=...
func (h *InventarioHandler) Kardex(c *fiber.Ctx) error {
	productoID := c.Query("producto_id")
	if productoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "producto_id es obligatorio"})
	}
	desde, hasta, err := rangoDeFechas(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas inválidas (RFC3339 o 2006-01-02)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	movs, err := h.kardex.Kardex(c.Context(), productoID, desde, hasta, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovimientoResponse(m))
	}
	return c.JSON(fiber.Map{"movimientos": out, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// ExportarKardex GET /api/inventario/kardex/export?producto_id=...
func (h *InventarioHandler) ExportarKardex(c *fiber.Ctx) error {
	productoID := c.Query("producto_id")
	if productoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "producto_id es obligatorio"})
	}
	desde, hasta, err := rangoDeFechas(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas inválidas (RFC3339 o 2006-01-02)"})
	}
	archivo, err := h.kardex.ExportarKardex(c.Context(), productoID, desde, hasta)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex.xlsx"`)
	return c.Send(archivo)
}

// rangoDeFechas parsea desde/hasta de la query (RFC3339 o fecha simple).
func rangoDeFechas(c *fiber.Ctx) (desde, hasta *time.Time, err error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	if desde, err = parse(c.Query("desde")); err != nil {
		return nil, nil, err
	}
	if hasta, err = parse(c.Query("hasta")); err != nil {
		return nil, nil, err
	}
	return desde, hasta, nil
}

func toStockResponse(r reports.ResumenStock) dto.StockResponse {
	lotes := make([]dto.LoteResponse, 0, len(r.Lotes))
	for _, l := range r.Lotes {
		lotes = append(lotes, dto.LoteResponse{
			ID:              l.ID,
			Codigo:          l.Codigo,
			Vencimiento:     l.Vencimiento,
			CantidadInicial: l.CantidadInicial,
			CantidadActual:  l.CantidadActual,
			CostoUnitario:   l.CostoUnitario,
			Proveedor:       l.Proveedor,
		})
	}
	return dto.StockResponse{
		ProductoID:    r.Producto.ID,
		Nombre:        r.Producto.Nombre,
		Unidad:        r.Producto.Unidad,
		StockActual:   r.Producto.StockActual,
		CostoPromedio: r.Producto.CostoPromedio,
		Lotes:         lotes,
	}
}

func toMovimientoResponse(m *entity.Movimiento) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:         m.ID,
		Tipo:       m.Tipo,
		ProductoID: m.ProductoID,
		LoteID:     m.LoteID,
		Cantidad:   m.Cantidad,
		CostoUnit:  m.CostoUnit,
		Referencia: m.Referencia,
		Destino: dto.DestinoDTO{
			Tipo:           m.Destino.Tipo,
			CentroID:       m.Destino.CentroID,
			BeneficiarioID: m.Destino.BeneficiarioID,
			Texto:          m.Destino.Texto,
		},
		Observacion: m.Observacion,
		CreatedAt:   m.CreatedAt,
	}
}
