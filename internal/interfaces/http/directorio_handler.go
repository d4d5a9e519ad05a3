package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/directorio"
	"github.com/rvaldivia/almacen-pan/internal/application/dto"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// DirectorioHandler maneja los catálogos del programa: productos,
// beneficiarios y centros (protegido).
type DirectorioHandler struct {
	uc *directorio.UseCase
}

// NewDirectorioHandler construye el handler.
func NewDirectorioHandler(uc *directorio.UseCase) *DirectorioHandler {
	return &DirectorioHandler{uc: uc}
}

// CreateProducto POST /api/productos
func (h *DirectorioHandler) CreateProducto(c *fiber.Ctx) error {
	var in dto.CreateProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	producto, err := h.uc.CrearProducto(c.Context(), GetPrograma(c), in.Nombre, in.Unidad)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductoResponse(producto))
}

// GetProducto GET /api/productos/:id
func (h *DirectorioHandler) GetProducto(c *fiber.Ctx) error {
	producto, err := h.uc.GetProducto(c.Context(), GetPrograma(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductoResponse(producto))
}

// ListProductos GET /api/productos
func (h *DirectorioHandler) ListProductos(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	productos, err := h.uc.ListProductos(c.Context(), GetPrograma(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, toProductoResponse(p))
	}
	return c.JSON(fiber.Map{"productos": out, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// CreateBeneficiario POST /api/beneficiarios
func (h *DirectorioHandler) CreateBeneficiario(c *fiber.Ctx) error {
	var in dto.CreateBeneficiarioRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.CrearBeneficiario(c.Context(), GetPrograma(c), in.DNI, in.Nombres, in.Apellidos, in.CentroID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBeneficiarioResponse(b))
}

// ListBeneficiarios GET /api/beneficiarios
func (h *DirectorioHandler) ListBeneficiarios(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListBeneficiarios(c.Context(), GetPrograma(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BeneficiarioResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBeneficiarioResponse(b))
	}
	return c.JSON(fiber.Map{"beneficiarios": out, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// CreateCentro POST /api/centros
func (h *DirectorioHandler) CreateCentro(c *fiber.Ctx) error {
	var in dto.CreateCentroRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	centro, err := h.uc.CrearCentro(c.Context(), GetPrograma(c), in.Nombre, in.Distrito, in.Responsable)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCentroResponse(centro))
}

// ListCentros GET /api/centros
func (h *DirectorioHandler) ListCentros(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListCentros(c.Context(), GetPrograma(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CentroResponse, 0, len(list))
	for _, centro := range list {
		out = append(out, toCentroResponse(centro))
	}
	return c.JSON(fiber.Map{"centros": out, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

func toProductoResponse(p *entity.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:            p.ID,
		Programa:      p.Programa,
		Nombre:        p.Nombre,
		Unidad:        p.Unidad,
		StockActual:   p.StockActual,
		CostoPromedio: p.CostoPromedio,
		CreatedAt:     p.CreatedAt,
	}
}

func toBeneficiarioResponse(b *entity.Beneficiario) dto.BeneficiarioResponse {
	return dto.BeneficiarioResponse{
		ID:        b.ID,
		Programa:  b.Programa,
		DNI:       b.DNI,
		Nombres:   b.Nombres,
		Apellidos: b.Apellidos,
		CentroID:  b.CentroID,
		Activo:    b.Activo,
	}
}

func toCentroResponse(c *entity.Centro) dto.CentroResponse {
	return dto.CentroResponse{
		ID:          c.ID,
		Programa:    c.Programa,
		Nombre:      c.Nombre,
		Distrito:    c.Distrito,
		Responsable: c.Responsable,
		Activo:      c.Activo,
	}
}
