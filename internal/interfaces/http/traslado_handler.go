package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/dto"
	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/application/offline"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

// TrasladoHandler maneja traslados entre programas y devoluciones de
// préstamo (protegido). Ambas mutaciones pasan por la cola offline.
type TrasladoHandler struct {
	uc        *ledger.TrasladoUseCase
	prestamos repository.PrestamoRepository
	cola      *offline.Cola
}

// NewTrasladoHandler construye el handler.
func NewTrasladoHandler(uc *ledger.TrasladoUseCase, prestamos repository.PrestamoRepository, cola *offline.Cola) *TrasladoHandler {
	return &TrasladoHandler{uc: uc, prestamos: prestamos, cola: cola}
}

// Trasladar POST /api/traslados
func (h *TrasladoHandler) Trasladar(c *fiber.Ctx) error {
	var in dto.TrasladoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.TrasladoInput{
		Modo:            in.Modo,
		ProgramaOrigen:  GetPrograma(c),
		ProgramaDestino: in.ProgramaDestino,
		ProductoID:      in.ProductoID,
		LoteID:          in.LoteID,
		Cantidad:        in.Cantidad,
		Nota:            in.Nota,
		UsuarioID:       GetUserID(c),
	}

	var referencia string
	encolado, err := h.cola.Interceptar(c.Context(), offline.OpTrasladar, input, func() error {
		var ucErr error
		referencia, ucErr = h.uc.Trasladar(c.Context(), input)
		return ucErr
	})
	if err != nil {
		return respondError(c, err)
	}
	if encolado {
		return c.Status(fiber.StatusAccepted).JSON(dto.EncoladoResponse{Estado: "encolado"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReferenciaResponse{Referencia: referencia})
}

// devolucionPayload es la devolución tal como viaja por la cola.
type devolucionPayload struct {
	MovimientoIngresoID string `json:"movimiento_ingreso_id"`
	UsuarioID           string `json:"usuario_id"`
}

// Devolver POST /api/traslados/devolucion
func (h *TrasladoHandler) Devolver(c *fiber.Ctx) error {
	var in dto.DevolucionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	payload := devolucionPayload{
		MovimientoIngresoID: in.MovimientoIngresoID,
		UsuarioID:           GetUserID(c),
	}

	var referencia string
	encolado, err := h.cola.Interceptar(c.Context(), offline.OpDevolverPrestamo, payload, func() error {
		var ucErr error
		referencia, ucErr = h.uc.DevolverPrestamo(c.Context(), payload.MovimientoIngresoID, payload.UsuarioID)
		return ucErr
	})
	if err != nil {
		return respondError(c, err)
	}
	if encolado {
		return c.Status(fiber.StatusAccepted).JSON(dto.EncoladoResponse{Estado: "encolado"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReferenciaResponse{Referencia: referencia})
}

// PrestamosPendientes GET /api/traslados/prestamos
func (h *TrasladoHandler) PrestamosPendientes(c *fiber.Ctx) error {
	prestamos, err := h.prestamos.ListPendientes(c.Context(), GetPrograma(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"prestamos": prestamos, "total": len(prestamos)})
}
