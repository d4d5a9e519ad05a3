package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/dto"
	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/application/offline"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// PecosaRenderer renderiza el snapshot de una PECOSA a PDF.
type PecosaRenderer interface {
	GenerarPecosaPDF(ctx context.Context, snap *ledger.DocumentoSnapshot) ([]byte, error)
}

// DocumentoHandler maneja el ciclo de vida de las PECOSAs (protegido).
// Emisión y anulación pasan por la cola offline.
type DocumentoHandler struct {
	uc   *ledger.DocumentoUseCase
	cola *offline.Cola
	pdf  PecosaRenderer
}

// NewDocumentoHandler construye el handler.
func NewDocumentoHandler(uc *ledger.DocumentoUseCase, cola *offline.Cola, pdf PecosaRenderer) *DocumentoHandler {
	return &DocumentoHandler{uc: uc, cola: cola, pdf: pdf}
}

// Emitir POST /api/documentos
func (h *DocumentoHandler) Emitir(c *fiber.Ctx) error {
	var in dto.EmisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.EmisionInput{
		Programa:  GetPrograma(c),
		UsuarioID: GetUserID(c),
	}
	for _, linea := range in.Lineas {
		input.Lineas = append(input.Lineas, ledger.LineaEmision{
			ProductoID: linea.ProductoID,
			Cantidad:   linea.Cantidad,
			Destino: entity.Destino{
				Tipo:           linea.Destino.Tipo,
				CentroID:       linea.Destino.CentroID,
				BeneficiarioID: linea.Destino.BeneficiarioID,
				Texto:          linea.Destino.Texto,
			},
		})
	}

	var referencia string
	encolado, err := h.cola.Interceptar(c.Context(), offline.OpEmitirDocumento, input, func() error {
		var ucErr error
		referencia, ucErr = h.uc.EmitirDocumento(c.Context(), input)
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

// anulacionPayload es la operación de anulación tal como viaja por la cola.
type anulacionPayload struct {
	Referencia    string `json:"referencia"`
	Justificacion string `json:"justificacion"`
	UsuarioID     string `json:"usuario_id"`
}

// Anular POST /api/documentos/:referencia/anular
func (h *DocumentoHandler) Anular(c *fiber.Ctx) error {
	var in dto.AnulacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	payload := anulacionPayload{
		Referencia:    c.Params("referencia"),
		Justificacion: in.Justificacion,
		UsuarioID:     GetUserID(c),
	}

	encolado, err := h.cola.Interceptar(c.Context(), offline.OpAnularDocumento, payload, func() error {
		return h.uc.AnularDocumento(c.Context(), payload.Referencia, payload.Justificacion, payload.UsuarioID)
	})
	if err != nil {
		return respondError(c, err)
	}
	if encolado {
		return c.Status(fiber.StatusAccepted).JSON(dto.EncoladoResponse{Estado: "encolado"})
	}
	return c.JSON(fiber.Map{"message": "documento anulado"})
}

// Reimprimir GET /api/documentos/:referencia
func (h *DocumentoHandler) Reimprimir(c *fiber.Ctx) error {
	snap, err := h.uc.ReimprimirDocumento(c.Context(), c.Params("referencia"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDocumentoResponse(snap))
}

// PDF GET /api/documentos/:referencia/pdf
func (h *DocumentoHandler) PDF(c *fiber.Ctx) error {
	snap, err := h.uc.ReimprimirDocumento(c.Context(), c.Params("referencia"))
	if err != nil {
		return respondError(c, err)
	}
	archivo, err := h.pdf.GenerarPecosaPDF(c.Context(), snap)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+snap.Referencia+`.pdf"`)
	return c.Send(archivo)
}

func toDocumentoResponse(snap *ledger.DocumentoSnapshot) dto.DocumentoResponse {
	out := dto.DocumentoResponse{
		Referencia:    snap.Referencia,
		Programa:      snap.Programa,
		Estado:        snap.Estado,
		Anulada:       snap.Anulada,
		Justificacion: snap.Justificacion,
		EmitidaAt:     snap.EmitidaAt,
		Total:         snap.Total,
	}
	for _, l := range snap.Lineas {
		out.Lineas = append(out.Lineas, dto.LineaDocumentoResponse{
			Producto:  l.Producto,
			Unidad:    l.Unidad,
			Lote:      l.LoteCodigo,
			Cantidad:  l.Cantidad,
			CostoUnit: l.CostoUnit,
			Total:     l.Total,
			Destino:   l.Destino,
		})
	}
	return out
}
