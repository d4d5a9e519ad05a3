package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/offline"
)

// OfflineHandler expone la cola de operaciones pendientes: sincronización
// manual e inspección (protegido).
type OfflineHandler struct {
	cola    *offline.Cola
	monitor *offline.Monitor
}

// NewOfflineHandler construye el handler.
func NewOfflineHandler(cola *offline.Cola, monitor *offline.Monitor) *OfflineHandler {
	return &OfflineHandler{cola: cola, monitor: monitor}
}

// Sincronizar POST /api/offline/sync?max=N
func (h *OfflineHandler) Sincronizar(c *fiber.Ctx) error {
	max := c.QueryInt("max", 50)
	resultado, err := h.cola.Sincronizar(c.Context(), max)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resultado)
}

// Pendientes GET /api/offline/pendientes
func (h *OfflineHandler) Pendientes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	ops, err := h.cola.Pendientes(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(ops))
	for _, op := range ops {
		out = append(out, fiber.Map{
			"id":         op.ID,
			"tipo":       op.Tipo,
			"intentos":   op.Intentos,
			"created_at": op.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{
		"en_linea":   h.monitor.EnLinea(),
		"pendientes": out,
		"total":      len(out),
	})
}
