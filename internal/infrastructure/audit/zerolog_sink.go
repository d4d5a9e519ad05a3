// Package audit emite la pista de auditoría de las operaciones del ledger.
package audit

import (
	"context"

	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/pkg/logger"
)

var _ ledger.AuditSink = (*ZerologSink)(nil)

// ZerologSink escribe cada evento de auditoría como una línea estructurada
// del log de la aplicación. La fuente de verdad contable sigue siendo el
// kardex; esto es trazabilidad operativa (quién hizo qué y cuándo).
type ZerologSink struct {
	log *logger.Logger
}

// NewZerologSink construye el sink.
func NewZerologSink(log *logger.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

// Registrar implementa ledger.AuditSink.
func (s *ZerologSink) Registrar(_ context.Context, actor, accion string, detalle map[string]any) {
	s.log.Info().
		Str("audit", accion).
		Str("actor", actor).
		Fields(detalle).
		Msg("auditoría")
}
