package offline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rvaldivia/almacen-pan/pkg/logger"
)

// Sonda verifica la conectividad con el almacén remoto (p.ej. pool.Ping).
type Sonda func(ctx context.Context) error

// Monitor sondea periódicamente la conectividad, expone el estado en
// línea/fuera de línea y dispara la sincronización de la cola al recuperar
// conexión y en cada pasada mientras haya pendientes. No cancela operaciones
// en vuelo: solo informa y reaplica.
type Monitor struct {
	sonda     Sonda
	cola      *Cola
	intervalo time.Duration
	maxPasada int
	log       *logger.Logger
	enLinea   atomic.Bool
}

// NewMonitor construye el monitor.
func NewMonitor(sonda Sonda, cola *Cola, intervalo time.Duration, maxPasada int, log *logger.Logger) *Monitor {
	if intervalo <= 0 {
		intervalo = 30 * time.Second
	}
	m := &Monitor{sonda: sonda, cola: cola, intervalo: intervalo, maxPasada: maxPasada, log: log}
	m.enLinea.Store(true)
	return m
}

// EnLinea indica el último estado conocido de conectividad.
func (m *Monitor) EnLinea() bool {
	return m.enLinea.Load()
}

// Iniciar arranca el bucle de sondeo hasta que ctx se cancele.
func (m *Monitor) Iniciar(ctx context.Context) {
	ticker := time.NewTicker(m.intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sondear(ctx)
		}
	}
}

func (m *Monitor) sondear(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.sonda(probeCtx); err != nil {
		if m.enLinea.Swap(false) {
			m.log.Warn().Err(err).Msg("almacén de datos inalcanzable, modo fuera de línea")
		}
		return
	}
	if !m.enLinea.Swap(true) {
		m.log.Info().Msg("conectividad recuperada")
	}

	pendientes, err := m.cola.store.Count(ctx)
	if err != nil || pendientes == 0 {
		return
	}
	if _, err := m.cola.Sincronizar(ctx, m.maxPasada); err != nil {
		m.log.Error().Err(err).Msg("sincronización periódica de la cola")
	}
}
