package entity

import "time"

// Beneficiario es una persona atendida por un programa (paciente PANTBC,
// beneficiario PVL...). Es contraparte posible de un movimiento de salida.
type Beneficiario struct {
	ID        string
	Programa  string
	DNI       string
	Nombres   string
	Apellidos string
	CentroID  string // centro de distribución que lo atiende (opcional)
	Activo    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
