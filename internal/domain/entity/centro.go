package entity

import "time"

// Centro es un punto de distribución (comedor popular, club de madres,
// establecimiento de salud). Es contraparte posible de un movimiento de salida.
type Centro struct {
	ID          string
	Programa    string
	Nombre      string
	Distrito    string
	Responsable string
	Activo      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
