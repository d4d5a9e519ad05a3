package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex. La dirección va en el tipo, nunca en el
// signo: Cantidad es siempre estrictamente positiva.
const (
	MovimientoIN  = "IN"  // ingreso
	MovimientoOUT = "OUT" // salida
)

// Tipos de destino/contraparte de un movimiento.
const (
	DestinoCentro       = "CENTRO"       // centro de distribución (comedor, club de madres)
	DestinoBeneficiario = "BENEFICIARIO" // paciente o beneficiario individual
	DestinoTexto        = "TEXTO"        // texto libre (proveedor, otro programa)
)

// Destino es la contraparte de un movimiento como variante etiquetada:
// exactamente uno de CentroID, BeneficiarioID o Texto está poblado según Tipo.
type Destino struct {
	Tipo           string
	CentroID       string
	BeneficiarioID string
	Texto          string
}

// DestinoDeCentro construye un destino hacia un centro de distribución.
func DestinoDeCentro(centroID string) Destino {
	return Destino{Tipo: DestinoCentro, CentroID: centroID}
}

// DestinoDeBeneficiario construye un destino hacia un beneficiario.
func DestinoDeBeneficiario(beneficiarioID string) Destino {
	return Destino{Tipo: DestinoBeneficiario, BeneficiarioID: beneficiarioID}
}

// DestinoDeTexto construye un destino de texto libre.
func DestinoDeTexto(texto string) Destino {
	return Destino{Tipo: DestinoTexto, Texto: texto}
}

// Movimiento es un asiento inmutable del kardex. Nunca se edita ni se borra:
// toda corrección es un movimiento compensatorio nuevo (la anulación de una
// PECOSA agrega movimientos IN contra los mismos lotes).
type Movimiento struct {
	ID          string
	Tipo        string // IN | OUT
	Programa    string
	ProductoID  string
	LoteID      string // vacío solo en asientos históricos sin lote
	Cantidad    decimal.Decimal
	CostoUnit   decimal.Decimal
	Referencia  string // referencia de PECOSA o traslado; vacío si suelto
	Destino     Destino
	Observacion string
	CreatedAt   time.Time
	CreatedBy   string
}
