package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductoRequest entrada para crear un producto del programa.
type CreateProductoRequest struct {
	Nombre string `json:"nombre"`
	Unidad string `json:"unidad"`
}

// ProductoResponse salida de un producto.
type ProductoResponse struct {
	ID            string          `json:"id"`
	Programa      string          `json:"programa"`
	Nombre        string          `json:"nombre"`
	Unidad        string          `json:"unidad"`
	StockActual   decimal.Decimal `json:"stock_actual"`
	CostoPromedio decimal.Decimal `json:"costo_promedio"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateBeneficiarioRequest entrada para registrar un beneficiario.
type CreateBeneficiarioRequest struct {
	DNI       string `json:"dni"`
	Nombres   string `json:"nombres"`
	Apellidos string `json:"apellidos"`
	CentroID  string `json:"centro_id,omitempty"`
}

// BeneficiarioResponse salida de un beneficiario.
type BeneficiarioResponse struct {
	ID        string `json:"id"`
	Programa  string `json:"programa"`
	DNI       string `json:"dni"`
	Nombres   string `json:"nombres"`
	Apellidos string `json:"apellidos"`
	CentroID  string `json:"centro_id,omitempty"`
	Activo    bool   `json:"activo"`
}

// CreateCentroRequest entrada para registrar un centro de distribución.
type CreateCentroRequest struct {
	Nombre      string `json:"nombre"`
	Distrito    string `json:"distrito"`
	Responsable string `json:"responsable"`
}

// CentroResponse salida de un centro.
type CentroResponse struct {
	ID          string `json:"id"`
	Programa    string `json:"programa"`
	Nombre      string `json:"nombre"`
	Distrito    string `json:"distrito"`
	Responsable string `json:"responsable"`
	Activo      bool   `json:"activo"`
}
