package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrAlreadyAnnulled      = errors.New("el documento ya fue anulado")
	ErrInvalidJustification = errors.New("justificación demasiado corta")
	ErrSameProgram          = errors.New("programa origen y destino deben ser distintos")
	ErrUnparseableLoan      = errors.New("no se pudo reconstruir el préstamo desde el movimiento")
	ErrNothingToReturn      = errors.New("no hay cantidad pendiente por devolver")
)
