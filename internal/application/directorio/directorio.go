// Package directorio administra los catálogos de cada programa: productos,
// beneficiarios y centros de distribución. Son los maestros contra los que el
// ledger valida sus operaciones.
package directorio

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvaldivia/almacen-pan/internal/domain"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
	"github.com/rvaldivia/almacen-pan/internal/domain/repository"
)

// UseCase CRUD de los catálogos del programa.
type UseCase struct {
	productos     repository.ProductoRepository
	beneficiarios repository.BeneficiarioRepository
	centros       repository.CentroRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	productos repository.ProductoRepository,
	beneficiarios repository.BeneficiarioRepository,
	centros repository.CentroRepository,
) *UseCase {
	return &UseCase{productos: productos, beneficiarios: beneficiarios, centros: centros}
}

// CrearProducto da de alta un producto del programa con stock cero.
func (uc *UseCase) CrearProducto(ctx context.Context, programa, nombre, unidad string) (*entity.Producto, error) {
	nombre = strings.TrimSpace(nombre)
	unidad = strings.TrimSpace(unidad)
	if programa == "" || nombre == "" || unidad == "" {
		return nil, domain.ErrInvalidInput
	}
	existente, err := uc.productos.GetEquivalente(ctx, programa, nombre, unidad)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	producto := &entity.Producto{
		ID:        uuid.New().String(),
		Programa:  programa,
		Nombre:    nombre,
		Unidad:    unidad,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.productos.Create(ctx, producto); err != nil {
		return nil, err
	}
	return producto, nil
}

// GetProducto obtiene un producto del programa.
func (uc *UseCase) GetProducto(ctx context.Context, programa, id string) (*entity.Producto, error) {
	producto, err := uc.productos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if producto == nil || producto.Programa != programa {
		return nil, domain.ErrNotFound
	}
	return producto, nil
}

// ListProductos lista los productos del programa.
func (uc *UseCase) ListProductos(ctx context.Context, programa string, limit, offset int) ([]*entity.Producto, error) {
	return uc.productos.ListByPrograma(ctx, programa, limit, offset)
}

// CrearBeneficiario registra un beneficiario en el padrón del programa.
func (uc *UseCase) CrearBeneficiario(ctx context.Context, programa, dni, nombres, apellidos, centroID string) (*entity.Beneficiario, error) {
	dni = strings.TrimSpace(dni)
	if programa == "" || dni == "" || strings.TrimSpace(nombres) == "" {
		return nil, domain.ErrInvalidInput
	}
	existente, err := uc.beneficiarios.GetByDNI(ctx, programa, dni)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, domain.ErrDuplicate
	}
	if centroID != "" {
		centro, err := uc.centros.GetByID(ctx, centroID)
		if err != nil {
			return nil, err
		}
		if centro == nil || centro.Programa != programa {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	b := &entity.Beneficiario{
		ID:        uuid.New().String(),
		Programa:  programa,
		DNI:       dni,
		Nombres:   strings.TrimSpace(nombres),
		Apellidos: strings.TrimSpace(apellidos),
		CentroID:  centroID,
		Activo:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.beneficiarios.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBeneficiarios lista el padrón del programa.
func (uc *UseCase) ListBeneficiarios(ctx context.Context, programa string, limit, offset int) ([]*entity.Beneficiario, error) {
	return uc.beneficiarios.ListByPrograma(ctx, programa, limit, offset)
}

// CrearCentro registra un centro de distribución del programa.
func (uc *UseCase) CrearCentro(ctx context.Context, programa, nombre, distrito, responsable string) (*entity.Centro, error) {
	nombre = strings.TrimSpace(nombre)
	if programa == "" || nombre == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	c := &entity.Centro{
		ID:          uuid.New().String(),
		Programa:    programa,
		Nombre:      nombre,
		Distrito:    strings.TrimSpace(distrito),
		Responsable: strings.TrimSpace(responsable),
		Activo:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.centros.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCentros lista los centros del programa.
func (uc *UseCase) ListCentros(ctx context.Context, programa string, limit, offset int) ([]*entity.Centro, error) {
	return uc.centros.ListByPrograma(ctx, programa, limit, offset)
}
