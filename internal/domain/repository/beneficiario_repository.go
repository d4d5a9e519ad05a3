package repository

import (
	"context"

	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// BeneficiarioRepository define el puerto de persistencia para el padrón de
// beneficiarios/pacientes.
type BeneficiarioRepository interface {
	Create(ctx context.Context, b *entity.Beneficiario) error
	GetByID(ctx context.Context, id string) (*entity.Beneficiario, error)
	GetByDNI(ctx context.Context, programa, dni string) (*entity.Beneficiario, error)
	Update(ctx context.Context, b *entity.Beneficiario) error
	ListByPrograma(ctx context.Context, programa string, limit, offset int) ([]*entity.Beneficiario, error)
}
