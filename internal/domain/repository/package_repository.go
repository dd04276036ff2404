package repository

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// PackageRepository define la persistencia de encomiendas.
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	GetByID(ctx context.Context, id string) (*entity.Package, error)
	GetByGuideNumber(ctx context.Context, enterpriseID, guideNumber string) (*entity.Package, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByEnterprise(ctx context.Context, enterpriseID string, limit, offset int) ([]*entity.Package, error)
	// NextGuideNumber reserva el siguiente número de guía de la agencia.
	NextGuideNumber(ctx context.Context, enterpriseID, agencyID string) (string, error)
}
