package repository

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// EnterpriseRepository define la persistencia de empresas (tenants).
type EnterpriseRepository interface {
	Create(ctx context.Context, enterprise *entity.Enterprise) error
	GetByID(ctx context.Context, id string) (*entity.Enterprise, error)
	GetByRUC(ctx context.Context, ruc string) (*entity.Enterprise, error)
	Update(ctx context.Context, enterprise *entity.Enterprise) error
	List(ctx context.Context) ([]*entity.Enterprise, error)
}
