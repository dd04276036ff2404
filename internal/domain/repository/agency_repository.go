package repository

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// AgencyRepository define la persistencia de agencias.
type AgencyRepository interface {
	Create(ctx context.Context, agency *entity.Agency) error
	GetByID(ctx context.Context, id string) (*entity.Agency, error)
	List(ctx context.Context, enterpriseID string) ([]*entity.Agency, error)
}
