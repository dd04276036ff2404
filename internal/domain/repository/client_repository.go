package repository

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// ClientRepository define la persistencia de clientes.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByIdentNumber(ctx context.Context, enterpriseID, identNumber string) (*entity.Client, error)
	List(ctx context.Context, enterpriseID string) ([]*entity.Client, error)
}
