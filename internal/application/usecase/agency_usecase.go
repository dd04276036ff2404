package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
)

// AgencyUseCase aplica reglas de negocio para agencias (sucursales).
type AgencyUseCase struct {
	repo repository.AgencyRepository
}

// NewAgencyUseCase construye el caso de uso con el puerto de persistencia.
func NewAgencyUseCase(repo repository.AgencyRepository) *AgencyUseCase {
	return &AgencyUseCase{repo: repo}
}

// Create crea una agencia para la empresa del token.
func (uc *AgencyUseCase) Create(ctx context.Context, enterpriseID string, in dto.CreateAgencyRequest) (*dto.AgencyResponse, error) {
	if in.Name == "" || in.City == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	agency := &entity.Agency{
		ID:           uuid.New().String(),
		EnterpriseID: enterpriseID,
		Name:         in.Name,
		City:         in.City,
		Address:      in.Address,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, agency); err != nil {
		return nil, err
	}
	return entityToAgencyResponse(agency), nil
}

// GetByID obtiene una agencia; valida que pertenezca a la empresa del token.
func (uc *AgencyUseCase) GetByID(ctx context.Context, enterpriseID, id string) (*dto.AgencyResponse, error) {
	agency, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrNotFound
	}
	if agency.EnterpriseID != enterpriseID {
		return nil, domain.ErrForbidden
	}
	return entityToAgencyResponse(agency), nil
}

// List lista las agencias de la empresa.
func (uc *AgencyUseCase) List(ctx context.Context, enterpriseID string) ([]*dto.AgencyResponse, error) {
	list, err := uc.repo.List(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.AgencyResponse, 0, len(list))
	for _, a := range list {
		items = append(items, entityToAgencyResponse(a))
	}
	return items, nil
}

func entityToAgencyResponse(a *entity.Agency) *dto.AgencyResponse {
	if a == nil {
		return nil
	}
	return &dto.AgencyResponse{
		ID:           a.ID,
		EnterpriseID: a.EnterpriseID,
		Name:         a.Name,
		City:         a.City,
		Address:      a.Address,
		Phone:        a.Phone,
	}
}
