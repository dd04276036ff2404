package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
	"github.com/jhoicas/courier-pro/pkg/sri"
)

// EnterpriseUseCase aplica reglas de negocio para empresas emisoras (tenants).
type EnterpriseUseCase struct {
	repo repository.EnterpriseRepository
}

// NewEnterpriseUseCase construye el caso de uso con el puerto de persistencia.
func NewEnterpriseUseCase(repo repository.EnterpriseRepository) *EnterpriseUseCase {
	return &EnterpriseUseCase{repo: repo}
}

// Create crea una nueva empresa. Valida el RUC con su dígito verificador y
// genera ID y estado inicial. Devuelve domain.ErrDuplicate si el RUC ya existe.
func (uc *EnterpriseUseCase) Create(ctx context.Context, in dto.CreateEnterpriseRequest) (*dto.EnterpriseResponse, error) {
	if err := sri.ValidateRUC(in.RUC); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, _ := uc.repo.GetByRUC(ctx, in.RUC)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	ambiente := in.Ambiente
	if ambiente == "" {
		ambiente = sri.AmbientePruebas
	}
	now := time.Now()
	enterprise := &entity.Enterprise{
		ID:              uuid.New().String(),
		RUC:             in.RUC,
		RazonSocial:     in.RazonSocial,
		NombreComercial: in.NombreComercial,
		DirMatriz:       in.DirMatriz,
		Establecimiento: in.Establecimiento,
		PuntoEmision:    in.PuntoEmision,
		Ambiente:        ambiente,
		CertPath:        in.CertPath,
		CertPassword:    in.CertPassword,
		Phone:           in.Phone,
		Email:           in.Email,
		Status:          "active",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, enterprise); err != nil {
		return nil, err
	}
	return entityToEnterpriseResponse(enterprise), nil
}

// GetByID obtiene una empresa por ID.
func (uc *EnterpriseUseCase) GetByID(ctx context.Context, id string) (*dto.EnterpriseResponse, error) {
	enterprise, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enterprise == nil {
		return nil, nil
	}
	return entityToEnterpriseResponse(enterprise), nil
}

// List lista todas las empresas.
func (uc *EnterpriseUseCase) List(ctx context.Context) ([]*dto.EnterpriseResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.EnterpriseResponse, 0, len(list))
	for _, e := range list {
		items = append(items, entityToEnterpriseResponse(e))
	}
	return items, nil
}

func entityToEnterpriseResponse(e *entity.Enterprise) *dto.EnterpriseResponse {
	if e == nil {
		return nil
	}
	return &dto.EnterpriseResponse{
		ID:              e.ID,
		RUC:             e.RUC,
		RazonSocial:     e.RazonSocial,
		NombreComercial: e.NombreComercial,
		DirMatriz:       e.DirMatriz,
		Establecimiento: e.Establecimiento,
		PuntoEmision:    e.PuntoEmision,
		Ambiente:        e.Ambiente,
		Phone:           e.Phone,
		Email:           e.Email,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
