// Package courier contiene los casos de uso de la operación de encomiendas:
// recepción en agencia, asignación de número de guía y seguimiento.
package courier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

// ReceivePackageUseCase registra encomiendas entrantes en una agencia.
type ReceivePackageUseCase struct {
	packageRepo repository.PackageRepository
	clientRepo  repository.ClientRepository
	agencyRepo  repository.AgencyRepository
	log         *logger.Logger
}

// NewReceivePackageUseCase construye el caso de uso.
func NewReceivePackageUseCase(
	packageRepo repository.PackageRepository,
	clientRepo repository.ClientRepository,
	agencyRepo repository.AgencyRepository,
	log *logger.Logger,
) *ReceivePackageUseCase {
	return &ReceivePackageUseCase{
		packageRepo: packageRepo,
		clientRepo:  clientRepo,
		agencyRepo:  agencyRepo,
		log:         log.Component("courier-reception"),
	}
}

// Receive registra una encomienda y le asigna el siguiente número de guía de
// la agencia de origen.
func (uc *ReceivePackageUseCase) Receive(ctx context.Context, enterpriseID string, in dto.ReceivePackageRequest) (*dto.PackageResponse, error) {
	if in.SenderID == "" || in.ReceiverID == "" || in.Description == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.FreightPrice.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	for _, clientID := range []string{in.SenderID, in.ReceiverID} {
		client, err := uc.clientRepo.GetByID(ctx, clientID)
		if err != nil || client == nil {
			return nil, domain.ErrNotFound
		}
		if client.EnterpriseID != enterpriseID {
			return nil, domain.ErrForbidden
		}
	}
	for _, agencyID := range []string{in.OriginAgencyID, in.DestAgencyID} {
		agency, err := uc.agencyRepo.GetByID(ctx, agencyID)
		if err != nil || agency == nil {
			return nil, domain.ErrNotFound
		}
		if agency.EnterpriseID != enterpriseID {
			return nil, domain.ErrForbidden
		}
	}

	guideNumber, err := uc.packageRepo.NextGuideNumber(ctx, enterpriseID, in.OriginAgencyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pkg := &entity.Package{
		ID:             uuid.New().String(),
		EnterpriseID:   enterpriseID,
		GuideNumber:    guideNumber,
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		OriginAgencyID: in.OriginAgencyID,
		DestAgencyID:   in.DestAgencyID,
		Description:    in.Description,
		Weight:         in.Weight,
		DeclaredValue:  in.DeclaredValue,
		FreightPrice:   in.FreightPrice,
		Status:         entity.PackageStatusReceived,
		ReceivedAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("guide_number", pkg.GuideNumber).
		Str("enterprise_id", enterpriseID).
		Msg("encomienda recibida")
	return toPackageResponse(pkg), nil
}

// UpdateStatus transiciona el estado de una encomienda (tránsito, entrega).
func (uc *ReceivePackageUseCase) UpdateStatus(ctx context.Context, enterpriseID, packageID, status string) error {
	switch status {
	case entity.PackageStatusInTransit, entity.PackageStatusDelivered:
	default:
		return domain.ErrInvalidInput
	}
	pkg, err := uc.packageRepo.GetByID(ctx, packageID)
	if err != nil || pkg == nil {
		return domain.ErrNotFound
	}
	if pkg.EnterpriseID != enterpriseID {
		return domain.ErrForbidden
	}
	return uc.packageRepo.UpdateStatus(ctx, packageID, status)
}

// List lista las encomiendas de la empresa paginadas.
func (uc *ReceivePackageUseCase) List(ctx context.Context, enterpriseID string, page dto.PageRequest) ([]*dto.PackageResponse, error) {
	page.DefaultPage()
	list, err := uc.packageRepo.ListByEnterprise(ctx, enterpriseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PackageResponse, 0, len(list))
	for _, pkg := range list {
		out = append(out, toPackageResponse(pkg))
	}
	return out, nil
}

// GetByGuide busca una encomienda por su número de guía.
func (uc *ReceivePackageUseCase) GetByGuide(ctx context.Context, enterpriseID, guideNumber string) (*dto.PackageResponse, error) {
	pkg, err := uc.packageRepo.GetByGuideNumber(ctx, enterpriseID, guideNumber)
	if err != nil || pkg == nil {
		return nil, domain.ErrNotFound
	}
	return toPackageResponse(pkg), nil
}

func toPackageResponse(pkg *entity.Package) *dto.PackageResponse {
	return &dto.PackageResponse{
		ID:             pkg.ID,
		EnterpriseID:   pkg.EnterpriseID,
		GuideNumber:    pkg.GuideNumber,
		SenderID:       pkg.SenderID,
		ReceiverID:     pkg.ReceiverID,
		OriginAgencyID: pkg.OriginAgencyID,
		DestAgencyID:   pkg.DestAgencyID,
		Description:    pkg.Description,
		Weight:         pkg.Weight,
		DeclaredValue:  pkg.DeclaredValue,
		FreightPrice:   pkg.FreightPrice,
		Status:         pkg.Status,
		ReceivedAt:     pkg.ReceivedAt.Format(time.RFC3339),
	}
}
