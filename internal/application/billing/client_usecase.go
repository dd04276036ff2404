package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

// ClientUseCase casos de uso para clientes (remitentes, destinatarios y
// compradores de la factura).
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create crea un nuevo cliente. La cédula y el RUC se validan con su dígito
// verificador antes de aceptar el registro.
func (uc *ClientUseCase) Create(ctx context.Context, enterpriseID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" || in.IdentNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.IdentType {
	case "CEDULA":
		if err := pkgsri.ValidateCedula(in.IdentNumber); err != nil {
			return nil, domain.ErrInvalidInput
		}
	case "RUC":
		if err := pkgsri.ValidateRUC(in.IdentNumber); err != nil {
			return nil, domain.ErrInvalidInput
		}
	case "PASAPORTE", "CONSUMIDOR_FINAL":
		// sin dígito verificador
	default:
		return nil, domain.ErrInvalidInput
	}

	existing, _ := uc.repo.GetByIdentNumber(ctx, enterpriseID, in.IdentNumber)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	client := &entity.Client{
		ID:           uuid.New().String(),
		EnterpriseID: enterpriseID,
		Name:         in.Name,
		IdentType:    in.IdentType,
		IdentNumber:  in.IdentNumber,
		Address:      in.Address,
		Email:        in.Email,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List lista clientes de la empresa.
func (uc *ClientUseCase) List(ctx context.Context, enterpriseID string) ([]*dto.ClientResponse, error) {
	list, err := uc.repo.List(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:           c.ID,
		EnterpriseID: c.EnterpriseID,
		Name:         c.Name,
		IdentType:    c.IdentType,
		IdentNumber:  c.IdentNumber,
		Address:      c.Address,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}
