package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/application/billing"
	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

type storeClientRepo struct{ clients map[string]*entity.Client }

func (r *storeClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *storeClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return r.clients[id], nil
}

func (r *storeClientRepo) GetByIdentNumber(_ context.Context, enterpriseID, ident string) (*entity.Client, error) {
	for _, c := range r.clients {
		if c.EnterpriseID == enterpriseID && c.IdentNumber == ident {
			return c, nil
		}
	}
	return nil, nil
}

func (r *storeClientRepo) List(_ context.Context, enterpriseID string) ([]*entity.Client, error) {
	out := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		if c.EnterpriseID == enterpriseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestClientCreate_CedulaValida(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	resp, err := uc.Create(context.Background(), "ent-1", dto.CreateClientRequest{
		Name:        "María Pérez",
		IdentType:   "CEDULA",
		IdentNumber: "1714610621",
		Email:       "maria@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ent-1", resp.EnterpriseID)
	assert.Equal(t, "1714610621", resp.IdentNumber)
}

func TestClientCreate_CedulaConDigitoErradoRechazada(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	_, err := uc.Create(context.Background(), "ent-1", dto.CreateClientRequest{
		Name:        "María Pérez",
		IdentType:   "CEDULA",
		IdentNumber: "1714610620",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.clients)
}

func TestClientCreate_RUCValido(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	_, err := uc.Create(context.Background(), "ent-1", dto.CreateClientRequest{
		Name:        "Transportes Andinos Cía. Ltda.",
		IdentType:   "RUC",
		IdentNumber: "1714610621001",
	})
	require.NoError(t, err)
}

func TestClientCreate_PasaporteSinVerificador(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	// Los pasaportes no llevan dígito verificador; cualquier serie se acepta.
	_, err := uc.Create(context.Background(), "ent-1", dto.CreateClientRequest{
		Name:        "John Smith",
		IdentType:   "PASAPORTE",
		IdentNumber: "AB123456",
	})
	require.NoError(t, err)
}

func TestClientCreate_TipoDesconocidoRechazado(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	_, err := uc.Create(context.Background(), "ent-1", dto.CreateClientRequest{
		Name:        "Cliente X",
		IdentType:   "DNI",
		IdentNumber: "12345678",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientCreate_IdentificacionDuplicada(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{}}
	uc := billing.NewClientUseCase(repo)

	in := dto.CreateClientRequest{
		Name:        "María Pérez",
		IdentType:   "CEDULA",
		IdentNumber: "1714610621",
	}
	_, err := uc.Create(context.Background(), "ent-1", in)
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), "ent-1", in)
	require.ErrorIs(t, err, domain.ErrDuplicate, "mismo número en la misma empresa")
}

func TestClientList_SoloDeLaEmpresa(t *testing.T) {
	repo := &storeClientRepo{clients: map[string]*entity.Client{
		"a": {ID: "a", EnterpriseID: "ent-1", Name: "Propio"},
		"b": {ID: "b", EnterpriseID: "ent-2", Name: "Ajeno"},
	}}
	uc := billing.NewClientUseCase(repo)

	list, err := uc.List(context.Background(), "ent-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Propio", list[0].Name)
}
