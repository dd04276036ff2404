package billing_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/application/billing"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	"github.com/jhoicas/courier-pro/pkg/logger"
	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para el ciclo completo del orquestador.
// ──────────────────────────────────────────────────────────────────────────────

type memInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	details  map[string][]*entity.InvoiceDetail
	updates  int
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	r.details[d.InvoiceID] = append(r.details[d.InvoiceID], d)
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	return inv, nil
}

func (r *memInvoiceRepo) GetByAccessKey(_ context.Context, key string) (*entity.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.AccessKey == key {
			return inv, nil
		}
	}
	return nil, os.ErrNotExist
}

func (r *memInvoiceRepo) GetDetailsByInvoiceID(_ context.Context, id string) ([]*entity.InvoiceDetail, error) {
	return r.details[id], nil
}

func (r *memInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.invoices[inv.ID] = inv
	r.updates++
	return nil
}

func (r *memInvoiceRepo) NextSecuencial(_ context.Context, _, _, _ string) (int64, error) {
	return int64(len(r.invoices) + 1), nil
}

func (r *memInvoiceRepo) ListByEnterprise(_ context.Context, _ string, _, _ int) ([]*entity.Invoice, error) {
	out := make([]*entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, nil
}

type memEnterpriseRepo struct{ ent *entity.Enterprise }

func (r *memEnterpriseRepo) Create(_ context.Context, _ *entity.Enterprise) error { return nil }
func (r *memEnterpriseRepo) GetByID(_ context.Context, _ string) (*entity.Enterprise, error) {
	return r.ent, nil
}
func (r *memEnterpriseRepo) GetByRUC(_ context.Context, _ string) (*entity.Enterprise, error) {
	return r.ent, nil
}
func (r *memEnterpriseRepo) Update(_ context.Context, _ *entity.Enterprise) error { return nil }
func (r *memEnterpriseRepo) List(_ context.Context) ([]*entity.Enterprise, error) {
	return []*entity.Enterprise{r.ent}, nil
}

type memClientRepo struct{ client *entity.Client }

func (r *memClientRepo) Create(_ context.Context, _ *entity.Client) error { return nil }
func (r *memClientRepo) GetByID(_ context.Context, _ string) (*entity.Client, error) {
	return r.client, nil
}
func (r *memClientRepo) GetByIdentNumber(_ context.Context, _, _ string) (*entity.Client, error) {
	return r.client, nil
}
func (r *memClientRepo) List(_ context.Context, _ string) ([]*entity.Client, error) {
	return []*entity.Client{r.client}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture del ciclo completo
// ──────────────────────────────────────────────────────────────────────────────

type orchestratorFixture struct {
	orch          *billing.SRIOrchestrator
	invoiceRepo   *memInvoiceRepo
	enterprise    *entity.Enterprise
	gateway       *stubGateway
	authorizedDir string
	generatedDir  string
}

func newOrchestratorFixture(t *testing.T, gw *stubGateway) *orchestratorFixture {
	t.Helper()
	base := t.TempDir()
	generatedDir := filepath.Join(base, "generados")
	signedDir := filepath.Join(base, "firmados")
	authorizedDir := filepath.Join(base, "autorizados")
	notAuthorizedDir := filepath.Join(base, "no-autorizados")

	enterprise := &entity.Enterprise{
		ID:              "ent-1",
		RUC:             "1234567890001",
		RazonSocial:     "Courier Express S.A.",
		NombreComercial: "Courier Express",
		DirMatriz:       "Av. Amazonas N36-152, Quito",
		Establecimiento: "001",
		PuntoEmision:    "001",
		Ambiente:        "1",
		CertPath:        "/certs/courier.p12",
		CertPassword:    "secreto",
	}
	client := &entity.Client{
		ID:          "cli-1",
		Name:        "María Pérez",
		IdentType:   "CEDULA",
		IdentNumber: "1714610621",
		Email:       "maria@example.com",
		Phone:       "0998765432",
	}

	invoice := &entity.Invoice{
		ID:              "inv-45",
		EnterpriseID:    enterprise.ID,
		ClientID:        client.ID,
		Establecimiento: "001",
		PuntoEmision:    "001",
		Secuencial:      45,
		Date:            time.Now(),
		PaymentMethod:   "CASH",
		Subtotal:        decimal.NewFromFloat(10.00),
		TaxAmount:       decimal.NewFromFloat(1.50),
		GrandTotal:      decimal.NewFromFloat(11.50),
		SRIStatus:       entity.SRIStatusDraft,
	}
	detail := &entity.InvoiceDetail{
		ID:          "det-1",
		InvoiceID:   invoice.ID,
		Description: "Envío de encomienda Quito - Guayaquil",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromFloat(10.00),
		Discount:    decimal.Zero,
		Subtotal:    decimal.NewFromFloat(10.00),
	}

	invoiceRepo := &memInvoiceRepo{
		invoices: map[string]*entity.Invoice{invoice.ID: invoice},
		details:  map[string][]*entity.InvoiceDetail{invoice.ID: {detail}},
	}

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	assembler := infrasri.NewAssemblerService(generatedDir)
	signGateway := billing.NewSigningGateway(&billing.EnterpriseCredentialProvider{}, &fakeSigner{writeOutput: true}, signedDir, log)
	authClient := billing.NewAuthorizationClient(gw, authorizedDir, notAuthorizedDir, log).
		WithPollPolicy(3, time.Millisecond)

	orch := billing.NewSRIOrchestrator(
		invoiceRepo,
		&memEnterpriseRepo{ent: enterprise},
		&memClientRepo{client: client},
		assembler,
		signGateway,
		authClient,
		"1", "1",
		log,
	)

	return &orchestratorFixture{
		orch:          orch,
		invoiceRepo:   invoiceRepo,
		enterprise:    enterprise,
		gateway:       gw,
		authorizedDir: authorizedDir,
		generatedDir:  generatedDir,
	}
}

func TestSRIOrchestrator_CicloCompletoAutorizado(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "RECIBIDA",
		polls: []*infrasri.PollResult{{
			Record: &infrasri.AuthorizationRecord{
				Estado:             "AUTORIZADO",
				NumeroAutorizacion: "0109202601123456789000110010010000000459999999991",
				FechaAutorizacion:  "2026-09-01T10:15:00-05:00",
			},
			Raw: []byte("<respuesta estado=\"AUTORIZADO\"/>"),
		}},
	}
	fx := newOrchestratorFixture(t, gw)

	err := fx.orch.Process(context.Background(), "inv-45")
	require.NoError(t, err, "el ciclo completo con SRI cooperativo no debe fallar")

	inv := fx.invoiceRepo.invoices["inv-45"]
	assert.Equal(t, entity.SRIStatusAuthorized, inv.SRIStatus)
	assert.Len(t, inv.AccessKey, 49, "la clave de acceso tiene 49 dígitos")
	assert.NoError(t, pkgsri.VerifyClaveAcceso(inv.AccessKey))
	assert.Equal(t, gw.polls[0].Record.NumeroAutorizacion, inv.AuthNumber)
	require.NotNil(t, inv.AuthDate, "la fecha de autorización debe parsearse")
	assert.Empty(t, inv.SRIErrors)

	// Artefactos en disco: generado y respuesta de autorización
	assert.FileExists(t, inv.XMLPath)
	assert.Equal(t, filepath.Join(fx.generatedDir, inv.AccessKey+".xml"), inv.XMLPath)
	assert.FileExists(t, filepath.Join(fx.authorizedDir, inv.AccessKey+".xml"))
	assert.FileExists(t, inv.SignedXMLPath)

	// El XML generado lleva los datos del emisor y la clave
	data, readErr := os.ReadFile(inv.XMLPath)
	require.NoError(t, readErr)
	xmlStr := string(data)
	assert.Contains(t, xmlStr, "<claveAcceso>"+inv.AccessKey+"</claveAcceso>")
	assert.Contains(t, xmlStr, "<ruc>1234567890001</ruc>")
	assert.Contains(t, xmlStr, "<secuencial>000000045</secuencial>")
	assert.Contains(t, xmlStr, "<formaPago>20</formaPago>", "CASH se mapea al código 20")
	assert.Contains(t, xmlStr, "<tipoIdentificacionComprador>05</tipoIdentificacionComprador>")
}

func TestSRIOrchestrator_RechazoPersisteMensajes(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "RECIBIDA",
		polls: []*infrasri.PollResult{{
			Record: &infrasri.AuthorizationRecord{
				Estado: "NO AUTORIZADO",
				Mensajes: []infrasri.Mensaje{
					{Identificador: "43", Mensaje: "Clave de acceso registrada"},
				},
			},
			Raw: []byte("<respuesta estado=\"NO AUTORIZADO\"/>"),
		}},
	}
	fx := newOrchestratorFixture(t, gw)

	err := fx.orch.Process(context.Background(), "inv-45")
	var rejected *billing.AuthorizationRejectedError
	require.ErrorAs(t, err, &rejected, "el rechazo se propaga al llamador")

	inv := fx.invoiceRepo.invoices["inv-45"]
	assert.Equal(t, entity.SRIStatusRejected, inv.SRIStatus)
	assert.Equal(t, "[43] Clave de acceso registrada", inv.SRIErrors)
}

func TestSRIOrchestrator_SinRespuestaQuedaSinResolver(t *testing.T) {
	gw := &stubGateway{receptionEstado: "RECIBIDA"} // tres consultas vacías
	fx := newOrchestratorFixture(t, gw)

	err := fx.orch.Process(context.Background(), "inv-45")
	var undetermined *billing.UndeterminedAuthorizationError
	require.ErrorAs(t, err, &undetermined)

	inv := fx.invoiceRepo.invoices["inv-45"]
	assert.Equal(t, entity.SRIStatusUndetermined, inv.SRIStatus,
		"sin veredicto la factura queda SIN_RESPUESTA, nunca se reenvía")
	assert.Contains(t, inv.SRIErrors, "3 intentos")
}

func TestSRIOrchestrator_RecepcionFallidaMarcaError(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "DEVUELTA",
		receptionMensajes: []infrasri.Mensaje{
			{Identificador: "35", Mensaje: "Archivo no cumple estructura XML"},
		},
	}
	fx := newOrchestratorFixture(t, gw)

	err := fx.orch.Process(context.Background(), "inv-45")
	var reception *billing.ReceptionError
	require.ErrorAs(t, err, &reception)

	inv := fx.invoiceRepo.invoices["inv-45"]
	assert.Equal(t, entity.SRIStatusError, inv.SRIStatus)
	assert.True(t, strings.Contains(inv.SRIErrors, "Archivo no cumple estructura XML"))
}

func TestSRIOrchestrator_CredencialFaltanteNoLlamaAlSRI(t *testing.T) {
	gw := &stubGateway{receptionEstado: "RECIBIDA"}
	fx := newOrchestratorFixture(t, gw)

	// Tenant sin certificado y sin credencial global de respaldo
	fx.enterprise.CertPath = ""
	fx.enterprise.CertPassword = ""

	err := fx.orch.Process(context.Background(), "inv-45")
	require.ErrorIs(t, err, billing.ErrMissingCredential)

	inv := fx.invoiceRepo.invoices["inv-45"]
	assert.Equal(t, entity.SRIStatusError, inv.SRIStatus)
	assert.Equal(t, 0, gw.submitCalls, "sin credencial no se toca el web service")

	// El XML generado queda en disco para reprocesar tras corregir la config
	assert.FileExists(t, inv.XMLPath)
}
