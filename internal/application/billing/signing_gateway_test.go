package billing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/application/billing"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

// fakeSigner copia el XML al directorio de firmados simulando una firma
// exitosa. writeOutput en false simula un firmador que reporta éxito sin
// producir el archivo.
type fakeSigner struct {
	writeOutput bool
	failWith    error
	calls       int
}

func (s *fakeSigner) Sign(_ context.Context, unsignedPath, signedDir string, _ *billing.SigningCredential) (string, error) {
	s.calls++
	if s.failWith != nil {
		return "", s.failWith
	}
	signedPath := filepath.Join(signedDir, filepath.Base(unsignedPath))
	if s.writeOutput {
		data, err := os.ReadFile(unsignedPath)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(signedPath, append(data, []byte("<!-- firmado -->")...), 0o644); err != nil {
			return "", err
		}
	}
	return signedPath, nil
}

func testEnterprise() *entity.Enterprise {
	return &entity.Enterprise{
		ID:           "ent-1",
		RUC:          "1234567890001",
		CertPath:     "/certs/emisor.p12",
		CertPassword: "secreto",
	}
}

func newGatewayFixture(t *testing.T, signer billing.Signer) (*billing.SigningGateway, string, string) {
	t.Helper()
	base := t.TempDir()
	signedDir := filepath.Join(base, "firmados")

	unsignedPath := filepath.Join(base, "comprobante.xml")
	require.NoError(t, os.WriteFile(unsignedPath, []byte("<factura/>"), 0o644))

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	gw := billing.NewSigningGateway(&billing.EnterpriseCredentialProvider{}, signer, signedDir, log)
	return gw, unsignedPath, signedDir
}

func TestSigningGateway_FirmaExitosa(t *testing.T) {
	signer := &fakeSigner{writeOutput: true}
	gw, unsignedPath, signedDir := newGatewayFixture(t, signer)

	signedPath, err := gw.Sign(context.Background(), testEnterprise(), unsignedPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(signedDir, "comprobante.xml"), signedPath,
		"el firmado conserva el basename del XML original")
	assert.Equal(t, 1, signer.calls)
	assert.FileExists(t, signedPath)
}

func TestSigningGateway_CredencialFaltante(t *testing.T) {
	signer := &fakeSigner{writeOutput: true}
	gw, unsignedPath, _ := newGatewayFixture(t, signer)

	ent := testEnterprise()
	ent.CertPath = ""

	_, err := gw.Sign(context.Background(), ent, unsignedPath)
	require.Error(t, err)

	var cfgErr *billing.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr, "sin certificado debe fallar con ConfigurationError")
	assert.ErrorIs(t, err, billing.ErrMissingCredential)
	assert.Equal(t, 0, signer.calls, "no se invoca al firmador sin credencial")
}

func TestSigningGateway_PasswordFaltante(t *testing.T) {
	gw, unsignedPath, _ := newGatewayFixture(t, &fakeSigner{writeOutput: true})

	ent := testEnterprise()
	ent.CertPassword = ""

	_, err := gw.Sign(context.Background(), ent, unsignedPath)
	assert.ErrorIs(t, err, billing.ErrMissingCredential)
}

func TestSigningGateway_XMLInexistente(t *testing.T) {
	gw, _, _ := newGatewayFixture(t, &fakeSigner{writeOutput: true})

	_, err := gw.Sign(context.Background(), testEnterprise(), filepath.Join(t.TempDir(), "no-existe.xml"))
	assert.True(t, errors.Is(err, billing.ErrArtifactNotFound))
}

func TestSigningGateway_FirmadorSinArtefacto(t *testing.T) {
	// El firmador reporta éxito pero no escribe nada: inconsistencia fatal.
	gw, unsignedPath, _ := newGatewayFixture(t, &fakeSigner{writeOutput: false})

	_, err := gw.Sign(context.Background(), testEnterprise(), unsignedPath)
	var verErr *billing.SigningVerificationError
	require.ErrorAs(t, err, &verErr)
	assert.Contains(t, verErr.Error(), "no pasó la verificación")
}

func TestSigningGateway_FirmadorFalla(t *testing.T) {
	signer := &fakeSigner{failWith: errors.New("exit status 1: certificado expirado")}
	gw, unsignedPath, _ := newGatewayFixture(t, signer)

	_, err := gw.Sign(context.Background(), testEnterprise(), unsignedPath)
	var sigErr *billing.SigningError
	require.ErrorAs(t, err, &sigErr)
	assert.Contains(t, sigErr.Error(), "certificado expirado",
		"la salida del firmador debe conservarse en el error")
}

func TestEnterpriseCredentialProvider_PrioridadTenant(t *testing.T) {
	provider := &billing.EnterpriseCredentialProvider{
		DefaultCertPath: "/certs/global.p12",
		DefaultPassword: "global",
	}

	cred, err := provider.SigningCredential(context.Background(), testEnterprise())
	require.NoError(t, err)
	assert.Equal(t, "/certs/emisor.p12", cred.CertPath, "la credencial del tenant tiene prioridad")
	assert.Equal(t, "secreto", cred.Password)

	cred, err = provider.SigningCredential(context.Background(), &entity.Enterprise{})
	require.NoError(t, err)
	assert.Equal(t, "/certs/global.p12", cred.CertPath, "sin credencial propia se usa la global")
}
