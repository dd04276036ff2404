package billing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/application/billing"
	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stub del gateway del SRI: recepción configurable y una secuencia de
// respuestas de autorización, una por intento de consulta.
// ──────────────────────────────────────────────────────────────────────────────

type stubGateway struct {
	receptionEstado   string
	receptionMensajes []infrasri.Mensaje
	polls             []*infrasri.PollResult

	submitCalls int
	pollCalls   int
}

func (g *stubGateway) Submit(_ context.Context, _ []byte) (*infrasri.ReceptionResult, error) {
	g.submitCalls++
	return &infrasri.ReceptionResult{
		Estado:   g.receptionEstado,
		Mensajes: g.receptionMensajes,
		Raw:      []byte("<recepcion/>"),
	}, nil
}

func (g *stubGateway) PollAuthorization(_ context.Context, _ string) (*infrasri.PollResult, error) {
	idx := g.pollCalls
	g.pollCalls++
	if idx < len(g.polls) {
		return g.polls[idx], nil
	}
	return &infrasri.PollResult{Raw: []byte("<sin-registro/>")}, nil
}

const testClave = "0109202601123456789000110010010000000451234567816"

func newTestClient(t *testing.T, gw *stubGateway) (*billing.AuthorizationClient, string, string, string) {
	t.Helper()
	base := t.TempDir()
	authorizedDir := filepath.Join(base, "autorizados")
	notAuthorizedDir := filepath.Join(base, "no-autorizados")

	signedPath := filepath.Join(base, testClave+".xml")
	require.NoError(t, os.WriteFile(signedPath, []byte("<factura firmada/>"), 0o644))

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	client := billing.NewAuthorizationClient(gw, authorizedDir, notAuthorizedDir, log).
		WithPollPolicy(3, time.Millisecond)
	return client, signedPath, authorizedDir, notAuthorizedDir
}

func TestAuthorize_AutorizadoEnPrimerIntento(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "RECIBIDA",
		polls: []*infrasri.PollResult{{
			Record: &infrasri.AuthorizationRecord{
				Estado:             "AUTORIZADO",
				NumeroAutorizacion: testClave,
				FechaAutorizacion:  "2026-09-01T10:00:00-05:00",
			},
			Raw: []byte("<autorizacion estado=\"AUTORIZADO\"/>"),
		}},
	}
	client, signedPath, authorizedDir, _ := newTestClient(t, gw)

	outcome, err := client.Authorize(context.Background(), signedPath, testClave)
	require.NoError(t, err, "un comprobante autorizado no debe retornar error")
	require.NotNil(t, outcome)

	assert.Equal(t, "AUTORIZADO", outcome.Record.Estado)
	assert.Equal(t, 1, gw.submitCalls, "la recepción se invoca una sola vez")
	assert.Equal(t, 1, gw.pollCalls, "con veredicto en el primer intento no hay más consultas")

	// La respuesta cruda queda archivada como evidencia
	wantPath := filepath.Join(authorizedDir, testClave+".xml")
	assert.Equal(t, wantPath, outcome.AuditPath)
	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AUTORIZADO")
}

func TestAuthorize_RechazadoConMensajes(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "RECIBIDA",
		polls: []*infrasri.PollResult{{
			Record: &infrasri.AuthorizationRecord{
				Estado: "NO AUTORIZADO",
				Mensajes: []infrasri.Mensaje{
					{Identificador: "43", Mensaje: "Clave de acceso registrada"},
					{Identificador: "65", Mensaje: "Fecha emisión extemporánea", InformacionAdicional: "límite 24h"},
				},
			},
			Raw: []byte("<autorizacion estado=\"NO AUTORIZADO\"/>"),
		}},
	}
	client, signedPath, _, notAuthorizedDir := newTestClient(t, gw)

	_, err := client.Authorize(context.Background(), signedPath, testClave)
	var rejected *billing.AuthorizationRejectedError
	require.ErrorAs(t, err, &rejected, "un veredicto NO AUTORIZADO debe retornar AuthorizationRejectedError")

	assert.Equal(t, "NO AUTORIZADO", rejected.Estado)
	assert.Contains(t, rejected.Error(), "[43] Clave de acceso registrada")
	assert.Contains(t, rejected.Error(), "[65] Fecha emisión extemporánea (límite 24h)")
	assert.Contains(t, rejected.Error(), "; ", "los mensajes se unen con punto y coma")

	// Archivo de auditoría con el estado en el nombre
	_, statErr := os.Stat(filepath.Join(notAuthorizedDir, testClave+"-NO AUTORIZADO.xml"))
	assert.NoError(t, statErr, "la respuesta de rechazo debe quedar archivada")
}

func TestAuthorize_SinRespuestaTrasTresIntentos(t *testing.T) {
	gw := &stubGateway{receptionEstado: "RECIBIDA"} // nunca devuelve registro
	client, signedPath, _, notAuthorizedDir := newTestClient(t, gw)

	_, err := client.Authorize(context.Background(), signedPath, testClave)
	var undetermined *billing.UndeterminedAuthorizationError
	require.ErrorAs(t, err, &undetermined)

	assert.Equal(t, 3, undetermined.Attempts)
	assert.Equal(t, 3, gw.pollCalls, "se agota el presupuesto completo de consultas")

	_, statErr := os.Stat(filepath.Join(notAuthorizedDir, testClave+"-NO-RESPONSE.xml"))
	assert.NoError(t, statErr, "la última respuesta cruda debe quedar archivada")
}

func TestAuthorize_RecepcionDevueltaAbortaSinConsultar(t *testing.T) {
	gw := &stubGateway{
		receptionEstado: "DEVUELTA",
		receptionMensajes: []infrasri.Mensaje{
			{Identificador: "35", Mensaje: "Archivo no cumple estructura XML"},
		},
	}
	client, signedPath, _, _ := newTestClient(t, gw)

	_, err := client.Authorize(context.Background(), signedPath, testClave)
	var reception *billing.ReceptionError
	require.ErrorAs(t, err, &reception)

	assert.Equal(t, "DEVUELTA", reception.Estado)
	assert.Equal(t, 0, gw.pollCalls, "con recepción fallida no se consulta autorización")
}

func TestAuthorize_FirmadoInexistente(t *testing.T) {
	client, _, _, _ := newTestClient(t, &stubGateway{receptionEstado: "RECIBIDA"})

	_, err := client.Authorize(context.Background(), filepath.Join(t.TempDir(), "no-existe.xml"), testClave)
	assert.True(t, errors.Is(err, billing.ErrArtifactNotFound),
		"un firmado ausente debe reportarse como ErrArtifactNotFound")
}

func TestAuthorize_ContextoCanceladoDuranteEspera(t *testing.T) {
	gw := &stubGateway{receptionEstado: "RECIBIDA"}
	client, signedPath, _, _ := newTestClient(t, gw)
	client.WithPollPolicy(3, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Authorize(ctx, signedPath, testClave)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second,
		"la espera entre consultas debe respetar la cancelación del contexto")
}

func TestFormatMensajes(t *testing.T) {
	assert.Equal(t, "sin mensajes del SRI", billing.FormatMensajes(nil))

	got := billing.FormatMensajes([]infrasri.Mensaje{
		{Identificador: "43", Mensaje: "Clave de acceso registrada"},
		{Mensaje: "Error genérico", InformacionAdicional: "detalle"},
	})
	assert.Equal(t, "[43] Clave de acceso registrada; Error genérico (detalle)", got)
}
