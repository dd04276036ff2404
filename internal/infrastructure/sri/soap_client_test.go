package sri_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/infrastructure/sri"
)

// Respuestas reales (recortadas) de los web services del SRI.
const recepcionRecibidaXML = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:validarComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.recepcion">
      <RespuestaRecepcionComprobante>
        <estado>RECIBIDA</estado>
        <comprobantes/>
      </RespuestaRecepcionComprobante>
    </ns2:validarComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const recepcionDevueltaXML = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:validarComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.recepcion">
      <RespuestaRecepcionComprobante>
        <estado>DEVUELTA</estado>
        <comprobantes>
          <comprobante>
            <claveAcceso>0109202601123456789000110010010000000451234567816</claveAcceso>
            <mensajes>
              <mensaje>
                <identificador>35</identificador>
                <mensaje>ARCHIVO NO CUMPLE ESTRUCTURA XML</mensaje>
                <informacionAdicional>linea 1</informacionAdicional>
                <tipo>ERROR</tipo>
              </mensaje>
            </mensajes>
          </comprobante>
        </comprobantes>
      </RespuestaRecepcionComprobante>
    </ns2:validarComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const autorizacionAutorizadoXML = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
      <RespuestaAutorizacionComprobante>
        <claveAccesoConsultada>0109202601123456789000110010010000000451234567816</claveAccesoConsultada>
        <numeroComprobantes>1</numeroComprobantes>
        <autorizaciones>
          <autorizacion>
            <estado>AUTORIZADO</estado>
            <numeroAutorizacion>0109202601123456789000110010010000000451234567816</numeroAutorizacion>
            <fechaAutorizacion>2026-09-01T10:15:00-05:00</fechaAutorizacion>
            <ambiente>PRUEBAS</ambiente>
            <comprobante><![CDATA[<factura id="comprobante" version="1.1.0"></factura>]]></comprobante>
            <mensajes/>
          </autorizacion>
        </autorizaciones>
      </RespuestaAutorizacionComprobante>
    </ns2:autorizacionComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const autorizacionEnColaXML = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
      <RespuestaAutorizacionComprobante>
        <claveAccesoConsultada>0109202601123456789000110010010000000451234567816</claveAccesoConsultada>
        <numeroComprobantes>0</numeroComprobantes>
        <autorizaciones/>
      </RespuestaAutorizacionComprobante>
    </ns2:autorizacionComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const autorizacionRechazadoXML = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
      <RespuestaAutorizacionComprobante>
        <autorizaciones>
          <autorizacion>
            <estado>NO AUTORIZADO</estado>
            <fechaAutorizacion>2026-09-01T10:16:00-05:00</fechaAutorizacion>
            <ambiente>PRUEBAS</ambiente>
            <mensajes>
              <mensaje>
                <identificador>43</identificador>
                <mensaje>CLAVE ACCESO REGISTRADA</mensaje>
                <tipo>ERROR</tipo>
              </mensaje>
              <mensaje>
                <identificador>65</identificador>
                <mensaje>FECHA EMISION EXTEMPORANEA</mensaje>
                <informacionAdicional>limite 24 horas</informacionAdicional>
                <tipo>ERROR</tipo>
              </mensaje>
            </mensajes>
          </autorizacion>
        </autorizaciones>
      </RespuestaAutorizacionComprobante>
    </ns2:autorizacionComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

func soapServer(t *testing.T, responseXML string, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			*capture = body
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(responseXML))
	}))
}

func TestSubmit_Recibida(t *testing.T) {
	var request []byte
	srv := soapServer(t, recepcionRecibidaXML, &request)
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	signedXML := []byte(`<factura id="comprobante" version="1.1.0"/>`)

	result, err := client.Submit(context.Background(), signedXML)
	require.NoError(t, err)

	assert.Equal(t, "RECIBIDA", result.Estado)
	assert.Empty(t, result.Mensajes)
	assert.NotEmpty(t, result.Raw, "la respuesta cruda se devuelve para auditoría")

	// El comprobante viaja en Base64 dentro del elemento xml
	reqStr := string(request)
	assert.Contains(t, reqStr, "validarComprobante")
	b64 := base64.StdEncoding.EncodeToString(signedXML)
	assert.Contains(t, reqStr, b64, "el XML firmado debe ir codificado en Base64")
}

func TestSubmit_DevueltaConMensajes(t *testing.T) {
	srv := soapServer(t, recepcionDevueltaXML, nil)
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	result, err := client.Submit(context.Background(), []byte("<factura/>"))
	require.NoError(t, err, "una recepción DEVUELTA es una respuesta válida, no un error de transporte")

	assert.Equal(t, "DEVUELTA", result.Estado)
	require.Len(t, result.Mensajes, 1)
	assert.Equal(t, "35", result.Mensajes[0].Identificador)
	assert.Equal(t, "ARCHIVO NO CUMPLE ESTRUCTURA XML", result.Mensajes[0].Mensaje)
	assert.Equal(t, "linea 1", result.Mensajes[0].InformacionAdicional)
}

func TestPollAuthorization_Autorizado(t *testing.T) {
	var request []byte
	srv := soapServer(t, autorizacionAutorizadoXML, &request)
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	clave := "0109202601123456789000110010010000000451234567816"

	result, err := client.PollAuthorization(context.Background(), clave)
	require.NoError(t, err)
	require.NotNil(t, result.Record, "con autorización presente el registro no es nil")

	assert.Equal(t, "AUTORIZADO", result.Record.Estado)
	assert.Equal(t, clave, result.Record.NumeroAutorizacion)
	assert.Equal(t, "2026-09-01T10:15:00-05:00", result.Record.FechaAutorizacion)
	assert.Contains(t, result.Record.Comprobante, "factura")
	assert.Contains(t, string(request), "claveAccesoComprobante")
	assert.Contains(t, string(request), clave)
}

func TestPollAuthorization_EnColaSinRegistro(t *testing.T) {
	srv := soapServer(t, autorizacionEnColaXML, nil)
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	result, err := client.PollAuthorization(context.Background(), "0109202601123456789000110010010000000451234567816")
	require.NoError(t, err)

	assert.Nil(t, result.Record, "sin autorizaciones el registro es nil")
	assert.NotEmpty(t, result.Raw)
}

func TestPollAuthorization_RechazadoConListaDeMensajes(t *testing.T) {
	srv := soapServer(t, autorizacionRechazadoXML, nil)
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	result, err := client.PollAuthorization(context.Background(), "0109202601123456789000110010010000000451234567816")
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.Equal(t, "NO AUTORIZADO", result.Record.Estado)
	require.Len(t, result.Record.Mensajes, 2)
	assert.Equal(t, "43", result.Record.Mensajes[0].Identificador)
	assert.Equal(t, "limite 24 horas", result.Record.Mensajes[1].InformacionAdicional)
}

func TestSubmit_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := sri.NewSOAPAuthorityClient(srv.URL, srv.URL)
	_, err := client.Submit(context.Background(), []byte("<factura/>"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "500") || strings.Contains(err.Error(), "estado"),
		"un 500 del WS debe reportarse como error")
}
