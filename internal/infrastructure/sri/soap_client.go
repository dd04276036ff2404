package sri

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ── Constantes del WS SRI ─────────────────────────────────────────────────────

const (
	soapNS             = "http://schemas.xmlsoap.org/soap/envelope/"
	soapNSRecepcion    = "http://ec.gob.sri.ws.recepcion"
	soapNSAutorizacion = "http://ec.gob.sri.ws.autorizacion"
)

// ── Implementación SOAP ───────────────────────────────────────────────────────

// SOAPAuthorityClient implementa TaxAuthorityGateway contra los web services
// SOAP de recepción y autorización del SRI.
type SOAPAuthorityClient struct {
	httpClient       *http.Client
	receptionURL     string
	authorizationURL string
}

// NewSOAPAuthorityClient construye el cliente SOAP con un timeout de red
// generoso (60 s) ya que el WS del SRI puede tardar varios segundos en responder.
func NewSOAPAuthorityClient(receptionURL, authorizationURL string) *SOAPAuthorityClient {
	return &SOAPAuthorityClient{
		httpClient:       &http.Client{Timeout: 60 * time.Second},
		receptionURL:     receptionURL,
		authorizationURL: authorizationURL,
	}
}

var _ TaxAuthorityGateway = (*SOAPAuthorityClient)(nil)

// ── Estructuras SOAP de petición ─────────────────────────────────────────────

type soapEnvelope struct {
	XMLName xml.Name   `xml:"soapenv:Envelope"`
	XmlnsS  string     `xml:"xmlns:soapenv,attr"`
	XmlnsEC string     `xml:"xmlns:ec,attr"`
	Header  soapHeader `xml:"soapenv:Header"`
	Body    soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct{}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// validarComprobanteBody cuerpo para la operación validarComprobante (recepción).
type validarComprobanteBody struct {
	XMLName xml.Name `xml:"ec:validarComprobante"`
	XML     string   `xml:"xml"` // comprobante firmado en Base64
}

// autorizacionComprobanteBody cuerpo para la operación autorizacionComprobante.
type autorizacionComprobanteBody struct {
	XMLName     xml.Name `xml:"ec:autorizacionComprobante"`
	ClaveAcceso string   `xml:"claveAccesoComprobante"`
}

// ── Estructuras SOAP de respuesta ────────────────────────────────────────────
// Se declaran sin namespace: encoding/xml casa por nombre local, lo que nos
// independiza de los prefijos que use el WS.

type recepcionResponseEnvelope struct {
	Body struct {
		Response struct {
			Respuesta respuestaRecepcion `xml:"RespuestaRecepcionComprobante"`
		} `xml:"validarComprobanteResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type respuestaRecepcion struct {
	Estado       string `xml:"estado"`
	Comprobantes struct {
		Comprobante []struct {
			ClaveAcceso string `xml:"claveAcceso"`
			Mensajes    struct {
				Mensaje []mensajeXML `xml:"mensaje"`
			} `xml:"mensajes"`
		} `xml:"comprobante"`
	} `xml:"comprobantes"`
}

type autorizacionResponseEnvelope struct {
	Body struct {
		Response struct {
			Respuesta respuestaAutorizacion `xml:"RespuestaAutorizacionComprobante"`
		} `xml:"autorizacionComprobanteResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type respuestaAutorizacion struct {
	ClaveAcceso    string `xml:"claveAccesoConsultada"`
	Autorizaciones struct {
		Autorizacion []autorizacionXML `xml:"autorizacion"`
	} `xml:"autorizaciones"`
}

type autorizacionXML struct {
	Estado             string `xml:"estado"`
	NumeroAutorizacion string `xml:"numeroAutorizacion"`
	FechaAutorizacion  string `xml:"fechaAutorizacion"`
	Ambiente           string `xml:"ambiente"`
	Comprobante        string `xml:"comprobante"`
	Mensajes           struct {
		Mensaje []mensajeXML `xml:"mensaje"`
	} `xml:"mensajes"`
}

type mensajeXML struct {
	Identificador        string `xml:"identificador"`
	Mensaje              string `xml:"mensaje"`
	InformacionAdicional string `xml:"informacionAdicional"`
	Tipo                 string `xml:"tipo"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── Submit ───────────────────────────────────────────────────────────────────

// Submit envía el comprobante firmado (Base64) a la operación validarComprobante.
func (c *SOAPAuthorityClient) Submit(ctx context.Context, signedXML []byte) (*ReceptionResult, error) {
	body := &validarComprobanteBody{
		XML: base64.StdEncoding.EncodeToString(signedXML),
	}
	raw, err := c.call(ctx, c.receptionURL, soapNSRecepcion, body)
	if err != nil {
		return nil, err
	}

	var envResp recepcionResponseEnvelope
	if err := xml.Unmarshal(raw, &envResp); err != nil {
		return nil, fmt.Errorf("sri: parsear respuesta de recepción: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("sri: SOAP Fault en recepción [%s]: %s",
			envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}

	result := &ReceptionResult{
		Estado: envResp.Body.Response.Respuesta.Estado,
		Raw:    raw,
	}
	for _, comp := range envResp.Body.Response.Respuesta.Comprobantes.Comprobante {
		for _, m := range comp.Mensajes.Mensaje {
			result.Mensajes = append(result.Mensajes, toMensaje(m))
		}
	}
	return result, nil
}

// ── PollAuthorization ────────────────────────────────────────────────────────

// PollAuthorization consulta la operación autorizacionComprobante por clave de
// acceso. Devuelve Record nil cuando el WS todavía no registra autorización.
func (c *SOAPAuthorityClient) PollAuthorization(ctx context.Context, claveAcceso string) (*PollResult, error) {
	body := &autorizacionComprobanteBody{ClaveAcceso: claveAcceso}
	raw, err := c.call(ctx, c.authorizationURL, soapNSAutorizacion, body)
	if err != nil {
		return nil, err
	}

	var envResp autorizacionResponseEnvelope
	if err := xml.Unmarshal(raw, &envResp); err != nil {
		return nil, fmt.Errorf("sri: parsear respuesta de autorización: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("sri: SOAP Fault en autorización [%s]: %s",
			envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}

	auts := envResp.Body.Response.Respuesta.Autorizaciones.Autorizacion
	if len(auts) == 0 || auts[0].Estado == "" {
		return &PollResult{Record: nil, Raw: raw}, nil
	}

	a := auts[0]
	record := &AuthorizationRecord{
		Estado:             a.Estado,
		NumeroAutorizacion: a.NumeroAutorizacion,
		FechaAutorizacion:  a.FechaAutorizacion,
		Ambiente:           a.Ambiente,
		Comprobante:        a.Comprobante,
	}
	for _, m := range a.Mensajes.Mensaje {
		record.Mensajes = append(record.Mensajes, toMensaje(m))
	}
	return &PollResult{Record: record, Raw: raw}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// call serializa el envelope, hace el POST SOAP y devuelve el cuerpo crudo.
func (c *SOAPAuthorityClient) call(ctx context.Context, url, ecNS string, content interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		XmlnsS:  soapNS,
		XmlnsEC: ecNS,
		Body:    soapBody{Content: content},
	}
	xmlPayload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sri: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		bytes.NewReader(xmlPayload))
	if err != nil {
		return nil, fmt.Errorf("sri: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sri: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sri: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB (incluye comprobante embebido)
	if err != nil {
		return nil, fmt.Errorf("sri: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sri: el WS respondió HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func toMensaje(m mensajeXML) Mensaje {
	return Mensaje{
		Identificador:        m.Identificador,
		Mensaje:              m.Mensaje,
		InformacionAdicional: m.InformacionAdicional,
		Tipo:                 m.Tipo,
	}
}
