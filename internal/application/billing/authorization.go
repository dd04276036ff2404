package billing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	"github.com/jhoicas/courier-pro/pkg/logger"
	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

// Parámetros de consulta de autorización. El SRI suele resolver en el primer
// o segundo intento; tres intentos con 1 s de espera cubren el caso normal
// sin bloquear demasiado al llamador.
const (
	DefaultPollAttempts = 3
	DefaultPollDelay    = time.Second
)

// AuthorizationOutcome es el resultado terminal de un comprobante autorizado.
type AuthorizationOutcome struct {
	Record    *infrasri.AuthorizationRecord
	AuditPath string // XML de respuesta guardado en el directorio de autorizados
}

// AuthorizationClient lleva un comprobante firmado por el ciclo
// recepción → consulta de autorización del SRI y persiste la respuesta cruda
// en disco como evidencia de auditoría. Cada rama terminal escribe exactamente
// un archivo.
type AuthorizationClient struct {
	gateway          infrasri.TaxAuthorityGateway
	authorizedDir    string
	notAuthorizedDir string
	pollAttempts     int
	pollDelay        time.Duration
	log              *logger.Logger
}

// NewAuthorizationClient construye el cliente con los parámetros por defecto.
func NewAuthorizationClient(gateway infrasri.TaxAuthorityGateway, authorizedDir, notAuthorizedDir string, log *logger.Logger) *AuthorizationClient {
	return &AuthorizationClient{
		gateway:          gateway,
		authorizedDir:    authorizedDir,
		notAuthorizedDir: notAuthorizedDir,
		pollAttempts:     DefaultPollAttempts,
		pollDelay:        DefaultPollDelay,
		log:              log.Component("sri-authorization"),
	}
}

// WithPollPolicy ajusta el número de intentos y la espera entre consultas.
// Pensado para acortar la espera en tests; devuelve el mismo cliente.
func (c *AuthorizationClient) WithPollPolicy(attempts int, delay time.Duration) *AuthorizationClient {
	if attempts > 0 {
		c.pollAttempts = attempts
	}
	if delay >= 0 {
		c.pollDelay = delay
	}
	return c
}

// Authorize envía el XML firmado a recepción y consulta la autorización.
//
// Si la recepción no devuelve RECIBIDA se aborta sin consultar autorización:
// reintentar la recepción con la misma clave produce DEVUELTA por clave
// registrada, así que el error se propaga para intervención manual.
func (c *AuthorizationClient) Authorize(ctx context.Context, signedPath, claveAcceso string) (*AuthorizationOutcome, error) {
	signedXML, err := os.ReadFile(signedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, signedPath)
		}
		return nil, fmt.Errorf("leer comprobante firmado %s: %w", signedPath, err)
	}

	reception, err := c.gateway.Submit(ctx, signedXML)
	if err != nil {
		return nil, fmt.Errorf("recepción del comprobante %s: %w", claveAcceso, err)
	}
	if reception.Estado != pkgsri.ReceptionStatusRecibida {
		c.log.Warn().
			Str("clave_acceso", claveAcceso).
			Str("estado", reception.Estado).
			Msg("comprobante no recibido por el SRI")
		return nil, &ReceptionError{Estado: reception.Estado, Mensajes: reception.Mensajes}
	}
	c.log.Info().Str("clave_acceso", claveAcceso).Msg("comprobante recibido por el SRI")

	var lastRaw []byte
	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		poll, err := c.gateway.PollAuthorization(ctx, claveAcceso)
		if err != nil {
			return nil, fmt.Errorf("consulta de autorización %s (intento %d): %w", claveAcceso, attempt, err)
		}
		lastRaw = poll.Raw

		if poll.Record != nil {
			return c.finish(claveAcceso, poll)
		}

		// Sin registro todavía: el comprobante sigue en cola del SRI.
		if attempt < c.pollAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollDelay):
			}
		}
	}

	auditPath := filepath.Join(c.notAuthorizedDir, claveAcceso+"-NO-RESPONSE.xml")
	if err := c.writeAudit(auditPath, lastRaw); err != nil {
		return nil, err
	}
	c.log.Warn().
		Str("clave_acceso", claveAcceso).
		Int("intentos", c.pollAttempts).
		Msg("sin veredicto del SRI, se requiere reconsulta manual")
	return nil, &UndeterminedAuthorizationError{ClaveAcceso: claveAcceso, Attempts: c.pollAttempts}
}

// finish resuelve la rama terminal una vez que el SRI devolvió un registro.
func (c *AuthorizationClient) finish(claveAcceso string, poll *infrasri.PollResult) (*AuthorizationOutcome, error) {
	record := poll.Record
	if record.Estado == pkgsri.AuthorizationStatusAutorizado {
		auditPath := filepath.Join(c.authorizedDir, claveAcceso+".xml")
		if err := c.writeAudit(auditPath, poll.Raw); err != nil {
			return nil, err
		}
		c.log.Info().
			Str("clave_acceso", claveAcceso).
			Str("numero_autorizacion", record.NumeroAutorizacion).
			Msg("comprobante autorizado")
		return &AuthorizationOutcome{Record: record, AuditPath: auditPath}, nil
	}

	auditPath := filepath.Join(c.notAuthorizedDir, claveAcceso+"-"+record.Estado+".xml")
	if err := c.writeAudit(auditPath, poll.Raw); err != nil {
		return nil, err
	}
	c.log.Warn().
		Str("clave_acceso", claveAcceso).
		Str("estado", record.Estado).
		Str("mensajes", FormatMensajes(record.Mensajes)).
		Msg("comprobante rechazado por el SRI")
	return nil, &AuthorizationRejectedError{
		ClaveAcceso: claveAcceso,
		Estado:      record.Estado,
		Mensajes:    record.Mensajes,
	}
}

// writeAudit persiste la respuesta cruda del SRI para auditoría.
func (c *AuthorizationClient) writeAudit(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("crear directorio de auditoría: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("guardar respuesta del SRI en %s: %w", path, err)
	}
	return nil
}
