package billing

import (
	"errors"
	"fmt"
	"strings"

	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
)

// Errores centinela del flujo de facturación electrónica.
var (
	// ErrMissingCredential indica que el emisor no tiene certificado de firma
	// configurado (ni propio ni global).
	ErrMissingCredential = errors.New("billing: credencial de firma no configurada")

	// ErrArtifactNotFound indica que un artefacto esperado en disco (XML
	// generado o firmado) no existe en la ruta registrada.
	ErrArtifactNotFound = errors.New("billing: artefacto de comprobante no encontrado en disco")
)

// ConfigurationError indica configuración incompleta o inválida detectada
// antes de tocar el web service del SRI.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuración inválida (%s): %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// SigningError indica que el proceso de firma falló.
type SigningError struct {
	Path string // XML sin firmar
	Err  error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("error al firmar %s: %v", e.Path, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// SigningVerificationError indica que el firmador terminó bien pero el
// artefacto firmado no pasó la verificación posterior.
type SigningVerificationError struct {
	Path   string // XML firmado
	Reason string
}

func (e *SigningVerificationError) Error() string {
	return fmt.Sprintf("el comprobante firmado %s no pasó la verificación: %s", e.Path, e.Reason)
}

// ReceptionError indica que el SRI no devolvió RECIBIDA en la recepción.
type ReceptionError struct {
	Estado   string
	Mensajes []infrasri.Mensaje
}

func (e *ReceptionError) Error() string {
	return fmt.Sprintf("el SRI no recibió el comprobante (estado %q): %s", e.Estado, FormatMensajes(e.Mensajes))
}

// AuthorizationRejectedError indica veredicto NO AUTORIZADO del SRI.
type AuthorizationRejectedError struct {
	ClaveAcceso string
	Estado      string
	Mensajes    []infrasri.Mensaje
}

func (e *AuthorizationRejectedError) Error() string {
	return fmt.Sprintf("comprobante %s no autorizado (estado %q): %s", e.ClaveAcceso, e.Estado, FormatMensajes(e.Mensajes))
}

// UndeterminedAuthorizationError indica que se agotaron los intentos de
// consulta sin obtener un veredicto del SRI. El comprobante puede seguir en
// cola: hay que reconsultar más tarde, nunca reenviar a recepción.
type UndeterminedAuthorizationError struct {
	ClaveAcceso string
	Attempts    int
}

func (e *UndeterminedAuthorizationError) Error() string {
	return fmt.Sprintf("sin respuesta de autorización del SRI para %s tras %d intentos", e.ClaveAcceso, e.Attempts)
}

// FormatMensajes aplana los mensajes del SRI en una sola línea legible para
// logs y para la columna sri_errors.
func FormatMensajes(mensajes []infrasri.Mensaje) string {
	if len(mensajes) == 0 {
		return "sin mensajes del SRI"
	}
	parts := make([]string, 0, len(mensajes))
	for _, m := range mensajes {
		s := m.Mensaje
		if m.Identificador != "" {
			s = "[" + m.Identificador + "] " + s
		}
		if m.InformacionAdicional != "" {
			s += " (" + m.InformacionAdicional + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}
