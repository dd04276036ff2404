package signer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jhoicas/courier-pro/internal/application/billing"
)

// SubprocessSigner delega la firma en un firmador externo invocado como
//
//	<intérprete> <script> <xml-sin-firmar> <ruta-p12> <contraseña>
//
// con stdout y stderr combinados. Código de salida 0 = éxito; el artefacto
// firmado queda en <signedDir>/<basename del XML sin firmar>.
type SubprocessSigner struct {
	Command string // intérprete (ej: "python3", "java")
	Script  string // ruta del script o jar firmador
}

// NewSubprocessSigner crea el firmador externo.
func NewSubprocessSigner(command, script string) *SubprocessSigner {
	return &SubprocessSigner{Command: command, Script: script}
}

// Sign implementa billing.Signer ejecutando el firmador externo.
func (s *SubprocessSigner) Sign(ctx context.Context, unsignedPath, signedDir string, cred *billing.SigningCredential) (string, error) {
	if s.Command == "" || s.Script == "" {
		return "", &billing.ConfigurationError{
			Field: "signer_command",
			Err:   fmt.Errorf("firmador externo no configurado"),
		}
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Script, unsignedPath, cred.CertPath, cred.Password)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &billing.SigningError{
			Path: unsignedPath,
			Err:  fmt.Errorf("firmador externo: %w: %s", err, strings.TrimSpace(string(output))),
		}
	}

	return filepath.Join(signedDir, filepath.Base(unsignedPath)), nil
}

var _ billing.Signer = (*SubprocessSigner)(nil)
