package sri

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/courier-pro/pkg/sri"
)

// AssemblyError indica un fallo al generar la clave de acceso o el XML de la factura.
type AssemblyError struct {
	NumeroComprobante string
	Err               error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("error al ensamblar el comprobante %s: %v", e.NumeroComprobante, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// AssemblerService genera la clave de acceso, construye el XML y lo persiste
// en el directorio de comprobantes generados.
type AssemblerService struct {
	builder      *XMLBuilderService
	generatedDir string
}

// NewAssemblerService crea el ensamblador apuntando al directorio de salida.
func NewAssemblerService(generatedDir string) *AssemblerService {
	return &AssemblerService{
		builder:      NewXMLBuilderService(),
		generatedDir: generatedDir,
	}
}

// Assemble genera la clave de acceso, arma el XML de la factura y lo escribe
// como <clave>.xml en el directorio de generados. Actualiza AccessKey y
// XMLPath en la factura del contexto. La escritura es atómica (tmp + rename)
// para no dejar comprobantes a medias si el proceso muere.
func (s *AssemblerService) Assemble(ctx *FacturaBuildContext) (string, error) {
	inv := ctx.Invoice
	numero := inv.NumeroCompleto()

	clave, err := sri.GenerateClaveAcceso(sri.ClaveAccesoParams{
		FechaEmision: inv.Date,
		CodDoc:       sri.DocTypeFactura,
		RUC:          ctx.Enterprise.RUC,
		Ambiente:     ctx.Ambiente,
		Serie:        inv.Establecimiento + inv.PuntoEmision,
		Secuencial:   secuencial(inv.Secuencial),
		TipoEmision:  ctx.TipoEmision,
	})
	if err != nil {
		return "", &AssemblyError{NumeroComprobante: numero, Err: err}
	}
	ctx.ClaveAcceso = clave

	xmlBytes, err := s.builder.Build(ctx)
	if err != nil {
		return "", &AssemblyError{NumeroComprobante: numero, Err: err}
	}

	if err := os.MkdirAll(s.generatedDir, 0o755); err != nil {
		return "", &AssemblyError{NumeroComprobante: numero, Err: err}
	}

	finalPath := filepath.Join(s.generatedDir, clave+".xml")
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, xmlBytes, 0o644); err != nil {
		return "", &AssemblyError{NumeroComprobante: numero, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", &AssemblyError{NumeroComprobante: numero, Err: err}
	}

	inv.AccessKey = clave
	inv.XMLPath = finalPath
	return finalPath, nil
}
