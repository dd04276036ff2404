// Package sri: generación de la clave de acceso de comprobantes electrónicos
// (Ficha Técnica SRI). La clave tiene 49 dígitos: 48 de datos más un dígito
// verificador módulo 11.

package sri

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"
)

// ClaveAccesoParams contiene los campos de la clave de acceso en el orden
// exigido por el SRI.
type ClaveAccesoParams struct {
	FechaEmision time.Time // se serializa como ddmmaaaa
	CodDoc       string    // tipo de comprobante ("01" = factura)
	RUC          string    // RUC del emisor; se rellena a 13 dígitos con ceros a la izquierda
	Ambiente     string    // "1" pruebas, "2" producción
	Serie        string    // establecimiento + punto de emisión (6 dígitos)
	Secuencial   string    // se rellena a 9 dígitos
	CodigoNumerico string  // 8 dígitos aleatorios; si vacío se genera
	TipoEmision  string    // "1" emisión normal
}

// GenerateClaveAcceso construye la clave de acceso de 49 dígitos.
// El código numérico aleatorio (1..99999999) reduce la probabilidad de
// colisión entre comprobantes emitidos el mismo segundo; no se verifica
// unicidad contra claves ya emitidas.
func GenerateClaveAcceso(p ClaveAccesoParams) (string, error) {
	if p.CodDoc == "" {
		p.CodDoc = DocTypeFactura
	}
	if p.TipoEmision == "" {
		p.TipoEmision = EmisionNormal
	}
	ruc := strings.TrimSpace(p.RUC)
	if !isAllDigits(ruc) || ruc == "" {
		return "", fmt.Errorf("sri: RUC del emisor debe ser numérico, se recibió %q", p.RUC)
	}
	serie := strings.TrimSpace(p.Serie)
	if len(serie) != 6 || !isAllDigits(serie) {
		return "", fmt.Errorf("sri: serie (establecimiento+punto de emisión) debe tener 6 dígitos, se recibió %q", p.Serie)
	}
	sec := strings.TrimSpace(p.Secuencial)
	if !isAllDigits(sec) || sec == "" {
		return "", fmt.Errorf("sri: secuencial debe ser numérico, se recibió %q", p.Secuencial)
	}
	codigo := p.CodigoNumerico
	if codigo == "" {
		var err error
		codigo, err = randomCodigoNumerico()
		if err != nil {
			return "", err
		}
	}
	if len(codigo) != 8 || !isAllDigits(codigo) {
		return "", fmt.Errorf("sri: código numérico debe tener 8 dígitos, se recibió %q", codigo)
	}

	raw := p.FechaEmision.Format("02012006") +
		p.CodDoc +
		fmt.Sprintf("%013s", ruc) +
		p.Ambiente +
		serie +
		fmt.Sprintf("%09s", sec) +
		codigo +
		p.TipoEmision

	if len(raw) != 48 {
		return "", fmt.Errorf("sri: clave parcial con longitud %d, se esperaban 48 dígitos", len(raw))
	}
	return raw + string('0'+ComputeCheckDigit(raw)), nil
}

// ComputeCheckDigit calcula el dígito verificador módulo 11 de la clave.
// Pesos 2..7 cíclicos aplicados de derecha a izquierda; dígito = 11 - (suma
// mod 11), con 11 → 0 y 10 → 1.
func ComputeCheckDigit(raw string) byte {
	var sum, weight int
	weight = 2
	for i := len(raw) - 1; i >= 0; i-- {
		sum += int(raw[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	rem := sum % 11
	if rem == 0 {
		return 0
	}
	digit := 11 - rem
	if digit == 10 {
		return 1
	}
	return byte(digit)
}

// VerifyClaveAcceso valida longitud, contenido numérico y dígito verificador.
// Cualquier consumidor puede recomputar el dígito a partir de los 48 primeros.
func VerifyClaveAcceso(clave string) error {
	if len(clave) != 49 {
		return fmt.Errorf("sri: clave de acceso debe tener 49 dígitos, tiene %d", len(clave))
	}
	if !isAllDigits(clave) {
		return fmt.Errorf("sri: clave de acceso contiene caracteres no numéricos")
	}
	expected := ComputeCheckDigit(clave[:48])
	got := clave[48] - '0'
	if got != expected {
		return fmt.Errorf("sri: dígito verificador inválido: esperado %d, recibido %d", expected, got)
	}
	return nil
}

// randomCodigoNumerico genera un número aleatorio en 1..99999999 con ceros a
// la izquierda. Usa crypto/rand: el código es parte de la clave fiscal y no
// debe ser predecible.
func randomCodigoNumerico() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(99999999))
	if err != nil {
		return "", fmt.Errorf("sri: generar código numérico: %w", err)
	}
	return fmt.Sprintf("%08d", n.Int64()+1), nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
