package sri

import (
	"fmt"
	"unicode"
)

// coeficientes para el dígito verificador de la cédula ecuatoriana (módulo 10).
// Se aplican a los 9 primeros dígitos, de izquierda a derecha.
var cedulaCoefficients = [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}

// ValidateCedula valida que la cédula (10 dígitos) tenga un dígito verificador
// correcto según el algoritmo módulo 10 del Registro Civil.
func ValidateCedula(cedula string) error {
	digits := extractDigits(cedula)
	if len(digits) != 10 {
		return fmt.Errorf("sri: cédula debe tener 10 dígitos, se encontraron %d", len(digits))
	}
	province := int(digits[0]-'0')*10 + int(digits[1]-'0')
	if province < 1 || province > 24 {
		return fmt.Errorf("sri: código de provincia %02d fuera de rango (01-24)", province)
	}
	if digits[2]-'0' > 5 {
		return fmt.Errorf("sri: tercer dígito de cédula debe ser menor a 6")
	}
	var sum int
	for i := 0; i < 9; i++ {
		p := int(digits[i]-'0') * cedulaCoefficients[i]
		if p > 9 {
			p -= 9
		}
		sum += p
	}
	expected := (10 - sum%10) % 10
	if int(digits[9]-'0') != expected {
		return fmt.Errorf("sri: dígito verificador de cédula inválido: esperado %d, recibido %c", expected, digits[9])
	}
	return nil
}

// ValidateRUC valida un RUC de persona natural: 13 dígitos, los 10 primeros
// forman una cédula válida y los 3 últimos son el código de establecimiento
// (al menos "001").
func ValidateRUC(ruc string) error {
	digits := extractDigits(ruc)
	if len(digits) != 13 {
		return fmt.Errorf("sri: RUC debe tener 13 dígitos, se encontraron %d", len(digits))
	}
	if string(digits[10:]) == "000" {
		return fmt.Errorf("sri: código de establecimiento del RUC no puede ser 000")
	}
	if err := ValidateCedula(string(digits[:10])); err != nil {
		return fmt.Errorf("sri: RUC con cédula base inválida: %w", err)
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
