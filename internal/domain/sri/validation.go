// Package sri contiene validaciones de dominio para facturación electrónica
// SRI (Ecuador). Utiliza catálogos y reglas de pkg/sri.
package sri

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

// ErrInvalidInvoice agrupa errores de validación de factura.
var ErrInvalidInvoice = errors.New("factura inválida para el SRI")

// IVARate tarifa de IVA vigente (15 %).
var IVARate = decimal.NewFromFloat(0.15)

// ValidateInvoice valida la factura y sus detalles antes de generar el XML.
// Comprueba que la suma de subtotales de línea coincida con el subtotal del
// documento y que el IVA sea subtotal * 15 % redondeado a 2 decimales.
// Para clientes con RUC exige que el RUC tenga estructura válida.
func ValidateInvoice(
	invoice *entity.Invoice,
	details []*entity.InvoiceDetail,
	clientIdentType string,
	clientIdentNumber string,
) error {
	if invoice == nil {
		return fmt.Errorf("%w: factura nula", ErrInvalidInvoice)
	}
	var errs []error

	if pkgsri.IdentificationTypeCode(clientIdentType) == pkgsri.IdentificationTypeRUC {
		if err := pkgsri.ValidateRUC(clientIdentNumber); err != nil {
			errs = append(errs, fmt.Errorf("cliente RUC: %w", err))
		}
	}

	if len(details) == 0 {
		errs = append(errs, fmt.Errorf("%w: la factura debe tener al menos un detalle", ErrInvalidInvoice))
	} else {
		var sumSubtotal decimal.Decimal
		for _, d := range details {
			sumSubtotal = sumSubtotal.Add(d.Subtotal)
		}
		if !invoice.Subtotal.Equal(sumSubtotal.Round(2)) {
			errs = append(errs, fmt.Errorf("subtotal (%s) no coincide con la suma de subtotales de líneas (%s)",
				invoice.Subtotal.String(), sumSubtotal.Round(2).String()))
		}
		expectedTax := invoice.Subtotal.Mul(IVARate).Round(2)
		if !invoice.TaxAmount.Equal(expectedTax) {
			errs = append(errs, fmt.Errorf("IVA (%s) no coincide con subtotal * 15%% (%s)",
				invoice.TaxAmount.String(), expectedTax.String()))
		}
		expectedGrand := invoice.Subtotal.Add(expectedTax).Round(2)
		if !invoice.GrandTotal.Equal(expectedGrand) {
			errs = append(errs, fmt.Errorf("total (%s) no coincide con subtotal + IVA (%s)",
				invoice.GrandTotal.String(), expectedGrand.String()))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidInvoice}, errs...)...)
	}
	return nil
}
