package sri_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/sri"
)

func buildValidInvoice() (*entity.Invoice, []*entity.InvoiceDetail) {
	sub := decimal.NewFromFloat(100.00)
	inv := &entity.Invoice{
		ID:         "inv-1",
		Date:       time.Now(),
		Subtotal:   sub,
		TaxAmount:  sub.Mul(sri.IVARate).Round(2), // 15.00
		GrandTotal: decimal.NewFromFloat(115.00),
	}
	details := []*entity.InvoiceDetail{
		{Description: "Flete Quito-Guayaquil", Quantity: decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromFloat(60.00), Subtotal: decimal.NewFromFloat(60.00)},
		{Description: "Embalaje", Quantity: decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromFloat(20.00), Subtotal: decimal.NewFromFloat(40.00)},
	}
	return inv, details
}

func TestValidateInvoice_OK(t *testing.T) {
	inv, details := buildValidInvoice()
	require.NoError(t, sri.ValidateInvoice(inv, details, "CEDULA", "1714610621"))
}

func TestValidateInvoice_SubtotalNoCuadra(t *testing.T) {
	inv, details := buildValidInvoice()
	inv.Subtotal = decimal.NewFromFloat(99.00)
	err := sri.ValidateInvoice(inv, details, "CEDULA", "1714610621")
	assert.ErrorIs(t, err, sri.ErrInvalidInvoice,
		"un subtotal distinto de la suma de líneas debe invalidar la factura")
}

func TestValidateInvoice_IVAIncorrecto(t *testing.T) {
	inv, details := buildValidInvoice()
	inv.TaxAmount = decimal.NewFromFloat(12.00) // no es el 15 % de 100
	err := sri.ValidateInvoice(inv, details, "CEDULA", "1714610621")
	assert.Error(t, err)
}

func TestValidateInvoice_SinDetalles(t *testing.T) {
	inv, _ := buildValidInvoice()
	err := sri.ValidateInvoice(inv, nil, "CEDULA", "1714610621")
	assert.ErrorIs(t, err, sri.ErrInvalidInvoice)
}

func TestValidateInvoice_RUCInvalido(t *testing.T) {
	inv, details := buildValidInvoice()
	err := sri.ValidateInvoice(inv, details, "RUC", "123")
	assert.Error(t, err, "un cliente RUC con identificación malformada debe rechazarse")
}

func TestValidateInvoice_FacturaNula(t *testing.T) {
	assert.Error(t, sri.ValidateInvoice(nil, nil, "", ""))
}
