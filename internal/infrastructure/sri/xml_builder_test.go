package sri_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

func buildContextFixture() *sri.FacturaBuildContext {
	enterprise := &entity.Enterprise{
		RUC:             "1234567890001",
		RazonSocial:     "Courier Expréss Ñandú S.A.",
		NombreComercial: "Courier Express",
		DirMatriz:       "Av. República E7-123, Quito",
		Establecimiento: "001",
		PuntoEmision:    "001",
	}
	client := &entity.Client{
		Name:        "José Martínez",
		IdentType:   "CEDULA",
		IdentNumber: "1714610621",
		Address:     "Calle Larga 4-56, Cuenca",
		Email:       "jose@example.com",
		Phone:       "0991234567",
	}
	invoice := &entity.Invoice{
		Establecimiento: "001",
		PuntoEmision:    "001",
		Secuencial:      45,
		Date:            time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod:   "CASH",
		Subtotal:        decimal.NewFromFloat(10),
		Discount:        decimal.Zero,
		TaxAmount:       decimal.NewFromFloat(1.5),
		GrandTotal:      decimal.NewFromFloat(11.5),
	}
	return &sri.FacturaBuildContext{
		Invoice:    invoice,
		Enterprise: enterprise,
		Client:     client,
		Details: []sri.InvoiceLineXML{{
			CodigoPrincipal: "G-000123",
			Descripcion:     "Envío de encomienda Quito - Guayaquil",
			Cantidad:        decimal.NewFromInt(1),
			PrecioUnitario:  decimal.NewFromFloat(10),
			Descuento:       decimal.Zero,
			Subtotal:        decimal.NewFromFloat(10),
		}},
		ClaveAcceso: "0109202601123456789000110010010000000451234567816",
		Ambiente:    "1",
		TipoEmision: "1",
	}
}

func TestXMLBuilder_EstructuraFactura(t *testing.T) {
	builder := sri.NewXMLBuilderService()
	out, err := builder.Build(buildContextFixture())
	require.NoError(t, err)
	xmlStr := string(out)

	assert.Contains(t, xmlStr, `<factura id="comprobante" version="1.1.0">`)
	assert.Contains(t, xmlStr, "<ambiente>1</ambiente>")
	assert.Contains(t, xmlStr, "<codDoc>01</codDoc>")
	assert.Contains(t, xmlStr, "<estab>001</estab>")
	assert.Contains(t, xmlStr, "<ptoEmi>001</ptoEmi>")
	assert.Contains(t, xmlStr, "<secuencial>000000045</secuencial>")
	assert.Contains(t, xmlStr, "<fechaEmision>01/09/2026</fechaEmision>")
	assert.Contains(t, xmlStr, "<moneda>DOLAR</moneda>")
}

func TestXMLBuilder_MontosConDosDecimales(t *testing.T) {
	builder := sri.NewXMLBuilderService()
	out, err := builder.Build(buildContextFixture())
	require.NoError(t, err)
	xmlStr := string(out)

	assert.Contains(t, xmlStr, "<totalSinImpuestos>10.00</totalSinImpuestos>")
	assert.Contains(t, xmlStr, "<importeTotal>11.50</importeTotal>")
	assert.Contains(t, xmlStr, "<cantidad>1.00</cantidad>")
	assert.Contains(t, xmlStr, "<precioUnitario>10.00</precioUnitario>")
	assert.Contains(t, xmlStr, "<baseImponible>10.00</baseImponible>")
}

func TestXMLBuilder_ImpuestoIVA15(t *testing.T) {
	builder := sri.NewXMLBuilderService()
	out, err := builder.Build(buildContextFixture())
	require.NoError(t, err)
	xmlStr := string(out)

	assert.Contains(t, xmlStr, "<codigo>2</codigo>")
	assert.Contains(t, xmlStr, "<codigoPorcentaje>4</codigoPorcentaje>")
	assert.Contains(t, xmlStr, "<tarifa>15.00</tarifa>")
	assert.Contains(t, xmlStr, "<valor>1.50</valor>")
}

func TestXMLBuilder_DiacriticosEliminados(t *testing.T) {
	builder := sri.NewXMLBuilderService()
	out, err := builder.Build(buildContextFixture())
	require.NoError(t, err)
	xmlStr := string(out)

	assert.Contains(t, xmlStr, "Courier Express Nandu S.A.",
		"la razón social pierde tildes y eñes")
	assert.Contains(t, xmlStr, "Jose Martinez")
	assert.NotContains(t, xmlStr, "é")
	assert.NotContains(t, xmlStr, "ñ")
}

func TestXMLBuilder_FormaPago(t *testing.T) {
	ctx := buildContextFixture()
	ctx.Invoice.PaymentMethod = "CASH"
	out, err := sri.NewXMLBuilderService().Build(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<formaPago>20</formaPago>", "efectivo es el código 20")

	ctx.Invoice.PaymentMethod = "CARD"
	out, err = sri.NewXMLBuilderService().Build(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<formaPago>19</formaPago>", "cualquier otro medio cae al código 19")
}

func TestXMLBuilder_TipoIdentificacionComprador(t *testing.T) {
	cases := map[string]string{
		"RUC":              "04",
		"CEDULA":           "05",
		"PASAPORTE":        "06",
		"CONSUMIDOR_FINAL": "07",
		"OTRO":             "06",
	}
	for identType, want := range cases {
		ctx := buildContextFixture()
		ctx.Client.IdentType = identType
		out, err := sri.NewXMLBuilderService().Build(ctx)
		require.NoError(t, err)
		assert.Contains(t, string(out),
			"<tipoIdentificacionComprador>"+want+"</tipoIdentificacionComprador>",
			"tipo %s debe mapear a %s", identType, want)
	}
}

func TestXMLBuilder_InfoAdicional(t *testing.T) {
	out, err := sri.NewXMLBuilderService().Build(buildContextFixture())
	require.NoError(t, err)
	xmlStr := string(out)

	assert.Contains(t, xmlStr, `<campoAdicional nombre="telefono">0991234567</campoAdicional>`)
	assert.Contains(t, xmlStr, `<campoAdicional nombre="email">jose@example.com</campoAdicional>`)
}

func TestXMLBuilder_ContextoIncompleto(t *testing.T) {
	builder := sri.NewXMLBuilderService()

	_, err := builder.Build(nil)
	assert.Error(t, err)

	ctx := buildContextFixture()
	ctx.ClaveAcceso = ""
	_, err = builder.Build(ctx)
	assert.Error(t, err, "sin clave de acceso no hay factura válida")
}

// ── AssemblerService ──────────────────────────────────────────────────────────

func TestAssembler_GeneraClaveYEscribeXML(t *testing.T) {
	dir := t.TempDir()
	assembler := sri.NewAssemblerService(dir)

	ctx := buildContextFixture()
	ctx.ClaveAcceso = "" // la genera el ensamblador
	path, err := assembler.Assemble(ctx)
	require.NoError(t, err)

	inv := ctx.Invoice
	assert.Len(t, inv.AccessKey, 49)
	require.NoError(t, pkgsri.VerifyClaveAcceso(inv.AccessKey))
	assert.Equal(t, path, inv.XMLPath)
	assert.True(t, strings.HasSuffix(path, inv.AccessKey+".xml"),
		"el archivo se nombra con la clave de acceso")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<claveAcceso>"+inv.AccessKey+"</claveAcceso>")

	// No quedan temporales a medio escribir
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAssembler_SerieInvalida(t *testing.T) {
	assembler := sri.NewAssemblerService(t.TempDir())

	ctx := buildContextFixture()
	ctx.ClaveAcceso = ""
	ctx.Invoice.Establecimiento = "1" // serie de menos de 6 dígitos

	_, err := assembler.Assemble(ctx)
	var asmErr *sri.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Contains(t, asmErr.Error(), "000000045", "el error identifica el comprobante")
}
