package sri

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	pkgsri "github.com/jhoicas/courier-pro/pkg/sri"
)

// Versión del esquema de factura del SRI.
const (
	facturaVersion = "1.1.0"
	facturaID      = "comprobante" // atributo id exigido por el firmador
)

// XMLBuilderService construye el XML <factura> del SRI (sin firma).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del documento factura v1.1.0.
// Todos los montos y cantidades se serializan con exactamente 2 decimales,
// punto decimal y sin separador de miles.
func (s *XMLBuilderService) Build(ctx *FacturaBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Invoice == nil || ctx.Enterprise == nil || ctx.Client == nil {
		return nil, fmt.Errorf("sri: faltan invoice, enterprise o client en el contexto")
	}
	if ctx.ClaveAcceso == "" {
		return nil, fmt.Errorf("sri: el contexto requiere la clave de acceso")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "factura"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: facturaID},
			{Name: xml.Name{Local: "version"}, Value: facturaVersion},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	s.writeInfoTributaria(enc, ctx)
	s.writeInfoFactura(enc, ctx)
	s.writeDetalles(enc, ctx)
	s.writeInfoAdicional(enc, ctx)

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeInfoTributaria escribe la cabecera tributaria del emisor.
func (s *XMLBuilderService) writeInfoTributaria(enc *xml.Encoder, ctx *FacturaBuildContext) {
	open(enc, "infoTributaria")
	writeEl(enc, "ambiente", ctx.Ambiente)
	writeEl(enc, "tipoEmision", ctx.TipoEmision)
	writeEl(enc, "razonSocial", toASCII(ctx.Enterprise.RazonSocial))
	if ctx.Enterprise.NombreComercial != "" {
		writeEl(enc, "nombreComercial", toASCII(ctx.Enterprise.NombreComercial))
	}
	writeEl(enc, "ruc", fmt.Sprintf("%013s", ctx.Enterprise.RUC))
	writeEl(enc, "claveAcceso", ctx.ClaveAcceso)
	writeEl(enc, "codDoc", pkgsri.DocTypeFactura)
	writeEl(enc, "estab", ctx.Invoice.Establecimiento)
	writeEl(enc, "ptoEmi", ctx.Invoice.PuntoEmision)
	writeEl(enc, "secuencial", secuencial(ctx.Invoice.Secuencial))
	writeEl(enc, "dirMatriz", toASCII(ctx.Enterprise.DirMatriz))
	closeEl(enc, "infoTributaria")
}

// writeInfoFactura escribe comprador, totales, impuestos y pagos.
func (s *XMLBuilderService) writeInfoFactura(enc *xml.Encoder, ctx *FacturaBuildContext) {
	inv := ctx.Invoice
	open(enc, "infoFactura")
	writeEl(enc, "fechaEmision", inv.Date.Format("02/01/2006"))
	writeEl(enc, "dirEstablecimiento", toASCII(ctx.Enterprise.DirMatriz))
	writeEl(enc, "obligadoContabilidad", "SI")
	writeEl(enc, "tipoIdentificacionComprador", pkgsri.IdentificationTypeCode(ctx.Client.IdentType))
	writeEl(enc, "razonSocialComprador", toASCII(ctx.Client.Name))
	writeEl(enc, "identificacionComprador", ctx.Client.IdentNumber)
	if ctx.Client.Address != "" {
		writeEl(enc, "direccionComprador", toASCII(ctx.Client.Address))
	}
	writeEl(enc, "totalSinImpuestos", money(inv.Subtotal))
	writeEl(enc, "totalDescuento", money(inv.Discount))

	open(enc, "totalConImpuestos")
	open(enc, "totalImpuesto")
	writeEl(enc, "codigo", pkgsri.TaxCodeIVA)
	writeEl(enc, "codigoPorcentaje", pkgsri.TaxRateCodeIVA15)
	writeEl(enc, "baseImponible", money(inv.Subtotal))
	writeEl(enc, "valor", money(inv.TaxAmount))
	closeEl(enc, "totalImpuesto")
	closeEl(enc, "totalConImpuestos")

	writeEl(enc, "propina", "0.00")
	writeEl(enc, "importeTotal", money(inv.GrandTotal))
	writeEl(enc, "moneda", "DOLAR")

	open(enc, "pagos")
	open(enc, "pago")
	writeEl(enc, "formaPago", pkgsri.PaymentMethodCode(inv.PaymentMethod))
	writeEl(enc, "total", money(inv.GrandTotal))
	closeEl(enc, "pago")
	closeEl(enc, "pagos")

	closeEl(enc, "infoFactura")
}

// writeDetalles escribe una línea por detalle con su impuesto anidado al 15 %.
func (s *XMLBuilderService) writeDetalles(enc *xml.Encoder, ctx *FacturaBuildContext) {
	open(enc, "detalles")
	for i, line := range ctx.Details {
		open(enc, "detalle")
		codigo := line.CodigoPrincipal
		if codigo == "" {
			codigo = "SRV-" + strconv.Itoa(i+1)
		}
		writeEl(enc, "codigoPrincipal", codigo)
		writeEl(enc, "descripcion", toASCII(line.Descripcion))
		writeEl(enc, "cantidad", money(line.Cantidad))
		writeEl(enc, "precioUnitario", money(line.PrecioUnitario))
		writeEl(enc, "descuento", money(line.Descuento))
		writeEl(enc, "precioTotalSinImpuesto", money(line.Subtotal))

		open(enc, "impuestos")
		open(enc, "impuesto")
		writeEl(enc, "codigo", pkgsri.TaxCodeIVA)
		writeEl(enc, "codigoPorcentaje", pkgsri.TaxRateCodeIVA15)
		writeEl(enc, "tarifa", pkgsri.IVARatePercent)
		writeEl(enc, "baseImponible", money(line.Subtotal))
		writeEl(enc, "valor", money(line.Subtotal.Mul(decimal.NewFromFloat(0.15)).Round(2)))
		closeEl(enc, "impuesto")
		closeEl(enc, "impuestos")

		closeEl(enc, "detalle")
	}
	closeEl(enc, "detalles")
}

// writeInfoAdicional escribe teléfono y email del comprador si existen.
func (s *XMLBuilderService) writeInfoAdicional(enc *xml.Encoder, ctx *FacturaBuildContext) {
	if ctx.Client.Phone == "" && ctx.Client.Email == "" {
		return
	}
	open(enc, "infoAdicional")
	if ctx.Client.Phone != "" {
		writeCampoAdicional(enc, "telefono", ctx.Client.Phone)
	}
	if ctx.Client.Email != "" {
		writeCampoAdicional(enc, "email", ctx.Client.Email)
	}
	closeEl(enc, "infoAdicional")
}

// ── helpers de escritura ─────────────────────────────────────────────────────

func open(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeEl(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func writeEl(enc *xml.Encoder, local, value string) {
	open(enc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, local)
}

func writeCampoAdicional(enc *xml.Encoder, nombre, value string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "campoAdicional"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "nombre"}, Value: nombre}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, "campoAdicional")
}

// money serializa montos/cantidades con 2 decimales y punto decimal.
func money(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func secuencial(n int64) string {
	return fmt.Sprintf("%09d", n)
}

// asciiTransformer elimina diacríticos (á→a, ñ→n) vía descomposición NFD.
// El validador del SRI rechaza varios campos con caracteres fuera de ASCII.
var asciiTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func toASCII(s string) string {
	out, _, err := transform.String(asciiTransformer, s)
	if err != nil {
		return s
	}
	return out
}
