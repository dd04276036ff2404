// Package pdf implementa la generación del RIDE (Representación Impresa de
// Documentos Electrónicos) de la factura electrónica SRI, ficha técnica de
// comprobantes electrónicos esquema offline.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUC  │  N° Factura + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLAVE DE ACCESO (49 dígitos) + código de barras            │
//	│  EMISOR: Dirección matriz / Tel / Email                     │
//	│  ADQUIRIENTE: Nombre + identificación + contacto            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | Subtotal      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal sin imp. / IVA 15% / VALOR TOTAL         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER SRI: N° autorización + fecha + ambiente             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/barcode"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 90, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// RIDEGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type RIDEGenerator struct{}

// NewRIDEGenerator construye el generador.
func NewRIDEGenerator() *RIDEGenerator { return &RIDEGenerator{} }

// Generate genera el RIDE de la factura y devuelve sus bytes.
func (g *RIDEGenerator) Generate(
	invoice *entity.Invoice,
	enterprise *entity.Enterprise,
	client *entity.Client,
	details []*entity.InvoiceDetail,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura Electrónica", true).
		WithAuthor(enterprise.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(invoice, enterprise))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	for _, r := range claveAccesoRows(invoice) {
		m.AddRows(r)
	}
	m.AddRows(emisorRow(enterprise))
	m.AddRows(adquirienteRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de detalles
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(details) {
		m.AddRows(r)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	// Footer SRI
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range sriFooterRows(invoice, enterprise) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + RUC (izq) y N° factura + fecha (der).
func headerRow(invoice *entity.Invoice, enterprise *entity.Enterprise) core.Row {
	name := enterprise.RazonSocial
	if enterprise.NombreComercial != "" {
		name = enterprise.NombreComercial
	}
	fecha := invoice.Date.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+enterprise.RUC, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("No. "+invoice.NumeroCompleto(), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha emisión: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// claveAccesoRows: clave de acceso de 49 dígitos como texto y código de barras
// CODE 128, tal como exige el formato del RIDE.
func claveAccesoRows(invoice *entity.Invoice) []core.Row {
	if invoice.AccessKey == "" {
		return nil
	}
	return []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("CLAVE DE ACCESO", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(14).Add(
			col.New(12).Add(
				code.NewBar(invoice.AccessKey, props.Barcode{
					Type:    barcode.Code128,
					Percent: 90,
					Center:  true,
				}),
			),
		),
		row.New(4).Add(col.New(12).Add(
			text.New(invoice.AccessKey, props.Text{
				Size: 7, Align: align.Center, Color: colorGray,
			}),
		)),
	}
}

// emisorRow: datos del emisor (empresa).
func emisorRow(enterprise *entity.Enterprise) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección matriz: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(enterprise.DirMatriz, "—"),
				nonEmpty(enterprise.Phone, "—"),
				nonEmpty(enterprise.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// adquirienteRow: datos del comprador.
func adquirienteRow(client *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ADQUIRIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s: %s   |   Email: %s   |   Tel: %s",
				client.IdentType,
				client.IdentNumber,
				nonEmpty(client.Email, "—"),
				nonEmpty(client.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Dcto.", 1, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(details []*entity.InvoiceDetail) []core.Row {
	result := make([]core.Row, 0, len(details))
	for _, d := range details {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				d.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				d.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+d.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				"$"+d.Discount.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1},
			)),
			col.New(3).Add(text.New(
				"$"+d.Subtotal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3), // espacio izquierdo
		col.New(3).Add(
			label("Subtotal sin impuestos:"),
			label("IVA 15%:"),
			grandLabel("VALOR TOTAL:"),
		),
		col.New(3).Add(
			value("$"+invoice.Subtotal.StringFixed(2)),
			value("$"+invoice.TaxAmount.StringFixed(2)),
			grandValue("$"+invoice.GrandTotal.StringFixed(2)),
		),
		col.New(3), // espacio derecho
	)
}

// sriFooterRows: número de autorización + fecha + ambiente + leyenda legal.
func sriFooterRows(invoice *entity.Invoice, enterprise *entity.Enterprise) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN DE AUTORIZACIÓN SRI", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if invoice.AuthNumber != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Número de autorización:", props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1,
			}),
		)))
		for _, chunk := range splitEvery(invoice.AuthNumber, 80) {
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
			)))
		}
	}

	if invoice.AuthDate != nil {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Fecha de autorización: "+invoice.AuthDate.Format("02/01/2006 15:04:05"), props.Text{
				Size: 7, Top: 1, Color: colorGray,
			}),
		)))
	}

	rows = append(rows, row.New(5).Add(col.New(12).Add(
		text.New("Ambiente: "+ambienteLabel(enterprise.Ambiente)+"   |   Emisión: NORMAL", props.Text{
			Size: 7, Top: 1, Color: colorGray,
		}),
	)))

	// Leyenda legal
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Documento emitido bajo la modalidad de comprobantes electrónicos "+
				"autorizada por el Servicio de Rentas Internas. "+
				"Conserve este documento como soporte tributario.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func ambienteLabel(code string) string {
	if code == "2" {
		return "PRODUCCIÓN"
	}
	return "PRUEBAS"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
