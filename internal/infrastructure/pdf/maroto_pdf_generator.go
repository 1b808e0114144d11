// Package pdf implementa el KuDE, la representación gráfica del Documento
// Electrónico SIFEN (factura electrónica, Paraguay).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  (FIRMA SIMULADA · SIN VALIDEZ LEGAL) si corresponde          │
//	│  HEADER: Razón Social + RUC  │  Timbrado / Fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección                                           │
//	│  RECEPTOR: Nombre                                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cód. | Cant | Descripción | P.Unit | Subtotal        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total operación / Gravada / Liquidación IVA        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: CDC en grupos de 4 + QR de consulta + leyenda       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appbilling "github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 56, Blue: 147}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 200, Green: 16, Blue: 46}
)

const fechaLayout = "02/01/2006 15:04:05"

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el KuDE y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	company *entity.Company,
	qrURL string,
) ([]byte, error) {
	if invoice == nil || company == nil {
		return nil, fmt.Errorf("pdf: factura o empresa nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("KuDE Factura Electrónica "+invoice.CDC, true).
		WithAuthor(nonEmpty(company.Name, invoice.IssuerRUC), true).
		Build()

	m := maroto.New(cfg)

	if invoice.SignatureMode != string(pkgsifen.SignatureModeReal) {
		m.AddRows(simulatedBannerRow())
	}

	m.AddRows(headerRow(invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	m.AddRows(receptorRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(invoice.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range sifenFooterRows(invoice, qrURL) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func simulatedBannerRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("FIRMA SIMULADA · SIN VALIDEZ LEGAL", props.Text{
			Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: colorAlert, Top: 1,
		}),
	))
}

// headerRow: Razón social + RUC (izq) y tipo de documento + fecha (der).
func headerRow(invoice *entity.Invoice, company *entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+nonEmpty(invoice.IssuerRUC, company.RUC), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA ELECTRÓNICA", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(documentNumber(invoice.CDC), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Emisión: "+invoice.IssuedAt.Format(fechaLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Dirección: "+nonEmpty(company.Address, "-"), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func receptorRow(invoice *entity.Invoice) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.BuyerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Código", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableDetailRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(it.ProductCode, "-"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatGuarani(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatGuarani(it.Subtotal()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: total de la operación y liquidación del IVA a la tasa de la factura.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	rate := strconv.Itoa(invoice.TaxRate) + "%"

	return row.New(26).Add(
		col.New(4),
		col.New(4).Add(
			label("Gravada "+rate+":"),
			text.New("Liquidación IVA "+rate+":", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			text.New("TOTAL OPERACIÓN:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13,
			}),
		),
		col.New(4).Add(
			value(formatGuarani(invoice.TaxBase)),
			text.New(formatGuarani(invoice.TaxAmount), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 6}),
			text.New(formatGuarani(invoice.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13,
			}),
		),
	)
}

// sifenFooterRows: CDC en grupos de 4 dígitos, QR de consulta y leyenda.
func sifenFooterRows(invoice *entity.Invoice, qrURL string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CDC (Código de Control):", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(strings.Join(splitEvery(invoice.CDC, 4), " "), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 1, Left: 2,
			}),
		)),
		row.New(3),
	}

	if qrURL != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(qrURL, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Consulte la validez de esta Factura Electrónica con el número de CDC\nimpreso abajo en:", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New(qrURL, props.Text{Size: 7, Top: 14, Left: 3, Color: colorPrimary}),
				text.New("ESTE DOCUMENTO ES UNA REPRESENTACIÓN GRÁFICA\nDE UN DOCUMENTO ELECTRÓNICO (XML)", props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 26, Left: 3, Color: colorPrimary,
				}),
			),
		))
	}

	legend := "Si su documento electrónico presenta algún error, puede solicitar la modificación dentro de las " +
		"72 horas siguientes a la emisión de este comprobante."
	if invoice.SignatureMode != string(pkgsifen.SignatureModeReal) {
		legend = "Documento firmado en modo simulado: no fue firmado con un certificado válido y no tiene validez tributaria."
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(legend, props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

var guaraniPrinter = message.NewPrinter(language.Spanish)

// formatGuarani monto en guaraníes sin decimales con punto de miles. Ej: 110000 → "Gs. 110.000".
func formatGuarani(d decimal.Decimal) string {
	return guaraniPrinter.Sprintf("Gs. %d", d.Round(0).IntPart())
}

// documentNumber arma est-pto-número (001-001-0000001) a partir del CDC.
func documentNumber(cdc string) string {
	if len(cdc) < 24 {
		return "-"
	}
	return cdc[11:14] + "-" + cdc[14:17] + "-" + cdc[17:24]
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
