// Package pdf genera el kit de bienvenida de una póliza emitida.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Aseguradora + Producto │  N° Póliza + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TITULAR: Nombre + documento + contacto                      │
//	│  VIGENCIA: inicio / fin / prima                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  COBERTURAS: una fila por cobertura                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ASESOR: vendedor responsable                                │
//	│  FOOTER: QR de verificación + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
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

	"github.com/jhoicas/seguros-api/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ ports.WelcomeKitPDFGenerator = (*WelcomeKitGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// WelcomeKitGenerator implementa ports.WelcomeKitPDFGenerator usando Maroto v2.
type WelcomeKitGenerator struct {
	// verifyBaseURL prefijo del enlace codificado en el QR; vacío omite el QR.
	verifyBaseURL string
}

// NewWelcomeKitGenerator construye el generador.
func NewWelcomeKitGenerator(verifyBaseURL string) *WelcomeKitGenerator {
	return &WelcomeKitGenerator{verifyBaseURL: strings.TrimRight(verifyBaseURL, "/")}
}

// GenerateWelcomeKit genera el PDF y devuelve sus bytes.
func (g *WelcomeKitGenerator) GenerateWelcomeKit(_ context.Context, data ports.WelcomeKitData) ([]byte, error) {
	if data.Policy == nil || data.Client == nil || data.Product == nil {
		return nil, fmt.Errorf("pdf: datos incompletos para el kit de bienvenida")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kit de bienvenida "+data.Policy.Number, true).
		WithAuthor(nonEmpty(data.Product.Insurer, "Seguros"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(holderRow(data))
	m.AddRows(termRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(coverageHeaderRow())
	for _, r := range coverageRows(data.Product.Coverages) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	if data.Seller != nil {
		m.AddRows(sellerRow(data))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range g.footerRows(data) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: aseguradora + producto (izq) y N° póliza + fecha de emisión (der).
func headerRow(data ports.WelcomeKitData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(data.Product.Insurer, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(data.Product.Name, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("KIT DE BIENVENIDA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(data.Policy.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+data.IssuedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// holderRow: datos del titular.
func holderRow(data ports.WelcomeKitData) core.Row {
	c := data.Client
	return row.New(14).Add(
		col.New(12).Add(
			text.New("TITULAR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Documento: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(c.Document, "—"),
				nonEmpty(c.Email, "—"),
				nonEmpty(c.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// termRow: vigencia y prima.
func termRow(data ports.WelcomeKitData) core.Row {
	p := data.Policy
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Top: top})
	}
	return row.New(14).Add(
		col.New(4).Add(label("INICIO DE VIGENCIA", 1), value(p.StartDate.Format("02/01/2006"), 6)),
		col.New(4).Add(label("FIN DE VIGENCIA", 1), value(p.EndDate.Format("02/01/2006"), 6)),
		col.New(4).Add(label("PRIMA", 1), value(money(p.Premium), 6)),
	)
}

func coverageHeaderRow() core.Row {
	return row.New(8).Add(
		col.New(1).Add(text.New("#", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Center,
			Color: colorWhite, Top: 2,
		})),
		col.New(11).Add(text.New("Coberturas incluidas", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Left,
			Color: colorWhite, Top: 2, Left: 1,
		})),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// coverageRows: una fila por cobertura del producto.
func coverageRows(coverages []string) []core.Row {
	if len(coverages) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Consulte las condiciones generales del producto.", props.Text{
				Size: 8, Top: 1, Left: 1, Color: colorGray,
			}),
		))}
	}
	result := make([]core.Row, 0, len(coverages))
	for i, c := range coverages {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(11).Add(text.New(c, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return result
}

func sellerRow(data ports.WelcomeKitData) core.Row {
	s := data.Seller
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SU ASESOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Email: %s   |   Tel: %s",
				s.Name,
				nonEmpty(s.Email, "—"),
				nonEmpty(s.Phone, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// footerRows: QR de verificación (si hay URL base) + leyenda.
func (g *WelcomeKitGenerator) footerRows(data ports.WelcomeKitData) []core.Row {
	var rows []core.Row
	if g.verifyBaseURL != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(g.verifyBaseURL+"/"+data.Policy.Number, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escanea el código QR para verificar\nla vigencia de tu póliza.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("¡Bienvenido!", props.Text{
					Style: fontstyle.Bold, Size: 12, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Este documento resume tu póliza. Las condiciones generales y particulares "+
				"prevalecen sobre este resumen. Conserve este documento.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func money(d decimal.Decimal) string {
	s := d.StringFixed(0)
	if strings.HasPrefix(s, "-") {
		return "-$" + formatMoney(s[1:])
	}
	return "$" + formatMoney(s)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
