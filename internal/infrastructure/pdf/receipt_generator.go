// Package pdf genera el recibo imprimible del punto de venta (tirilla estilo
// 80 mm) con Maroto v2.
//
// Layout de la tirilla:
//
//	┌────────────────────────────────┐
//	│        NOMBRE DEL NEGOCIO      │
//	│     NIT - sede - dirección     │
//	│  ────────────────────────────  │
//	│  Recibo / fecha / cajero /     │
//	│  cliente                       │
//	│  ────────────────────────────  │
//	│  2 x Café de origen     50.000 │
//	│    @ 25.000 c/u                │
//	│  ────────────────────────────  │
//	│  Subtotal / IVA / TOTAL        │
//	│  Pagos por método              │
//	│  ────────────────────────────  │
//	│  CUDE + QR (solo modo fiscal)  │
//	│  Leyenda final                 │
//	└────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appsale "github.com/jhoicas/Pos-api/internal/application/sale"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// receiptWidth ancho del papel térmico en milímetros.
const receiptWidth = 80.0

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// esCO imprime números con la convención es-CO (punto de miles).
var esCO = message.NewPrinter(language.MustParse("es-CO"))

// ReceiptGenerator implementa sale.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

var _ appsale.ReceiptRenderer = (*ReceiptGenerator)(nil)

// RenderReceipt genera el PDF de la tirilla y devuelve sus bytes.
func (g *ReceiptGenerator) RenderReceipt(_ context.Context, data *appsale.ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(receiptWidth, estimateHeight(data)).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "courier", Size: 7}).
		WithTitle("Recibo "+data.Sale.ReceiptNumber, true).
		WithAuthor(data.Business.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(data)...)
	m.AddRows(divider())
	m.AddRows(saleInfoRows(data)...)
	m.AddRows(divider())
	m.AddRows(itemRows(data.Sale.Items)...)
	m.AddRows(divider())
	m.AddRows(totalsRows(data.Sale)...)
	if len(data.Sale.Payments) > 0 {
		m.AddRows(paymentRows(data.Sale.Payments)...)
	}
	if banner := statusBanner(data.Sale); banner != nil {
		m.AddRows(banner...)
	}
	if data.Sale.CUDE != "" {
		m.AddRows(divider())
		m.AddRows(fiscalRows(data)...)
	}
	m.AddRows(footerRows()...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// estimateHeight aproxima el alto de la tirilla según su contenido; que sobre
// papel es preferible a cortar el pie.
func estimateHeight(data *appsale.ReceiptData) float64 {
	h := 95.0
	h += float64(len(data.Sale.Items)) * 10
	h += float64(len(data.Sale.Payments)) * 5
	if data.Sale.CUDE != "" {
		h += 55
	}
	if data.Sale.Status == entity.SaleStatusVoided || data.Sale.Status == entity.SaleStatusRefunded {
		h += 12
	}
	return h
}

func divider() core.Row {
	return line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3})
}

// headerRows identidad del negocio centrada: nombre, NIT y sede.
func headerRows(data *appsale.ReceiptData) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(data.Business.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 1,
			}),
		)),
	}
	if data.Business.NIT != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("NIT: "+data.Business.NIT, props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)))
	}
	location := data.Outlet.Name
	if data.Outlet.Address != "" {
		location += " - " + data.Outlet.Address
	}
	rows = append(rows, row.New(4).Add(col.New(12).Add(
		text.New(location, props.Text{Size: 7, Align: align.Center, Color: colorGray}),
	)))
	if data.Outlet.Phone != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("Tel: "+data.Outlet.Phone, props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)))
	}
	return rows
}

func saleInfoRows(data *appsale.ReceiptData) []core.Row {
	info := func(s string) core.Row {
		return row.New(4).Add(col.New(12).Add(text.New(s, props.Text{Size: 7})))
	}
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("Recibo: "+data.Sale.ReceiptNumber, props.Text{Style: fontstyle.Bold, Size: 8}),
		)),
		info("Fecha: " + data.Sale.CreatedAt.Format("02/01/2006 15:04")),
	}
	if data.Cashier != nil {
		rows = append(rows, info("Cajero: "+data.Cashier.Name))
	}
	if data.Customer != nil {
		c := "Cliente: " + data.Customer.Name
		if data.Customer.DocumentID != "" {
			c += " (" + data.Customer.DocumentID + ")"
		}
		rows = append(rows, info(c))
	} else {
		rows = append(rows, info("Cliente: consumidor final"))
	}
	return rows
}

// itemRows una banda por línea: cantidad y descripción a la izquierda, total
// a la derecha; debajo el precio unitario cuando la cantidad no es 1 y el
// descuento de línea si lo hay.
func itemRows(items []entity.SaleItem) []core.Row {
	var rows []core.Row
	for _, it := range items {
		name := it.ProductName
		if it.VariantName != "" {
			name += " (" + it.VariantName + ")"
		}
		rows = append(rows, row.New(4).Add(
			col.New(8).Add(text.New(
				fmt.Sprintf("%s x %s", it.Quantity.String(), name),
				props.Text{Size: 7},
			)),
			col.New(4).Add(text.New(money(it.LineTotal), props.Text{Size: 7, Align: align.Right})),
		))
		if !it.Quantity.Equal(decimal.NewFromInt(1)) {
			rows = append(rows, row.New(3).Add(col.New(12).Add(
				text.New("  @ "+money(it.UnitPrice)+" c/u", props.Text{Size: 6, Color: colorGray}),
			)))
		}
		if it.ItemDiscount.IsPositive() {
			rows = append(rows, row.New(3).Add(col.New(12).Add(
				text.New("  desc. -"+money(it.ItemDiscount), props.Text{Size: 6, Color: colorGray}),
			)))
		}
	}
	return rows
}

func totalsRows(s *entity.Sale) []core.Row {
	amountRow := func(label, value string) core.Row {
		return row.New(4).Add(
			col.New(7).Add(text.New(label, props.Text{Size: 7, Align: align.Right})),
			col.New(5).Add(text.New(value, props.Text{Size: 7, Align: align.Right})),
		)
	}
	rows := []core.Row{amountRow("Subtotal:", money(s.Subtotal))}
	if s.DiscountAmount.IsPositive() {
		rows = append(rows, amountRow("Descuento:", "-"+money(s.DiscountAmount)))
	}
	rows = append(rows, amountRow("IVA:", money(s.TaxAmount)))
	if s.ServiceCharge.IsPositive() {
		rows = append(rows, amountRow("Servicio:", money(s.ServiceCharge)))
	}
	rows = append(rows, row.New(6).Add(
		col.New(7).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
		})),
		col.New(5).Add(text.New(money(s.GrandTotal), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
		})),
	))
	return rows
}

// paymentRows pagos aplicados al crear la venta; el cambio se entrega en caja
// y no se imprime.
func paymentRows(payments []entity.SalePayment) []core.Row {
	rows := []core.Row{row.New(4).Add(col.New(12).Add(
		text.New("Pagos:", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1}),
	))}
	for _, p := range payments {
		label := methodLabel(p.Method)
		if p.Reference != "" {
			label += " (" + p.Reference + ")"
		}
		rows = append(rows, row.New(4).Add(
			col.New(7).Add(text.New(label, props.Text{Size: 7, Left: 2})),
			col.New(5).Add(text.New(money(p.Amount), props.Text{Size: 7, Align: align.Right})),
		))
	}
	return rows
}

// statusBanner marca visible para ventas anuladas o devueltas.
func statusBanner(s *entity.Sale) []core.Row {
	var label string
	switch s.Status {
	case entity.SaleStatusVoided:
		label = "*** VENTA ANULADA ***"
	case entity.SaleStatusRefunded:
		label = "*** VENTA DEVUELTA ***"
	default:
		return nil
	}
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2}),
	))}
	if s.VoidReason != "" {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("Motivo: "+s.VoidReason, props.Text{Size: 6.5, Align: align.Center, Color: colorGray}),
		)))
	}
	return rows
}

// fiscalRows CUDE partido en trozos legibles más el QR de verificación.
func fiscalRows(data *appsale.ReceiptData) []core.Row {
	rows := []core.Row{row.New(4).Add(col.New(12).Add(
		text.New("CUDE:", props.Text{Style: fontstyle.Bold, Size: 6.5, Top: 1}),
	))}
	for _, chunk := range splitEvery(data.Sale.CUDE, 48) {
		rows = append(rows, row.New(3).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 5.5, Color: colorGray}),
		)))
	}
	rows = append(rows,
		row.New(26).Add(
			col.New(3),
			col.New(6).Add(code.NewQr(data.Sale.CUDE, props.Rect{Percent: 90, Center: true})),
			col.New(3),
		),
		row.New(5).Add(col.New(12).Add(
			text.New("Documento equivalente POS", props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center,
			}),
		)),
	)
	if data.Business.Environment == "2" {
		rows = append(rows, row.New(3).Add(col.New(12).Add(
			text.New("Ambiente de pruebas", props.Text{Size: 6, Align: align.Center, Color: colorGray}),
		)))
	}
	return rows
}

func footerRows() []core.Row {
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("¡Gracias por su compra!", props.Text{Size: 7.5, Align: align.Center, Top: 2}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New("Conserve este recibo como soporte de su compra.", props.Text{
				Size: 5.5, Align: align.Center, Color: colorGray,
			}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea un monto COP sin decimales: $72.150.
func money(d decimal.Decimal) string {
	f, _ := d.Round(0).Float64()
	return esCO.Sprintf("$%v", number.Decimal(f, number.MaxFractionDigits(0)))
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
