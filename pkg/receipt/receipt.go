// Package receipt renders order receipts as PDF documents.
package receipt

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
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"tienda/internal/models"
)

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

var paymentLabels = map[models.PaymentMethod]string{
	models.PaymentTigoMoney: "Tigo Money",
	models.PaymentQR:        "QR Simple",
	models.PaymentWhatsApp:  "WhatsApp",
}

// Generator builds receipt PDFs for a named store.
type Generator struct {
	storeName string
}

func NewGenerator(storeName string) *Generator {
	if storeName == "" {
		storeName = "Tienda"
	}
	return &Generator{storeName: storeName}
}

// Render returns the PDF bytes for order. Orders paid by QR include a code
// carrying the order reference and total.
func (g *Generator) Render(order *models.Order) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("receipt: order is required")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Comprobante orden #%d", order.ID), true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(order))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(order.Details.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalsRows(order)...)

	if order.PaymentMethod == models.PaymentQR {
		ref := fmt.Sprintf("ORDEN-%d|TOTAL-%s", order.ID, order.Total.StringFixed(2))
		m.AddRows(row.New(45).Add(
			col.New(4).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(text.New("Escanea el código para completar el pago con QR Simple.", props.Text{
				Size: 9, Top: 15, Left: 3, Color: colorGray,
			})),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt: generating document: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *Generator) headerRow(order *models.Order) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Comprobante de pedido", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Orden #%d", order.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1}),
			text.New("Fecha: "+order.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
			text.New("Estado: "+string(order.Status), props.Text{Size: 8, Align: align.Right, Top: 12, Color: colorGray}),
		),
	)
}

func customerRow(order *models.Order) core.Row {
	d := order.Details.Delivery
	delivery := "Recojo en tienda"
	if d.Method == models.DeliveryShip {
		delivery = fmt.Sprintf("Envío a %s, %s", deref(d.Address), deref(d.City))
	}
	billing := "Sin factura"
	if b := order.Details.Billing; b != nil {
		billing = fmt.Sprintf("NIT: %s   |   CI: %s", nonEmpty(b.NIT, "-"), nonEmpty(b.CI, "-"))
	}

	return row.New(24).Add(col.New(12).Add(
		text.New("Cliente: "+order.CustomerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
		text.New("Teléfono: "+order.CustomerPhone+"   |   Pago: "+paymentLabel(order.PaymentMethod), props.Text{Size: 8, Top: 8, Color: colorGray}),
		text.New("Entrega: "+delivery, props.Text{Size: 8, Top: 13, Color: colorGray}),
		text.New("Facturación: "+billing, props.Text{Size: 8, Top: 18, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []models.OrderLine) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New("Bs. "+it.UnitPrice.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New("Bs. "+it.Subtotal.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRows(order *models.Order) []core.Row {
	right := func(s string, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Top: 1}
		if bold {
			p.Style = fontstyle.Bold
			p.Size = 11
			p.Color = colorPrimary
		}
		return text.New(s, p)
	}
	return []core.Row{
		row.New(6).Add(col.New(9).Add(right("Envío:", false)), col.New(3).Add(right("Bs. "+order.Details.Delivery.Cost.StringFixed(2), false))),
		row.New(8).Add(col.New(9).Add(right("TOTAL:", true)), col.New(3).Add(right("Bs. "+order.Total.StringFixed(2), true))),
	}
}

func paymentLabel(m models.PaymentMethod) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
