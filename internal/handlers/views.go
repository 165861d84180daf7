package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"tienda/internal/models"
)

//go:embed views
var viewsFS embed.FS

// NewViews builds the template engine over the embedded views.
func NewViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"money":         money,
		"statusLabel":   statusLabel,
		"paymentLabel":  paymentLabel,
		"deliveryLabel": deliveryLabel,
		"date":          formatDate,
		"stars":         stars,
		"inCategory":    inCategory,
	})
	return engine
}

func money(d decimal.Decimal) string {
	return "Bs. " + d.StringFixed(2)
}

var statusLabels = map[models.OrderStatus]string{
	models.StatusPending:    "Pendiente",
	models.StatusProcessing: "Procesando",
	models.StatusShipped:    "Enviado",
	models.StatusCompleted:  "Completado",
	models.StatusCancelled:  "Cancelado",
	models.StatusPaid:       "Pagado",
}

func statusLabel(s models.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentTigoMoney:
		return "Tigo Money"
	case models.PaymentQR:
		return "QR Simple"
	case models.PaymentWhatsApp:
		return "WhatsApp"
	}
	return string(m)
}

func deliveryLabel(m models.DeliveryMethod) string {
	if m == models.DeliveryShip {
		return "Envío a domicilio"
	}
	return "Recojo en tienda"
}

func formatDate(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

func stars(n int) string {
	if n < 0 || n > 5 {
		return ""
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// inCategory reports whether p is filed under the category id.
func inCategory(p *models.Product, id uint) bool {
	return p != nil && p.CategoryID != nil && *p.CategoryID == id
}
