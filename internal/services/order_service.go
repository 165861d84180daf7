package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/validation"
	pkgerrors "tienda/pkg/errors"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"
	"tienda/pkg/rabbitmq"
	"tienda/pkg/receipt"
)

const (
	orderNotFound = "Orden no encontrada"
	dateLayout    = "2006-01-02"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "Tu carrito está vacío. Agrega productos antes de procesar el pedido.")

// OrderEventPublisher delivers order lifecycle events to other systems.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error
}

// CheckoutInput is the checkout form.
type CheckoutInput struct {
	Name           string `form:"nombre"`
	Phone          string `form:"telefono"`
	DeliveryMethod string `form:"metodo_entrega"`
	Address        string `form:"direccion"`
	City           string `form:"ciudad"`
	PaymentMethod  string `form:"metodo_pago"`
	Invoice        string `form:"facturar"`
	NIT            string `form:"nit"`
	CI             string `form:"ci"`
}

// OrderListInput holds the raw admin filters; empty values do not filter.
type OrderListInput struct {
	Status        string `query:"estado"`
	From          string `query:"fecha_inicio"`
	To            string `query:"fecha_fin"`
	PaymentMethod string `query:"metodo_pago"`
}

// OrderService turns carts into orders and manages them afterwards.
type OrderService struct {
	orders      repositories.OrderRepository
	tx          TxRunner
	publisher   OrderEventPublisher
	receipts    *receipt.Generator
	metrics     *metrics.StoreMetrics
	deliveryFee decimal.Decimal
	whatsApp    string
	log         *logger.Logger
}

// OrderServiceConfig carries the store settings used at checkout.
type OrderServiceConfig struct {
	DeliveryFee decimal.Decimal
	WhatsApp    string
	StoreName   string
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are sent.
func NewOrderService(orders repositories.OrderRepository, tx TxRunner, publisher OrderEventPublisher, m *metrics.StoreMetrics, cfg OrderServiceConfig, log *logger.Logger) *OrderService {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		orders:      orders,
		tx:          tx,
		publisher:   publisher,
		receipts:    receipt.NewGenerator(cfg.StoreName),
		metrics:     m,
		deliveryFee: cfg.DeliveryFee,
		whatsApp:    cfg.WhatsApp,
		log:         log,
	}
}

// Checkout validates the form, snapshots the actor's cart into a pending
// order and empties the cart, all in one transaction. Nothing is written
// when validation fails or the cart is empty.
func (s *OrderService) Checkout(ctx context.Context, actor models.Actor, in CheckoutInput) (*models.Order, error) {
	name := validation.NormalizeName(in.Name)
	if !validation.ValidName(name) {
		return nil, validationError("Nombre inválido. Solo se permiten letras y espacios.")
	}
	phone := strings.TrimSpace(in.Phone)
	if !validation.ValidPhone(validation.NormalizePhone(phone)) {
		return nil, validationError("Teléfono inválido. Debe ser un número boliviano válido.")
	}

	delivery, err := s.deliveryInfo(in)
	if err != nil {
		return nil, err
	}

	method, err := models.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, validationError("Método de pago inválido.")
	}

	var billing *models.BillingInfo
	if in.Invoice == "on" {
		billing = &models.BillingInfo{Invoice: true, NIT: strings.TrimSpace(in.NIT), CI: strings.TrimSpace(in.CI)}
	}

	owner := actor.CartOwner()
	var order *models.Order
	err = s.tx.Run(ctx, func(repos repositories.TxRepositories) error {
		items, err := repos.Carts.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		lines := make([]models.OrderLine, 0, len(items))
		for _, item := range items {
			productName := ""
			if item.Product != nil {
				productName = item.Product.Name
			}
			lines = append(lines, models.OrderLine{
				ProductName: productName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Subtotal:    item.Subtotal(),
			})
		}

		order = &models.Order{
			CustomerName:  name,
			CustomerPhone: phone,
			Total:         models.CartTotal(items).Add(delivery.Cost),
			PaymentMethod: method,
			Status:        models.StatusPending,
			Details: models.OrderDetails{
				Items:    lines,
				Delivery: delivery,
				Billing:  billing,
			},
		}
		if actor.IsAuthenticated() {
			uid := actor.UserID
			order.UserID = &uid
		}

		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		_, err = repos.Carts.ClearOwner(ctx, owner)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			s.log.Error().Err(err).Msg("checkout failed")
		}
		return nil, classify(err, "")
	}

	s.metrics.IncOrderPlaced(string(order.PaymentMethod))
	s.log.Info().
		Uint("order_id", order.ID).
		Str("payment_method", string(order.PaymentMethod)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")
	s.publish(ctx, rabbitmq.OrderEvent{
		Type:          rabbitmq.EventOrderCreated,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		Total:         order.Total.StringFixed(2),
	})

	return order, nil
}

func (s *OrderService) deliveryInfo(in CheckoutInput) (models.DeliveryInfo, error) {
	invalid := validationError("Selecciona un método de entrega válido y completa los datos si es envío.")
	method, err := models.ParseDeliveryMethod(in.DeliveryMethod)
	if err != nil {
		return models.DeliveryInfo{}, invalid
	}
	info := models.DeliveryInfo{Method: method, Cost: decimal.Zero}
	if method == models.DeliveryShip {
		address, city := strings.TrimSpace(in.Address), strings.TrimSpace(in.City)
		if address == "" || city == "" {
			return models.DeliveryInfo{}, invalid
		}
		info.Address, info.City = &address, &city
		info.Cost = s.deliveryFee
	}
	return info, nil
}

// publish sends event when a publisher is configured. Failures are logged
// and never undo the committed change.
func (s *OrderService) publish(ctx context.Context, event rabbitmq.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Uint("order_id", event.OrderID).Str("event", event.Type).Msg("failed to publish order event")
	}
}

// WhatsAppURL builds the hand-off link that opens a chat with the store
// carrying the order summary.
func (s *OrderService) WhatsAppURL(order *models.Order) string {
	var b strings.Builder
	b.WriteString("¡Hola! Quiero realizar este pedido:\n\n")
	fmt.Fprintf(&b, "*Orden #%d*\n", order.ID)
	for _, line := range order.Details.Items {
		fmt.Fprintf(&b, "• %s x%d - Bs. %s\n", line.ProductName, line.Quantity, line.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n*Total: Bs. %s*\n", order.Total.StringFixed(2))
	fmt.Fprintf(&b, "Cliente: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Teléfono: %s", order.CustomerPhone)

	return "https://wa.me/" + s.whatsApp + "?text=" + url.QueryEscape(b.String())
}

// GetForViewer loads an order the actor is allowed to see: admins see all,
// users their own, and a guest the last order placed from its browser.
func (s *OrderService) GetForViewer(ctx context.Context, actor models.Actor, id uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, orderNotFound)
	}
	if !canView(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDenied)
	}
	return order, nil
}

func canView(actor models.Actor, order *models.Order) bool {
	switch {
	case actor.IsAdmin():
		return true
	case order.UserID != nil && actor.IsAuthenticated():
		return *order.UserID == actor.UserID
	default:
		return actor.LastOrderID != 0 && actor.LastOrderID == order.ID
	}
}

// ReceiptPDF renders the printable receipt of an order the actor may view.
func (s *OrderService) ReceiptPDF(ctx context.Context, actor models.Actor, id uint) (*models.Order, []byte, error) {
	order, err := s.GetForViewer(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.receipts.Render(order)
	if err != nil {
		s.log.Error().Err(err).Uint("order_id", id).Msg("failed to render receipt")
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering receipt")
	}
	return order, pdf, nil
}

// List returns orders matching the admin filters, newest first. Dates are
// whole UTC days and both ends are inclusive.
func (s *OrderService) List(ctx context.Context, actor models.Actor, in OrderListInput) ([]models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	filter, err := parseOrderFilter(in)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, classify(err, "")
	}
	return orders, nil
}

func parseOrderFilter(in OrderListInput) (repositories.OrderFilter, error) {
	var filter repositories.OrderFilter
	if v := strings.TrimSpace(in.Status); v != "" {
		status, err := models.ParseOrderStatus(v)
		if err != nil {
			return filter, validationError("Estado inválido")
		}
		filter.Status = status
	}
	if v := strings.TrimSpace(in.PaymentMethod); v != "" {
		method, err := models.ParsePaymentMethod(v)
		if err != nil {
			return filter, validationError("Método de pago inválido.")
		}
		filter.PaymentMethod = method
	}
	if v := strings.TrimSpace(in.From); v != "" {
		from, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return filter, validationError("Fecha de inicio inválida")
		}
		filter.From = &from
	}
	if v := strings.TrimSpace(in.To); v != "" {
		to, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return filter, validationError("Fecha de fin inválida")
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	return filter, nil
}

// UpdateStatus moves one order to status.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, id uint, status string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	st, err := models.ParseOrderStatus(status)
	if err != nil {
		return validationError("Estado inválido")
	}
	if err := s.orders.UpdateStatus(ctx, id, st); err != nil {
		return classify(err, orderNotFound)
	}

	s.metrics.IncOrderStatus(string(st), 1)
	s.log.Info().Uint("order_id", id).Str("status", string(st)).Msg("order status updated")
	s.publish(ctx, statusEvent(id, st))
	return nil
}

// BulkUpdateStatus moves every listed order to status in one transaction
// and returns how many distinct orders changed. A single unknown id rolls
// back the whole batch.
func (s *OrderService) BulkUpdateStatus(ctx context.Context, actor models.Actor, ids []uint, status string) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	st, err := models.ParseOrderStatus(status)
	if len(ids) == 0 || err != nil {
		return 0, validationError("Selecciona al menos una orden y un estado.")
	}

	err = s.tx.Run(ctx, func(repos repositories.TxRepositories) error {
		for _, id := range ids {
			if err := repos.Orders.UpdateStatus(ctx, id, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, classify(err, orderNotFound)
	}

	s.metrics.IncOrderStatus(string(st), len(ids))
	s.log.Info().Int("count", len(ids)).Str("status", string(st)).Msg("bulk order status update")
	for _, id := range ids {
		s.publish(ctx, statusEvent(id, st))
	}
	return len(ids), nil
}

// uniqueIDs drops repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func statusEvent(id uint, status models.OrderStatus) rabbitmq.OrderEvent {
	return rabbitmq.OrderEvent{
		Type:    rabbitmq.EventOrderStatusChanged,
		OrderID: id,
		Status:  string(status),
	}
}
