package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pendiente"
	StatusProcessing OrderStatus = "procesando"
	StatusShipped    OrderStatus = "enviado"
	StatusCompleted  OrderStatus = "completado"
	StatusCancelled  OrderStatus = "cancelado"
	StatusPaid       OrderStatus = "pagado"
)

// OrderStatuses lists every status an order may take.
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled, StatusPaid}

// ParseOrderStatus validates s against the status enumeration.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// PaymentMethod identifies one of the simulated payment flows.
type PaymentMethod string

const (
	PaymentTigoMoney PaymentMethod = "tigo_money"
	PaymentQR        PaymentMethod = "qr_simple"
	PaymentWhatsApp  PaymentMethod = "whatsapp"
)

// PaymentMethods lists the accepted payment identifiers.
var PaymentMethods = []PaymentMethod{PaymentTigoMoney, PaymentQR, PaymentWhatsApp}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", s)
}

// DeliveryMethod is either home delivery or store pickup.
type DeliveryMethod string

const (
	DeliveryShip   DeliveryMethod = "envio"
	DeliveryPickup DeliveryMethod = "recojo"
)

func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	switch DeliveryMethod(s) {
	case DeliveryShip, DeliveryPickup:
		return DeliveryMethod(s), nil
	}
	return "", fmt.Errorf("invalid delivery method %q", s)
}

// OrderLine is the frozen copy of one cart line.
type OrderLine struct {
	ProductName string          `json:"producto"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DeliveryInfo describes how the order reaches the customer.
// Address and City are nil for store pickup.
type DeliveryInfo struct {
	Method  DeliveryMethod  `json:"metodo"`
	Address *string         `json:"direccion"`
	City    *string         `json:"ciudad"`
	Cost    decimal.Decimal `json:"costo"`
}

// BillingInfo holds the invoicing identifiers requested by the customer.
type BillingInfo struct {
	Invoice bool   `json:"facturar"`
	NIT     string `json:"nit"`
	CI      string `json:"ci"`
}

// OrderDetails is the denormalized snapshot stored with every order.
type OrderDetails struct {
	Items    []OrderLine  `json:"items"`
	Delivery DeliveryInfo `json:"entrega"`
	Billing  *BillingInfo `json:"facturacion"`
}

// Order is the permanent record of a checkout. Only Status changes after creation.
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        *uint           `json:"usuario_id"`
	CustomerName  string          `json:"nombre_cliente" gorm:"type:varchar(100);not null"`
	CustomerPhone string          `json:"telefono" gorm:"type:varchar(20);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	PaymentMethod PaymentMethod   `json:"metodo_pago" gorm:"type:varchar(20);not null"`
	Status        OrderStatus     `json:"estado" gorm:"type:varchar(20);not null"`
	Details       OrderDetails    `json:"detalles" gorm:"type:text;serializer:json"`
	CreatedAt     time.Time       `json:"fecha_orden"`
	UpdatedAt     time.Time       `json:"fecha_actualizacion"`
}
