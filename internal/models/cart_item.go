package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product line in a cart. It belongs to a user or, before
// login, to a guest session; never both.
type CartItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    *uint           `json:"usuario_id"`
	SessionID *string         `json:"session_id"`
	ProductID uint            `json:"producto_id" gorm:"not null"`
	Product   *Product        `json:"producto,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"cantidad" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"precio_unitario" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"fecha_agregado"`
}

// Subtotal is UnitPrice times Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the subtotals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
