package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item for sale. Inactive products are hidden from the
// storefront but kept for order history.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"nombre" gorm:"type:varchar(200);not null"`
	Description string          `json:"descripcion" gorm:"type:text"`
	Price       decimal.Decimal `json:"precio" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	CategoryID  *uint           `json:"categoria_id"`
	Category    *Category       `json:"categoria,omitempty" gorm:"foreignKey:CategoryID"`
	Image       string          `json:"imagen" gorm:"type:varchar(500)"`
	Active      bool            `json:"activo" gorm:"not null"`
	CreatedAt   time.Time       `json:"fecha_creacion"`
}

// CategoryType returns the section of the product's category, if loaded.
func (p *Product) CategoryType() CategoryType {
	if p == nil || p.Category == nil {
		return ""
	}
	return p.Category.Type
}
