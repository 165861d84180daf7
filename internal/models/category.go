package models

// CategoryType groups categories into catalog sections.
type CategoryType string

const (
	CategoryMen      CategoryType = "hombres"
	CategoryWomen    CategoryType = "mujeres"
	CategoryChildren CategoryType = "ninos"
	CategoryDeals    CategoryType = "ofertas"
)

// CategoryTypes lists the catalog sections in display order.
var CategoryTypes = []CategoryType{CategoryMen, CategoryWomen, CategoryChildren, CategoryDeals}

// Label is the human-readable section title.
func (t CategoryType) Label() string {
	switch t {
	case CategoryMen:
		return "Hombres"
	case CategoryWomen:
		return "Mujeres"
	case CategoryChildren:
		return "Niños"
	case CategoryDeals:
		return "Ofertas"
	}
	return string(t)
}

// Category is a named product grouping.
type Category struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Name string       `json:"nombre" gorm:"type:varchar(100);not null"`
	Type CategoryType `json:"tipo" gorm:"type:varchar(20);not null"`
}
