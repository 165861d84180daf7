package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tienda/internal/models"
)

const (
	SeedAdminEmail    = "admin@tienda.com"
	SeedAdminPassword = "admin123"
)

type seedProduct struct {
	name, description string
	price             int64
	category          int // index into seedCategories
	image             string
}

var seedCategories = []models.Category{
	{Name: "Camisas", Type: models.CategoryMen},
	{Name: "Pantalones", Type: models.CategoryMen},
	{Name: "Polos", Type: models.CategoryMen},
	{Name: "Chaquetas", Type: models.CategoryMen},
	{Name: "Accesorios", Type: models.CategoryMen},
	{Name: "Blusas", Type: models.CategoryWomen},
	{Name: "Pantalones", Type: models.CategoryWomen},
	{Name: "Vestidos", Type: models.CategoryWomen},
	{Name: "Chaquetas", Type: models.CategoryWomen},
	{Name: "Accesorios", Type: models.CategoryWomen},
	{Name: "Ropa Casual", Type: models.CategoryChildren},
	{Name: "Ropa Formal", Type: models.CategoryChildren},
	{Name: "Chaquetas", Type: models.CategoryChildren},
	{Name: "Accesorios", Type: models.CategoryChildren},
	{Name: "Ofertas", Type: models.CategoryDeals},
}

var seedProducts = []seedProduct{
	{"Camisa Clásica Azul", "Camisa de vestir azul marino, 100% algodón", 280, 0, "hombres/camisa1.jpg"},
	{"Camisa Blanca Formal", "Camisa blanca para ocasiones formales", 320, 0, "hombres/camisa2.jpg"},
	{"Camisa Casual Gris", "Camisa gris para uso diario", 250, 0, "hombres/camisa3.jpg"},
	{"Pantalón Jean Azul", "Jean clásico azul, corte regular", 380, 1, "hombres/pantalon1.jpg"},
	{"Pantalón Formal Negro", "Pantalón de vestir negro", 420, 1, "hombres/pantalon2.jpg"},
	{"Pantalón Casual Beige", "Pantalón cómodo para el día a día", 350, 1, "hombres/pantalon3.jpg"},
	{"Polo Deportivo Rojo", "Polo rojo para actividades deportivas", 180, 2, "hombres/polo1.jpg"},
	{"Polo Clásico Azul", "Polo azul marino básico", 160, 2, "hombres/polo2.jpg"},
	{"Polo Rayas Verde", "Polo con rayas verdes y blancas", 190, 2, "hombres/polo3.jpg"},
	{"Chaqueta Cuero Negro", "Chaqueta de cuero genuino", 890, 3, "hombres/chaqueta1.jpg"},
	{"Chaqueta Sport Azul", "Chaqueta deportiva azul", 450, 3, "hombres/chaqueta2.jpg"},
	{"Chaqueta Formal Gris", "Chaqueta gris para ocasiones especiales", 650, 3, "hombres/chaqueta3.jpg"},
	{"Cinturón Cuero Marrón", "Cinturón de cuero marrón", 120, 4, "hombres/accesorio1.jpg"},
	{"Reloj Deportivo", "Reloj digital para deportes", 220, 4, "hombres/accesorio2.jpg"},
	{"Gorra Casual Negra", "Gorra negra ajustable", 85, 4, "hombres/accesorio3.jpg"},
	{"Blusa Rosa Elegante", "Blusa rosa para ocasiones especiales", 240, 5, "mujeres/blusa1.jpg"},
	{"Blusa Blanca Clásica", "Blusa blanca versátil", 210, 5, "mujeres/blusa2.jpg"},
	{"Blusa Floral Azul", "Blusa con estampado floral", 260, 5, "mujeres/blusa3.jpg"},
	{"Pantalón Jean Negro", "Jean negro entubado", 360, 6, "mujeres/pantalon1.jpg"},
	{"Pantalón Formal Gris", "Pantalón gris de vestir", 390, 6, "mujeres/pantalon2.jpg"},
	{"Pantalón Casual Blanco", "Pantalón blanco cómodo", 320, 6, "mujeres/pantalon3.jpg"},
	{"Vestido Rojo Elegante", "Vestido rojo para fiestas", 480, 7, "mujeres/vestido1.jpg"},
	{"Vestido Azul Casual", "Vestido azul para el día", 350, 7, "mujeres/vestido2.jpg"},
	{"Vestido Floral Primavera", "Vestido con flores para primavera", 420, 7, "mujeres/vestido3.jpg"},
	{"Chaqueta Rosa Suave", "Chaqueta rosa de algodón", 380, 8, "mujeres/chaqueta1.jpg"},
	{"Chaqueta Negra Formal", "Chaqueta negra para oficina", 520, 8, "mujeres/chaqueta2.jpg"},
	{"Chaqueta Blanca Casual", "Chaqueta blanca ligera", 350, 8, "mujeres/chaqueta3.jpg"},
	{"Collar Perlas Elegante", "Collar de perlas clásico", 180, 9, "mujeres/accesorio1.jpg"},
	{"Aretes Dorados", "Aretes dorados brillantes", 95, 9, "mujeres/accesorio2.jpg"},
	{"Bolso Cuero Negro", "Bolso de cuero negro elegante", 420, 9, "mujeres/accesorio3.jpg"},
	{"Polo Niño Azul", "Polo azul para niño", 120, 10, "ninos/casual1.jpg"},
	{"Camiseta Niña Rosa", "Camiseta rosa con estampado", 110, 10, "ninos/casual2.jpg"},
	{"Short Niño Deportivo", "Short deportivo cómodo", 95, 10, "ninos/casual3.jpg"},
	{"Camisa Niño Blanca", "Camisa blanca para eventos", 160, 11, "ninos/formal1.jpg"},
	{"Pantalón Niño Azul", "Pantalón azul formal", 180, 11, "ninos/formal2.jpg"},
	{"Vestido Niña Elegante", "Vestido elegante para niña", 220, 11, "ninos/formal3.jpg"},
	{"Chaqueta Niño Azul", "Chaqueta abrigada azul", 280, 12, "ninos/chaqueta1.jpg"},
	{"Chaqueta Niña Rosa", "Chaqueta rosa con capucha", 260, 12, "ninos/chaqueta2.jpg"},
	{"Chaqueta Deportiva", "Chaqueta deportiva unisex", 240, 12, "ninos/chaqueta3.jpg"},
	{"Gorra Niño Roja", "Gorra roja ajustable", 65, 13, "ninos/accesorio1.jpg"},
	{"Mochila Niña Unicornio", "Mochila con diseño de unicornio", 150, 13, "ninos/accesorio2.jpg"},
	{"Zapatos Deportivos", "Zapatos deportivos cómodos", 280, 13, "ninos/accesorio3.jpg"},
	{"Oferta: Camisa + Pantalón", "Combo camisa y pantalón con descuento", 450, 14, "ofertas/combo1.jpg"},
	{"Oferta: Vestido Elegante", "Vestido elegante con 30% descuento", 320, 14, "ofertas/vestido1.jpg"},
	{"Oferta: Conjunto Niños", "Conjunto completo para niños", 280, 14, "ofertas/conjunto1.jpg"},
}

// Seed inserts demo categories, an admin account and sample products. It does
// nothing when categories already exist and reports whether data was written.
func Seed(ctx context.Context, db *gorm.DB, imagePublicPath string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := HashPassword(SeedAdminPassword)
	if err != nil {
		return false, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := make([]models.Category, len(seedCategories))
		copy(categories, seedCategories)
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}

		admin := models.User{
			Name:         "Administrador",
			Email:        SeedAdminEmail,
			PasswordHash: hash,
			Phone:        "73138524",
			Role:         models.RoleAdmin,
		}
		if err := tx.Where(models.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}

		products := make([]models.Product, 0, len(seedProducts))
		for _, sp := range seedProducts {
			categoryID := categories[sp.category].ID
			products = append(products, models.Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       decimal.NewFromInt(sp.price),
				Stock:       100,
				CategoryID:  &categoryID,
				Image:       imagePublicPath + "/" + sp.image,
				Active:      true,
			})
		}
		if err := tx.Omit("Category").Create(&products).Error; err != nil {
			return fmt.Errorf("seeding products: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
