package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tienda/internal/database/dbtest"
	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"
	"tienda/internal/validation"
	"tienda/pkg/rabbitmq"
)

const testSecret = "test_jwt_secret"

// MockPublisher is a mock implementation of services.OrderEventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// env wires every service on a private SQLite database.
type env struct {
	db         *gorm.DB
	products   *repositories.GORMProductRepository
	publisher  *MockPublisher
	auth       *services.AuthService
	cart       *services.CartService
	catalog    *services.ProductService
	orders     *services.OrderService
	moderation *services.ModerationService
	admin      *services.AdminService
	men        models.Category
	women      models.Category
}

var adminActor = models.Actor{UserID: 1, Name: "Admin", Role: models.RoleAdmin}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)

	users := repositories.NewGORMUserRepository(db)
	products := repositories.NewGORMProductRepository(db)
	categories := repositories.NewGORMCategoryRepository(db)
	carts := repositories.NewGORMCartRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	comments := repositories.NewGORMCommentRepository(db)
	tx := repositories.NewTxRunner(db)
	publisher := new(MockPublisher)

	cart := services.NewCartService(carts, products, tx, nil, nil)
	e := &env{
		db:         db,
		products:   products,
		publisher:  publisher,
		cart:       cart,
		auth:       services.NewAuthService(users, cart, validation.New(), testSecret, time.Hour, nil),
		catalog:    services.NewProductService(products, categories, comments, services.NewDiskImageStore(t.TempDir(), "/static/images/productos"), nil),
		orders:     services.NewOrderService(orders, tx, publisher, nil, services.OrderServiceConfig{DeliveryFee: decimal.NewFromInt(20), WhatsApp: "59173138524", StoreName: "Tienda"}, nil),
		moderation: services.NewModerationService(comments, products, nil, nil),
		admin:      services.NewAdminService(products, orders, comments),
		men:        models.Category{Name: "Camisas", Type: models.CategoryMen},
		women:      models.Category{Name: "Vestidos", Type: models.CategoryWomen},
	}
	require.NoError(t, db.Create(&e.men).Error)
	require.NoError(t, db.Create(&e.women).Error)
	return e
}

func (e *env) product(t *testing.T, name string, price int64, cat models.Category) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: "desc " + name, Price: decimal.NewFromInt(price), Stock: 10, CategoryID: &cat.ID, Active: true}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *env) register(t *testing.T, actor models.Actor, email string) models.Actor {
	t.Helper()
	user, err := e.auth.Register(context.Background(), actor, services.RegisterInput{
		Name:            "Ana Pérez",
		Email:           email,
		Phone:           "71234567",
		Password:        "Secreta1!",
		ConfirmPassword: "Secreta1!",
	})
	require.NoError(t, err)
	return user
}

func guest(sid string) models.Actor {
	return models.Actor{SessionID: sid}
}

func validCheckout() services.CheckoutInput {
	return services.CheckoutInput{
		Name:           "Ana Pérez",
		Phone:          "71234567",
		DeliveryMethod: "envio",
		Address:        "Av. Siempre Viva 742",
		City:           "La Paz",
		PaymentMethod:  "qr_simple",
	}
}
