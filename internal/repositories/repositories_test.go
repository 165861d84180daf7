package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tienda/internal/database/dbtest"
	"tienda/internal/models"
	"tienda/internal/repositories"
)

type fixture struct {
	db       *gorm.DB
	users    *repositories.GORMUserRepository
	products *repositories.GORMProductRepository
	carts    *repositories.GORMCartRepository
	orders   *repositories.GORMOrderRepository
	comments *repositories.GORMCommentRepository
	men      models.Category
	women    models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		db:       db,
		users:    repositories.NewGORMUserRepository(db),
		products: repositories.NewGORMProductRepository(db),
		carts:    repositories.NewGORMCartRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		comments: repositories.NewGORMCommentRepository(db),
		men:      models.Category{Name: "Camisas", Type: models.CategoryMen},
		women:    models.Category{Name: "Vestidos", Type: models.CategoryWomen},
	}
	require.NoError(t, db.Create(&f.men).Error)
	require.NoError(t, db.Create(&f.women).Error)
	return f
}

func (f *fixture) product(t *testing.T, name string, price int64, cat models.Category) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: "desc " + name, Price: decimal.NewFromInt(price), Stock: 10, CategoryID: &cat.ID, Active: true}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Ana", Email: email, PasswordHash: "x", Phone: "71234567", Role: models.RoleCustomer}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "ana@example.com")

	err := f.users.Create(ctx, &models.User{Name: "Otra", Email: "ana@example.com", PasswordHash: "x", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	_, err = f.users.GetByEmail(ctx, "nadie@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestProductRepository_SearchAndDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "Camisa Azul", 100, f.men)
	f.product(t, "Vestido Rojo", 200, f.women)

	found, err := f.products.SearchActive(ctx, repositories.ProductFilter{Query: "CAMISA"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, shirt.ID, found[0].ID)
	require.NotNil(t, found[0].Category)
	assert.Equal(t, models.CategoryMen, found[0].Category.Type)

	found, err = f.products.SearchActive(ctx, repositories.ProductFilter{Type: models.CategoryWomen})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vestido Rojo", found[0].Name)

	found, err = f.products.SearchActive(ctx, repositories.ProductFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, f.products.Deactivate(ctx, shirt.ID))

	_, err = f.products.GetActiveByID(ctx, shirt.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	stored, err := f.products.GetByID(ctx, shirt.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	all, err := f.products.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	assert.ErrorIs(t, f.products.Deactivate(ctx, 9999), repositories.ErrNotFound)
}

func TestProductRepository_ListActiveOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Zapato", 10, f.men)
	f.product(t, "Blusa", 10, f.women)
	f.product(t, "Abrigo", 10, f.men)

	all, err := f.products.ListActive(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, p := range all {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Abrigo", "Zapato", "Blusa"}, names)

	related, err := f.products.ListRelatedActive(ctx, f.men.ID, all[0].ID, 4)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Zapato", related[0].Name)
}

func TestCartRepository_OwnerScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Camisa", 100, f.men)
	u := f.user(t, "ana@example.com")

	guest := models.CartOwner{SessionID: "sid-1"}
	owner := models.CartOwner{UserID: u.ID}

	gu, gs := guest.Columns()
	require.NoError(t, f.carts.Create(ctx, &models.CartItem{UserID: gu, SessionID: gs, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}))
	uu, us := owner.Columns()
	userItem := &models.CartItem{UserID: uu, SessionID: us, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}
	require.NoError(t, f.carts.Create(ctx, userItem))

	dup := &models.CartItem{UserID: gu, SessionID: gs, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}
	assert.ErrorIs(t, f.carts.Create(ctx, dup), repositories.ErrDuplicate)

	n, err := f.carts.CountQuantity(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.carts.CountQuantity(ctx, models.CartOwner{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// a guest cannot touch a user's line
	ok, err := f.carts.DeleteOwned(ctx, guest, userItem.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.carts.AddQuantity(ctx, userItem.ID, 3))
	item, err := f.carts.FindByOwnerAndProduct(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	items, err := f.carts.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Camisa", items[0].Product.Name)

	cleared, err := f.carts.ClearOwner(ctx, guest)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
}

func TestOrderRepository_FiltersAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	address, city := "Calle 1", "La Paz"
	mk := func(method models.PaymentMethod, status models.OrderStatus) *models.Order {
		o := &models.Order{
			CustomerName:  "Ana",
			CustomerPhone: "71234567",
			Total:         decimal.NewFromInt(270),
			PaymentMethod: method,
			Status:        status,
			Details: models.OrderDetails{
				Items:    []models.OrderLine{{ProductName: "Camisa", Quantity: 2, UnitPrice: decimal.NewFromInt(100), Subtotal: decimal.NewFromInt(200)}},
				Delivery: models.DeliveryInfo{Method: models.DeliveryShip, Address: &address, City: &city, Cost: decimal.NewFromInt(20)},
			},
		}
		require.NoError(t, f.orders.Create(ctx, o))
		return o
	}
	first := mk(models.PaymentWhatsApp, models.StatusPending)
	mk(models.PaymentQR, models.StatusPaid)

	list, err := f.orders.List(ctx, repositories.OrderFilter{PaymentMethod: models.PaymentWhatsApp})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "Camisa", list[0].Details.Items[0].ProductName)
	assert.Nil(t, list[0].Details.Billing)
	require.NotNil(t, list[0].Details.Delivery.City)
	assert.Equal(t, "La Paz", *list[0].Details.Delivery.City)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	tomorrow := today.Add(24 * time.Hour)
	list, err = f.orders.List(ctx, repositories.OrderFilter{From: &today, To: &tomorrow})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	yesterday := today.Add(-24 * time.Hour)
	list, err = f.orders.List(ctx, repositories.OrderFilter{To: &yesterday})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.orders.UpdateStatus(ctx, first.ID, models.StatusShipped))
	got, err := f.orders.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)
	assert.True(t, decimal.NewFromInt(270).Equal(got.Total))

	assert.ErrorIs(t, f.orders.UpdateStatus(ctx, 9999, models.StatusPaid), repositories.ErrNotFound)
}

func TestCommentRepository_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Camisa", 100, f.men)
	author := f.user(t, "ana@example.com")
	other := f.user(t, "luis@example.com")

	approved := &models.Comment{UserID: other.ID, ProductID: &p.ID, Rating: 5, Body: "excelente", Approved: true}
	pending := &models.Comment{UserID: author.ID, ProductID: &p.ID, Rating: 2, Body: "regular"}
	store := &models.Comment{UserID: author.ID, Rating: 4, Body: "buena tienda", Approved: true}
	for _, c := range []*models.Comment{approved, pending, store} {
		require.NoError(t, f.comments.Create(ctx, c))
	}

	anon, err := f.comments.ListForProduct(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, anon, 1)

	own, err := f.comments.ListForProduct(ctx, p.ID, author.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	storeComments, err := f.comments.ListApprovedStore(ctx, 5)
	require.NoError(t, err)
	require.Len(t, storeComments, 1)
	require.NotNil(t, storeComments[0].User)
	assert.Equal(t, "Ana", storeComments[0].User.Name)

	queue, err := f.comments.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.NotNil(t, queue[0].Product)
	assert.Equal(t, "Camisa", queue[0].Product.Name)

	assert.ErrorIs(t, f.comments.DeletePending(ctx, approved.ID), repositories.ErrNotFound)
	require.NoError(t, f.comments.Approve(ctx, pending.ID))
	n, err := f.comments.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Camisa", 100, f.men)
	runner := repositories.NewTxRunner(f.db)
	boom := errors.New("boom")

	owner := models.CartOwner{SessionID: "sid"}
	err := runner.Run(ctx, func(repos repositories.TxRepositories) error {
		uid, sid := owner.Columns()
		if err := repos.Carts.Create(ctx, &models.CartItem{UserID: uid, SessionID: sid, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := f.carts.CountQuantity(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, n)
}
