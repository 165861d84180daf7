package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

var errDiskFull = errors.New("disk full")

// failingCarts fails the failAt-th call of method and delegates everything else.
type failingCarts struct {
	repositories.CartRepository
	method string
	failAt int
	calls  *int
}

func (c failingCarts) fail(method string) error {
	if method != c.method {
		return nil
	}
	*c.calls++
	if *c.calls == c.failAt {
		return errDiskFull
	}
	return nil
}

func (c failingCarts) Delete(ctx context.Context, id uint) error {
	if err := c.fail("Delete"); err != nil {
		return err
	}
	return c.CartRepository.Delete(ctx, id)
}

func (c failingCarts) AssignToUser(ctx context.Context, id, userID uint) error {
	if err := c.fail("AssignToUser"); err != nil {
		return err
	}
	return c.CartRepository.AssignToUser(ctx, id, userID)
}

func (c failingCarts) ClearOwner(ctx context.Context, owner models.CartOwner) (int64, error) {
	if err := c.fail("ClearOwner"); err != nil {
		return 0, err
	}
	return c.CartRepository.ClearOwner(ctx, owner)
}

// failingTx runs on a real transaction but hands fn a cart repository that
// breaks on a chosen call.
type failingTx struct {
	inner  *repositories.TxRunner
	method string
	failAt int
}

func (r failingTx) Run(ctx context.Context, fn func(repos repositories.TxRepositories) error) error {
	calls := 0
	return r.inner.Run(ctx, func(repos repositories.TxRepositories) error {
		repos.Carts = failingCarts{CartRepository: repos.Carts, method: r.method, failAt: r.failAt, calls: &calls}
		return fn(repos)
	})
}

// cartRows renders every cart line so before/after states compare exactly.
func cartRows(t *testing.T, e *env) []string {
	t.Helper()
	var items []models.CartItem
	require.NoError(t, e.db.Order("id").Find(&items).Error)
	out := make([]string, 0, len(items))
	for _, item := range items {
		owner := "-"
		switch {
		case item.UserID != nil:
			owner = fmt.Sprintf("user:%d", *item.UserID)
		case item.SessionID != nil:
			owner = "session:" + *item.SessionID
		}
		out = append(out, fmt.Sprintf("%d %s product:%d qty:%d", item.ID, owner, item.ProductID, item.Quantity))
	}
	return out
}

func TestCartService_MergeGuestCartRollsBackOnFailure(t *testing.T) {
	cases := []struct {
		name   string
		method string
		failAt int
	}{
		{"second reassignment", "AssignToUser", 2},
		{"delete after summing", "Delete", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			shirt := e.product(t, "Camisa", 100, e.men)
			dress := e.product(t, "Vestido", 200, e.women)
			skirt := e.product(t, "Falda", 150, e.women)
			visitor := guest("sid-merge")
			user := e.register(t, models.Actor{}, "ana@example.com")

			require.NoError(t, e.cart.Add(ctx, user, shirt.ID, 1))
			require.NoError(t, e.cart.Add(ctx, visitor, shirt.ID, 2))
			require.NoError(t, e.cart.Add(ctx, visitor, dress.ID, 1))
			require.NoError(t, e.cart.Add(ctx, visitor, skirt.ID, 3))
			before := cartRows(t, e)

			tx := failingTx{inner: repositories.NewTxRunner(e.db), method: tc.method, failAt: tc.failAt}
			cart := services.NewCartService(repositories.NewGORMCartRepository(e.db), e.products, tx, nil, nil)

			res, err := cart.MergeGuestCart(ctx, visitor.SessionID, user.UserID)
			require.Error(t, err)
			assert.ErrorIs(t, err, errDiskFull)
			assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInternal))
			assert.Zero(t, res.Merged+res.Reassigned)

			assert.Equal(t, before, cartRows(t, e))
			assert.Equal(t, map[uint]int{shirt.ID: 1}, quantities(t, e, user))
			assert.Equal(t, map[uint]int{shirt.ID: 2, dress.ID: 1, skirt.ID: 3}, quantities(t, e, visitor))
		})
	}
}

func TestOrderService_CheckoutRollsBackWhenCartClearFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	shirt := e.product(t, "Camisa", 100, e.men)
	dress := e.product(t, "Vestido", 200, e.women)
	visitor := guest("sid-checkout")
	require.NoError(t, e.cart.Add(ctx, visitor, shirt.ID, 2))
	require.NoError(t, e.cart.Add(ctx, visitor, dress.ID, 1))
	before := cartRows(t, e)

	tx := failingTx{inner: repositories.NewTxRunner(e.db), method: "ClearOwner", failAt: 1}
	orders := services.NewOrderService(repositories.NewGORMOrderRepository(e.db), tx, e.publisher, nil, services.OrderServiceConfig{StoreName: "Tienda"}, nil)

	order, err := orders.Checkout(ctx, visitor, validCheckout())
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, errDiskFull)

	var n int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, before, cartRows(t, e))

	count, err := e.cart.Count(ctx, visitor)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	e.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}
