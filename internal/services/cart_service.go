package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"
)

const productNotFound = "Producto no encontrado"

// CartView is a cart ready for display. Total uses the unit prices frozen
// when each line was added.
type CartView struct {
	Items []models.CartItem
	Total decimal.Decimal
}

// IsEmpty reports whether the cart has no lines.
func (v CartView) IsEmpty() bool {
	return len(v.Items) == 0
}

// MergeResult counts what a guest cart migration did.
type MergeResult struct {
	Merged     int
	Reassigned int
}

// CartService manages cart lines for users and guests.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	tx       TxRunner
	metrics  *metrics.StoreMetrics
	log      *logger.Logger
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, tx TxRunner, m *metrics.StoreMetrics, log *logger.Logger) *CartService {
	if log == nil {
		log = logger.Nop()
	}
	return &CartService{carts: carts, products: products, tx: tx, metrics: m, log: log}
}

// Add puts quantity units of a product in the actor's cart. An existing line
// for the same product grows instead of duplicating; the unit price is the
// catalog price at the time the line was first created.
func (s *CartService) Add(ctx context.Context, actor models.Actor, productID uint, quantity int) error {
	if quantity < 1 {
		return validationError("Cantidad inválida")
	}
	owner := actor.CartOwner()
	if owner.IsZero() {
		return validationError("Sesión inválida")
	}

	err := s.addOnce(ctx, owner, productID, quantity)
	if errors.Is(err, repositories.ErrDuplicate) {
		// a concurrent add created the line first
		err = s.addOnce(ctx, owner, productID, quantity)
	}
	return classify(err, productNotFound)
}

func (s *CartService) addOnce(ctx context.Context, owner models.CartOwner, productID uint, quantity int) error {
	return s.tx.Run(ctx, func(repos repositories.TxRepositories) error {
		product, err := repos.Products.GetActiveByID(ctx, productID)
		if err != nil {
			return err
		}

		existing, err := repos.Carts.FindByOwnerAndProduct(ctx, owner, product.ID)
		switch {
		case err == nil:
			return repos.Carts.AddQuantity(ctx, existing.ID, quantity)
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		userID, sessionID := owner.Columns()
		return repos.Carts.Create(ctx, &models.CartItem{
			UserID:    userID,
			SessionID: sessionID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
	})
}

// View returns the actor's cart lines with their products.
func (s *CartService) View(ctx context.Context, actor models.Actor) (CartView, error) {
	items, err := s.carts.ListByOwner(ctx, actor.CartOwner())
	if err != nil {
		return CartView{}, classify(err, "")
	}
	return CartView{Items: items, Total: models.CartTotal(items)}, nil
}

// Update sets a line's quantity; zero or less removes it. Lines owned by
// someone else are left untouched.
func (s *CartService) Update(ctx context.Context, actor models.Actor, itemID uint, quantity int) error {
	owner := actor.CartOwner()
	var err error
	if quantity <= 0 {
		_, err = s.carts.DeleteOwned(ctx, owner, itemID)
	} else {
		_, err = s.carts.SetQuantity(ctx, owner, itemID, quantity)
	}
	return classify(err, "")
}

// Remove deletes one of the actor's lines.
func (s *CartService) Remove(ctx context.Context, actor models.Actor, itemID uint) error {
	_, err := s.carts.DeleteOwned(ctx, actor.CartOwner(), itemID)
	return classify(err, "")
}

// Count is the total number of units in the actor's cart.
func (s *CartService) Count(ctx context.Context, actor models.Actor) (int, error) {
	n, err := s.carts.CountQuantity(ctx, actor.CartOwner())
	if err != nil {
		return 0, classify(err, "")
	}
	return n, nil
}

// MergeGuestCart moves every line of the guest session into the user's
// cart. Lines for products the user already has are folded into the
// existing line; the rest change owner. Everything happens in one
// transaction.
func (s *CartService) MergeGuestCart(ctx context.Context, sessionID string, userID uint) (MergeResult, error) {
	var res MergeResult
	if sessionID == "" || userID == 0 {
		return res, nil
	}
	guest := models.CartOwner{SessionID: sessionID}
	user := models.CartOwner{UserID: userID}

	err := s.tx.Run(ctx, func(repos repositories.TxRepositories) error {
		res = MergeResult{}
		items, err := repos.Carts.ListByOwner(ctx, guest)
		if err != nil {
			return err
		}
		for _, item := range items {
			existing, err := repos.Carts.FindByOwnerAndProduct(ctx, user, item.ProductID)
			switch {
			case err == nil:
				if err := repos.Carts.AddQuantity(ctx, existing.ID, item.Quantity); err != nil {
					return err
				}
				if err := repos.Carts.Delete(ctx, item.ID); err != nil {
					return err
				}
				res.Merged++
			case errors.Is(err, repositories.ErrNotFound):
				if err := repos.Carts.AssignToUser(ctx, item.ID, userID); err != nil {
					return err
				}
				res.Reassigned++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Msg("guest cart migration failed")
		return MergeResult{}, classify(err, "")
	}

	s.metrics.ObserveCartMigration(res.Merged, res.Reassigned)
	return res, nil
}
