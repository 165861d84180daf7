package services

import (
	"context"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

const dashboardRecentLimit = 5

// Dashboard summarizes the store for the back office.
type Dashboard struct {
	ActiveProducts  int64
	Orders          int64
	PendingComments int64
	RecentProducts  []models.Product
	RecentOrders    []models.Order
}

// AdminService builds the back-office dashboard.
type AdminService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	comments repositories.CommentRepository
}

func NewAdminService(products repositories.ProductRepository, orders repositories.OrderRepository, comments repositories.CommentRepository) *AdminService {
	return &AdminService{products: products, orders: orders, comments: comments}
}

// Dashboard returns store counters and the newest products and orders.
func (s *AdminService) Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		d   Dashboard
		err error
	)
	if d.ActiveProducts, err = s.products.CountActive(ctx); err != nil {
		return nil, classify(err, "")
	}
	if d.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, classify(err, "")
	}
	if d.PendingComments, err = s.comments.CountPending(ctx); err != nil {
		return nil, classify(err, "")
	}
	if d.RecentProducts, err = s.products.ListNewestActive(ctx, dashboardRecentLimit); err != nil {
		return nil, classify(err, "")
	}
	if d.RecentOrders, err = s.orders.List(ctx, repositories.OrderFilter{Limit: dashboardRecentLimit}); err != nil {
		return nil, classify(err, "")
	}
	return &d, nil
}
