package repositories

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Carts    CartRepository
	Orders   OrderRepository
	Products ProductRepository
}

// TxRunner runs callbacks inside a database transaction.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner builds the runner on db.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run opens a transaction, hands fn repositories bound to it and commits
// when fn returns nil. Any error or panic rolls everything back.
func (r *TxRunner) Run(ctx context.Context, fn func(repos TxRepositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Carts:    NewGORMCartRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
			Products: NewGORMProductRepository(tx),
		})
	})
}
