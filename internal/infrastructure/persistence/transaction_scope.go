package persistence

import (
	"context"

	app "github.com/retailpos/backend/internal/application/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope by
// binding fresh repositories to a single GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one database transaction. Any error from fn
// rolls back every write made through the bound repositories.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos app.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := app.TransactionalRepositories{
			Orders:    NewGormPurchaseOrderRepository(tx),
			Products:  NewGormProductRepository(tx),
			Stock:     NewGormStockMutator(tx),
			Movements: NewGormMovementRepository(tx),
		}
		return fn(ctx, repos)
	})
}
