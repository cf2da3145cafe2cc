package purchasing

import (
	"context"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/purchasing"
)

// TransactionalRepositories bundles the repositories that participate in
// a single database transaction.
type TransactionalRepositories struct {
	Orders    purchasing.Repository
	Products  catalog.Repository
	Stock     inventory.StockMutator
	Movements inventory.MovementRepository
}

// TransactionScope runs a function against transaction-bound repositories.
// If fn returns an error every write inside the scope is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error
}

// NoOpTransactionScope executes the function against the given
// repositories without transactional guarantees. Intended for tests.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error {
	return fn(ctx, s.Repos)
}
