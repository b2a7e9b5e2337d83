package interfaces

import (
	"context"

	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/money"
)

// Store persists accounts and transaction records. Apply is the only path
// that mutates balances or appends to the log; implementations must make
// each Apply call atomic with respect to every other caller.
type Store interface {
	// CreateAccount stores a new account. Fails with
	// models.ErrDuplicateAccount if the number is taken.
	CreateAccount(ctx context.Context, acct models.Account) error

	// GetAccount returns the current snapshot of one account, or
	// models.ErrAccountNotFound.
	GetAccount(ctx context.Context, number string) (models.Account, error)

	// Apply atomically applies every balance delta and appends every
	// record, or does nothing. It fails with models.ErrAccountNotFound if
	// a delta names an unknown account and models.ErrInsufficientFunds if
	// any resulting balance would be negative, in both cases without
	// mutating anything.
	Apply(ctx context.Context, deltas []models.BalanceDelta, records []models.TransactionRecord) error

	// ListTransactions returns the account's records ordered by timestamp
	// descending, ties broken by reverse insertion order.
	ListTransactions(ctx context.Context, number string) ([]models.TransactionRecord, error)

	// SumBalances returns the sum of all account balances.
	SumBalances(ctx context.Context) (money.Amount, error)

	// Close releases the store's resources.
	Close() error
}
