// Package memory provides an in-memory implementation of interfaces.Store,
// used by tests and as the default backend when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/corebank/ledger/internal/interfaces"
	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/money"
)

// Store keeps accounts and records behind a single mutex. The mutex makes
// every Apply call — including a two-account transfer — one critical
// section, so readers never observe a half-applied operation.
type Store struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	records   []models.TransactionRecord
	byAccount map[string][]int // indexes into records, in insertion order
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]models.Account),
		byAccount: make(map[string][]int),
	}
}

func (s *Store) CreateAccount(ctx context.Context, acct models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acct.Number]; exists {
		return models.ErrDuplicateAccount
	}
	s.accounts[acct.Number] = acct
	return nil
}

func (s *Store) GetAccount(ctx context.Context, number string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[number]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return acct, nil
}

// Apply stages every new balance first and commits only if all of them are
// valid, so a failing delta leaves no partial state behind.
func (s *Store) Apply(ctx context.Context, deltas []models.BalanceDelta, records []models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]money.Amount, len(deltas))
	for _, d := range deltas {
		balance, ok := staged[d.AccountNumber]
		if !ok {
			acct, exists := s.accounts[d.AccountNumber]
			if !exists {
				return models.ErrAccountNotFound
			}
			balance = acct.Balance
		}
		balance = balance.Add(d.Delta)
		if balance.IsNegative() {
			return models.ErrInsufficientFunds
		}
		staged[d.AccountNumber] = balance
	}

	for number, balance := range staged {
		acct := s.accounts[number]
		acct.Balance = balance
		s.accounts[number] = acct
	}
	for _, rec := range records {
		s.byAccount[rec.AccountNumber] = append(s.byAccount[rec.AccountNumber], len(s.records))
		s.records = append(s.records, rec)
	}
	return nil
}

// ListTransactions returns a copy ordered by timestamp descending; records
// with equal timestamps come back in reverse insertion order.
func (s *Store) ListTransactions(ctx context.Context, number string) ([]models.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.byAccount[number]
	out := make([]models.TransactionRecord, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		out = append(out, s.records[idx[i]])
	}
	// out is already in reverse insertion order; the stable sort keeps
	// that order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SumBalances(ctx context.Context) (money.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total money.Amount
	for _, acct := range s.accounts {
		total = total.Add(acct.Balance)
	}
	return total, nil
}

func (s *Store) Close() error { return nil }

var _ interfaces.Store = (*Store)(nil)
