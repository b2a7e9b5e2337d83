package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/money"
)

func newAccount(t *testing.T, s *Store, number string, units int64) {
	t.Helper()
	ctx := context.Background()
	acct := models.Account{Number: number, Name: "test", CreatedAt: time.Now()}
	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatal(err)
	}
	if units > 0 {
		err := s.Apply(ctx,
			[]models.BalanceDelta{{AccountNumber: number, Delta: money.FromMinorUnits(units)}},
			nil)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	newAccount(t, s, "10000001", 0)

	err := s.CreateAccount(ctx, models.Account{Number: "10000001"})
	if !errors.Is(err, models.ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetAccount(context.Background(), "missing"); !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

// A delta naming an unknown account must roll back the whole apply,
// including deltas that would have succeeded on their own.
func TestApplyUnknownAccountRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	newAccount(t, s, "10000001", 1000)

	err := s.Apply(ctx,
		[]models.BalanceDelta{
			{AccountNumber: "10000001", Delta: money.FromMinorUnits(-500)},
			{AccountNumber: "missing", Delta: money.FromMinorUnits(500)},
		},
		[]models.TransactionRecord{
			{ID: "r1", AccountNumber: "10000001", Kind: models.KindTransferOut, Amount: money.FromMinorUnits(500), CreatedAt: time.Now()},
		})
	if !errors.Is(err, models.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}

	acct, _ := s.GetAccount(ctx, "10000001")
	if acct.Balance.MinorUnits() != 1000 {
		t.Fatalf("balance=%d want 1000", acct.Balance.MinorUnits())
	}
	recs, _ := s.ListTransactions(ctx, "10000001")
	if len(recs) != 0 {
		t.Fatalf("records=%d want 0", len(recs))
	}
}

func TestApplyInsufficientFunds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	newAccount(t, s, "10000001", 1000)
	newAccount(t, s, "10000002", 0)

	err := s.Apply(ctx,
		[]models.BalanceDelta{
			{AccountNumber: "10000001", Delta: money.FromMinorUnits(-2000)},
			{AccountNumber: "10000002", Delta: money.FromMinorUnits(2000)},
		},
		[]models.TransactionRecord{
			{ID: "r1", AccountNumber: "10000001", Kind: models.KindTransferOut, Amount: money.FromMinorUnits(2000), CreatedAt: time.Now()},
			{ID: "r2", AccountNumber: "10000002", Kind: models.KindTransferIn, Amount: money.FromMinorUnits(2000), CreatedAt: time.Now()},
		})
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	a, _ := s.GetAccount(ctx, "10000001")
	b, _ := s.GetAccount(ctx, "10000002")
	if a.Balance.MinorUnits() != 1000 || b.Balance.MinorUnits() != 0 {
		t.Fatalf("balances a=%d b=%d want 1000,0", a.Balance.MinorUnits(), b.Balance.MinorUnits())
	}
	for _, number := range []string{"10000001", "10000002"} {
		if recs, _ := s.ListTransactions(ctx, number); len(recs) != 0 {
			t.Fatalf("%s records=%d want 0", number, len(recs))
		}
	}
}

// Equal timestamps are ordered by reverse insertion.
func TestListTransactionsTieBreak(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	newAccount(t, s, "10000001", 1000)

	now := time.Now()
	for _, id := range []string{"first", "second", "third"} {
		err := s.Apply(ctx, nil, []models.TransactionRecord{
			{ID: id, AccountNumber: "10000001", Kind: models.KindDeposit, Amount: money.FromMinorUnits(100), CreatedAt: now},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recs, err := s.ListTransactions(ctx, "10000001")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"third", "second", "first"}
	if len(recs) != len(want) {
		t.Fatalf("records=%d want %d", len(recs), len(want))
	}
	for i, id := range want {
		if recs[i].ID != id {
			t.Fatalf("recs[%d].ID=%s want %s", i, recs[i].ID, id)
		}
	}
}

func TestSumBalances(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	newAccount(t, s, "10000001", 1250)
	newAccount(t, s, "10000002", 750)

	total, err := s.SumBalances(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total.MinorUnits() != 2000 {
		t.Fatalf("total=%d want 2000", total.MinorUnits())
	}
}
