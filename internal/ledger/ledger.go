// Package ledger implements the account ledger engine: it validates raw
// inputs, applies balance mutations through the injected store, and records
// every operation in the transaction log. Each operation commits as one
// atomic unit; transfers produce a paired transfer_out/transfer_in entry.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/interfaces"
	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/models/events"
	"github.com/corebank/ledger/internal/money"
)

// generated account numbers are 10 digits; caller-supplied ones only need
// the minimum of 8.
const (
	generatedNumberDigits = 10
	maxGenerateAttempts   = 5
)

// Ledger orchestrates validation, balance mutation and log append. It keeps
// a mutex per account so all operations touching one account execute in a
// total order, on top of whatever atomicity the store provides.
type Ledger struct {
	store  interfaces.Store
	events interfaces.EventPublisher // may be nil

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex // protects muMap itself
}

// New creates a Ledger backed by store. events may be nil, in which case no
// transaction events are published.
func New(store interfaces.Store, events interfaces.EventPublisher) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
		muMap:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(number string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[number]; !exists {
		l.muMap[number] = &sync.Mutex{}
	}
	return l.muMap[number]
}

// CreateAccount registers a new account with a zero balance. An empty
// number requests a generated one; a supplied number must be numeric with
// at least eight digits and not already taken.
func (l *Ledger) CreateAccount(ctx context.Context, number, name string) (models.Account, error) {
	if number == "" {
		return l.createGenerated(ctx, name)
	}
	if !validAccountNumber(number) {
		return models.Account{}, models.ErrInvalidAccountNumber
	}

	acct := models.Account{Number: number, Name: name, CreatedAt: time.Now()}
	if err := l.store.CreateAccount(ctx, acct); err != nil {
		return models.Account{}, storageErr(err)
	}
	return acct, nil
}

func (l *Ledger) createGenerated(ctx context.Context, name string) (models.Account, error) {
	var err error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		acct := models.Account{Number: randomAccountNumber(), Name: name, CreatedAt: time.Now()}
		err = l.store.CreateAccount(ctx, acct)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, models.ErrDuplicateAccount) {
			return models.Account{}, storageErr(err)
		}
	}
	return models.Account{}, storageErr(err)
}

// GetAccount returns the current snapshot of one account.
func (l *Ledger) GetAccount(ctx context.Context, number string) (models.Account, error) {
	acct, err := l.store.GetAccount(ctx, number)
	if err != nil {
		return models.Account{}, storageErr(err)
	}
	return acct, nil
}

// Deposit credits the account with the parsed amount and appends one
// deposit record, as a single atomic unit. Returns the updated account.
func (l *Ledger) Deposit(ctx context.Context, number, amountStr string) (models.Account, error) {
	amount, err := money.Parse(amountStr)
	if err != nil {
		return models.Account{}, err
	}

	acct, rec, err := l.applySingle(ctx, number, models.KindDeposit, amount)
	if err != nil {
		return models.Account{}, err
	}
	l.publish(ctx, rec)
	return acct, nil
}

// Withdraw debits the account with the parsed amount and appends one
// withdrawal record. A debit that would take the balance below zero fails
// with ErrInsufficientFunds and leaves no trace.
func (l *Ledger) Withdraw(ctx context.Context, number, amountStr string) (models.Account, error) {
	amount, err := money.Parse(amountStr)
	if err != nil {
		return models.Account{}, err
	}

	acct, rec, err := l.applySingle(ctx, number, models.KindWithdrawal, amount)
	if err != nil {
		return models.Account{}, err
	}
	l.publish(ctx, rec)
	return acct, nil
}

// applySingle commits a one-account operation under that account's lock
// and returns the updated snapshot. The lock is released before the caller
// publishes, so a slow event broker never extends the critical section.
func (l *Ledger) applySingle(ctx context.Context, number string, kind models.TransactionKind, amount money.Amount) (models.Account, models.TransactionRecord, error) {
	mu := l.accountLock(number)
	mu.Lock()
	defer mu.Unlock()

	delta := amount
	if kind == models.KindWithdrawal {
		delta = amount.Neg()
	}

	rec := newRecord(number, kind, amount, "")
	err := l.store.Apply(ctx,
		[]models.BalanceDelta{{AccountNumber: number, Delta: delta}},
		[]models.TransactionRecord{rec})
	if err != nil {
		return models.Account{}, models.TransactionRecord{}, storageErr(err)
	}

	acct, err := l.store.GetAccount(ctx, number)
	if err != nil {
		return models.Account{}, models.TransactionRecord{}, storageErr(err)
	}
	return acct, rec, nil
}

// Transfer moves the parsed amount from one account to another. The debit,
// the credit and the two paired records commit as one atomic unit; a
// concurrent reader never sees one side without the other.
func (l *Ledger) Transfer(ctx context.Context, from, to, amountStr string) error {
	amount, err := money.Parse(amountStr)
	if err != nil {
		return err
	}
	if from == to {
		return models.ErrSelfTransfer
	}
	if !validAccountNumber(to) {
		return models.ErrInvalidAccountNumber
	}

	out, in, err := l.applyTransfer(ctx, from, to, amount)
	if err != nil {
		return err
	}

	l.publish(ctx, out)
	l.publish(ctx, in)
	return nil
}

// applyTransfer commits both sides of a transfer under both account locks;
// publishing happens in the caller, after the locks are released.
func (l *Ledger) applyTransfer(ctx context.Context, from, to string, amount money.Amount) (out, in models.TransactionRecord, err error) {
	fromMu := l.accountLock(from)
	toMu := l.accountLock(to)

	// Lock in lexicographic order to avoid deadlocks between transfers
	// with swapped endpoints.
	if from < to {
		fromMu.Lock()
		toMu.Lock()
	} else {
		toMu.Lock()
		fromMu.Lock()
	}
	defer fromMu.Unlock()
	defer toMu.Unlock()

	// A missing destination is reported even when funds would also be
	// insufficient, so check existence before the funds check in Apply.
	if _, err := l.store.GetAccount(ctx, to); err != nil {
		return out, in, storageErr(err)
	}

	out = newRecord(from, models.KindTransferOut, amount, to)
	in = newRecord(to, models.KindTransferIn, amount, from)
	in.CreatedAt = out.CreatedAt

	err = l.store.Apply(ctx,
		[]models.BalanceDelta{
			{AccountNumber: from, Delta: amount.Neg()},
			{AccountNumber: to, Delta: amount},
		},
		[]models.TransactionRecord{out, in})
	if err != nil {
		return out, in, storageErr(err)
	}
	return out, in, nil
}

// ListTransactions returns the account's records, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, number string) ([]models.TransactionRecord, error) {
	if _, err := l.store.GetAccount(ctx, number); err != nil {
		return nil, storageErr(err)
	}
	recs, err := l.store.ListTransactions(ctx, number)
	if err != nil {
		return nil, storageErr(err)
	}
	return recs, nil
}

func (l *Ledger) publish(ctx context.Context, rec models.TransactionRecord) {
	if l.events == nil {
		return
	}
	// The operation is already committed; event delivery is best effort.
	_ = l.events.Publish(ctx, events.TransactionCompleted{
		TransactionID: rec.ID,
		AccountNumber: rec.AccountNumber,
		Kind:          string(rec.Kind),
		Amount:        rec.Amount,
		Counterparty:  rec.Counterparty,
		OccurredAt:    rec.CreatedAt,
	})
}

func newRecord(number string, kind models.TransactionKind, amount money.Amount, counterparty string) models.TransactionRecord {
	return models.TransactionRecord{
		ID:            uuid.New().String(),
		AccountNumber: number,
		Kind:          kind,
		Amount:        amount,
		CreatedAt:     time.Now(),
		Counterparty:  counterparty,
	}
}

func validAccountNumber(s string) bool {
	if len(s) < 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func randomAccountNumber() string {
	const max = 1e10 // 10 digits
	return fmt.Sprintf("%0*d", generatedNumberDigits, rand.Int63n(int64(max)))
}

// storageErr passes domain conditions through unchanged and wraps anything
// else as a storage failure.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrDuplicateAccount),
		errors.Is(err, models.ErrInsufficientFunds):
		return err
	default:
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
}
