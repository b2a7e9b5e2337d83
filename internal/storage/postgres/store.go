// Package postgres provides the durable implementation of interfaces.Store
// on PostgreSQL. Every Apply call runs in a single database transaction, so
// both sides of a transfer commit or roll back together.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/corebank/ledger/internal/interfaces"
	"github.com/corebank/ledger/internal/models"
	"github.com/corebank/ledger/internal/money"
)

// Schema creates the two tables. Balances and amounts are stored as bigint
// minor units; seq provides the insertion-order tie-break for listing.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	number     text PRIMARY KEY,
	name       text NOT NULL,
	balance    bigint NOT NULL DEFAULT 0 CHECK (balance >= 0),
	created_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	seq            bigserial,
	id             text PRIMARY KEY,
	account_number text NOT NULL REFERENCES accounts (number),
	kind           text NOT NULL,
	amount         bigint NOT NULL CHECK (amount > 0),
	created_at     timestamptz NOT NULL,
	counterparty   text
);

CREATE INDEX IF NOT EXISTS transactions_account_idx
	ON transactions (account_number, created_at DESC, seq DESC);
`

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database named by dsn and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) CreateAccount(ctx context.Context, acct models.Account) error {
	const query = `INSERT INTO accounts (number, name, balance, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query,
		acct.Number, acct.Name, acct.Balance.MinorUnits(), acct.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.ErrDuplicateAccount
	}
	return err
}

func (s *Store) GetAccount(ctx context.Context, number string) (models.Account, error) {
	const query = `SELECT number, name, balance, created_at FROM accounts
		WHERE number = $1`

	var acct models.Account
	var units int64
	err := s.db.QueryRowContext(ctx, query, number).
		Scan(&acct.Number, &acct.Name, &units, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	acct.Balance = money.FromMinorUnits(units)
	return acct, nil
}

// Apply runs all balance updates and record inserts in one transaction. The
// conditional UPDATE folds the funds check into the mutation itself, so
// there is no window between checking a balance and changing it.
func (s *Store) Apply(ctx context.Context, deltas []models.BalanceDelta, records []models.TransactionRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, d := range deltas {
		if err = applyDelta(ctx, tx, d); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err = insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func applyDelta(ctx context.Context, tx *sql.Tx, d models.BalanceDelta) error {
	const update = `UPDATE accounts SET balance = balance + $1
		WHERE number = $2 AND balance + $1 >= 0`

	res, err := tx.ExecContext(ctx, update, d.Delta.MinorUnits(), d.AccountNumber)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Zero rows: either the account is missing or the guard rejected the
	// debit. Distinguish with an existence probe inside the same tx.
	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE number = $1`, d.AccountNumber).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	return models.ErrInsufficientFunds
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec models.TransactionRecord) error {
	const query = `INSERT INTO transactions (id, account_number, kind, amount, created_at, counterparty)
		VALUES ($1, $2, $3, $4, $5, $6)`

	counterparty := sql.NullString{String: rec.Counterparty, Valid: rec.Counterparty != ""}
	_, err := tx.ExecContext(ctx, query,
		rec.ID, rec.AccountNumber, string(rec.Kind), rec.Amount.MinorUnits(),
		rec.CreatedAt, counterparty)
	return err
}

func (s *Store) ListTransactions(ctx context.Context, number string) ([]models.TransactionRecord, error) {
	const query = `SELECT id, account_number, kind, amount, created_at, counterparty
		FROM transactions
		WHERE account_number = $1
		ORDER BY created_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var rec models.TransactionRecord
		var kind string
		var units int64
		var counterparty sql.NullString
		if err := rows.Scan(&rec.ID, &rec.AccountNumber, &kind, &units,
			&rec.CreatedAt, &counterparty); err != nil {
			return nil, err
		}
		rec.Kind = models.TransactionKind(kind)
		rec.Amount = money.FromMinorUnits(units)
		rec.Counterparty = counterparty.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SumBalances(ctx context.Context) (money.Amount, error) {
	var units int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&units)
	if err != nil {
		return money.Amount{}, err
	}
	return money.FromMinorUnits(units), nil
}

func (s *Store) Close() error { return s.db.Close() }

var _ interfaces.Store = (*Store)(nil)
