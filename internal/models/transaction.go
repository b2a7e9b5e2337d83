package models

import (
	"time"

	"github.com/corebank/ledger/internal/money"
)

// TransactionKind names the four record kinds the log stores.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
)

// TransactionRecord is one immutable entry in the transaction log.
// Amount is always positive; the kind implies the sign. Counterparty is
// the other account of a transfer and empty for deposits and withdrawals.
type TransactionRecord struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Kind          TransactionKind `json:"kind"`
	Amount        money.Amount    `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Counterparty  string          `json:"counterparty,omitempty"`
}
