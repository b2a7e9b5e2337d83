package events

import (
	"time"

	"github.com/corebank/ledger/internal/money"
)

// TransactionCompleted is emitted once per committed transaction record.
// A transfer produces two events, one per side.
type TransactionCompleted struct {
	TransactionID string       `json:"transaction_id"`
	AccountNumber string       `json:"account_number"`
	Kind          string       `json:"kind"`
	Amount        money.Amount `json:"amount"`
	Counterparty  string       `json:"counterparty,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}
