package models

import (
	"time"

	"github.com/corebank/ledger/internal/money"
)

// Account is the ledger's view of an account: a number and a balance.
// Credentials and other sign-in attributes belong to the auth layer and
// never pass through here.
type Account struct {
	Number    string       `json:"account_number"`
	Name      string       `json:"name"`
	Balance   money.Amount `json:"balance"`
	CreatedAt time.Time    `json:"created_at"`
}

// BalanceDelta is a signed balance change for one account. A debit carries
// a negative Delta, a credit a positive one.
type BalanceDelta struct {
	AccountNumber string
	Delta         money.Amount
}
